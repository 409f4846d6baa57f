package service

import "context"

// Store - внешнее хранилище ключ-значение.
// Load возвращает repository.ErrNotFound для отсутствующего ключа.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	HealthCheck(ctx context.Context) error
}
