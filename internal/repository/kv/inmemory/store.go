package inmemory

import (
	"context"
	"slices"
	"sync"

	"taskmaster/internal/logger"
	repo "taskmaster/internal/repository"
)

type Storage struct {
	storage map[string][]byte
	mtx     *sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		storage: make(map[string][]byte),
		mtx:     &sync.RWMutex{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Save(ctx context.Context, key string, value []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[key] = slices.Clone(value)
	return nil
}

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.storage[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return slices.Clone(value), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.storage, key)
	return nil
}

// Keys - сохранённые ключи в отсортированном виде
func (s *Storage) Keys() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	keys := make([]string, 0, len(s.storage))
	for k := range s.storage {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
