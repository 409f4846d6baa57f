package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskmaster/internal/logger"
	repo "taskmaster/internal/repository"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Storage хранит значения в файле SQLite: локальный аналог хранилища браузера
type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("домашний каталог: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("создание каталога: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("открытие базы: %w", err)
	}
	// sqlite не любит параллельных писателей
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Repository: База SQLite открыта", zap.String("path", dbPath))
	return s, nil
}

func (s *Storage) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("создание схемы: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие базы SQLite")
	return s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Save(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_entries (key, value, updated_at)
				VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE
				SET value = excluded.value,
				updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		logger.Error("Repository: Не удалось сохранить значение", err, zap.String("key", key))
		return fmt.Errorf("сохранение %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось прочитать значение", err, zap.String("key", key))
		return nil, fmt.Errorf("чтение %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("удаление %s: %w", key, err)
	}
	return nil
}
