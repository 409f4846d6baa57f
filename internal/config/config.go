package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	RepositoryInMemory = "inmemory"
	RepositoryPostgres = "postgres"
	RepositorySQLite   = "sqlite"
)

// EnvConfigPath - переменная с путём к файлу конфигурации
const EnvConfigPath = "TASKMASTER_CONFIG"

const DefaultPath = "config.yml"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	View       ViewConfig       `yaml:"view"`
	Worker     WorkerConfig     `yaml:"worker"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "inmemory", "postgres" или "sqlite"
}

type ViewConfig struct {
	PageSize int `yaml:"page_size"`
}

type WorkerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConnections: 5,
			MinConnections: 1,
			IdleTimeout:    5 * time.Minute,
		},
		SQLite:     SQLiteConfig{Path: "~/.taskmaster/taskmaster.db"},
		Repository: RepositoryConfig{Type: RepositoryInMemory},
		View:       ViewConfig{PageSize: 10},
		Worker:     WorkerConfig{Enabled: true, Interval: time.Minute},
	}
}

// Path возвращает путь из TASKMASTER_CONFIG или config.yml
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load читает YAML поверх значений по умолчанию. Отсутствующий файл - не ошибка.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	default:
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TASKMASTER_REPOSITORY"); v != "" {
		c.Repository.Type = v
	}
	if v := os.Getenv("TASKMASTER_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("TASKMASTER_SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("TASKMASTER_PORT"); v != "" {
		c.Server.Port = v
	}
}

func (c *Config) Validate() error {
	c.Repository.Type = strings.ToLower(strings.TrimSpace(c.Repository.Type))

	switch c.Repository.Type {
	case RepositoryInMemory:
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url обязателен для postgres")
		}
	case RepositorySQLite:
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path обязателен для sqlite")
		}
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Repository.Type)
	}

	if c.View.PageSize <= 0 {
		return fmt.Errorf("view.page_size должен быть больше нуля, получено %d", c.View.PageSize)
	}
	if c.Worker.Enabled && c.Worker.Interval <= 0 {
		return errors.New("worker.interval должен быть больше нуля")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
