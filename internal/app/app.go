package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"taskmaster/internal/config"
	"taskmaster/internal/handlers"
	"taskmaster/internal/logger"
	"taskmaster/internal/repository/kv/inmemory"
	"taskmaster/internal/repository/kv/postgres"
	"taskmaster/internal/repository/kv/sqlite"
	"taskmaster/internal/service"
	"taskmaster/internal/worker"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	store     service.Store
	service   *service.TaskService
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initStore(ctx); err != nil {
		return err
	}

	a.service = service.NewTaskService(a.store, nil)
	if err := a.service.Load(ctx); err != nil {
		return fmt.Errorf("загрузка состояния: %w", err)
	}

	handler := handlers.NewTaskHandler(a.service, a.config.View.PageSize)
	a.router = handlers.NewRouter(handler, handlers.RouterConfig{
		CORSOrigins:    a.config.Server.CORSOrigins,
		RequestTimeout: a.config.Server.WriteTimeout,
	})

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	if a.config.Worker.Enabled {
		interval := a.config.Worker.Interval
		a.worker = worker.NewOverdueWorker(a.service, &interval)
	}

	logger.Info("App: Инициализация завершена",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) initStore(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		if err := postgres.Migrate(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции postgres: %w", err)
		}
		store, err := postgres.New(ctx, postgres.Config{
			URL:            a.config.Database.URL,
			MaxConnections: a.config.Database.MaxConnections,
			MinConnections: a.config.Database.MinConnections,
			IdleTimeout:    a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		a.store = store
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: Закрытие пула PostgreSQL...")
			store.Close()
		})

	case config.RepositorySQLite:
		store, err := sqlite.New(a.config.SQLite.Path)
		if err != nil {
			return fmt.Errorf("открытие sqlite: %w", err)
		}
		a.store = store
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: Закрытие SQLite...")
			if err := store.Close(); err != nil {
				logger.Error("App: Ошибка закрытия SQLite", err)
			}
		})

	default:
		logger.Warn("App: Данные хранятся только в памяти и пропадут после остановки")
		a.store = inmemory.NewStorage()
	}
	return nil
}

// Handler - корневой обработчик, доступен после Init
func (a *App) Handler() http.Handler {
	return a.router
}

// Run блокируется до отмены ctx или падения сервера, затем останавливает сервер
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			a.worker.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown освобождает ресурсы в порядке, обратном инициализации
func (a *App) Shutdown() {
	for _, fn := range slices.Backward(a.shutdowns) {
		fn()
	}
	a.shutdowns = nil
}
