package worker

import (
	"context"
	"time"

	"taskmaster/internal/logger"
	"taskmaster/internal/models/task"
	"taskmaster/internal/view"

	"go.uber.org/zap"
)

const DefaultInterval = time.Minute

type TaskSource interface {
	Tasks() []task.Task
	Today() task.Date
}

// OverdueWorker периодически строит корзину просроченных задач и сообщает
// о задачах, попавших в неё с прошлой проверки. Состояние не меняет.
type OverdueWorker struct {
	source   TaskSource
	interval time.Duration
	seen     map[int64]bool
}

func NewOverdueWorker(source TaskSource, interval *time.Duration) *OverdueWorker {
	intervalToSet := DefaultInterval
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	return &OverdueWorker{
		source:   source,
		interval: intervalToSet,
		seen:     make(map[int64]bool),
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check возвращает задачи, ставшие просроченными с прошлого вызова.
// Не потокобезопасен: вызывается только из Start или из тестов.
func (w *OverdueWorker) Check(ctx context.Context) []task.Task {
	start := time.Now()
	today := w.source.Today()
	overdue := view.Overdue(w.source.Tasks(), today)

	current := make(map[int64]bool, len(overdue))
	var fresh []task.Task
	for _, t := range overdue {
		current[t.ID] = true
		if w.seen[t.ID] {
			continue
		}
		fresh = append(fresh, t)
		logger.Info("Worker: Задача просрочена",
			zap.Int64("task_id", t.ID),
			zap.String("due_date", string(t.DueDate)))
	}
	// выполненные и перенесённые задачи забываются, чтобы повторная просрочка снова была замечена
	w.seen = current

	logger.Info("Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.String("today", string(today)),
		zap.Int("overdue", len(overdue)),
		zap.Int("new", len(fresh)))
	return fresh
}
