package service

import (
	"context"
	"io"
	"time"

	"taskmaster/internal/logger"
	"taskmaster/internal/models/task"
	rep "taskmaster/internal/repository"
	"taskmaster/internal/transfer"

	"go.uber.org/zap"
)

type ImportResult struct {
	Tasks      int `json:"tasks"`
	Categories int `json:"categories"`
	Skipped    int `json:"skipped"`
	Detached   int `json:"detached"`
}

func (s *TaskService) ExportJSON(ctx context.Context) ([]byte, error) {
	snap := s.Snapshot()
	return transfer.ExportJSON(snap.Tasks, snap.Categories, s.clock())
}

// ImportJSON заменяет коллекции, присутствующие в документе.
// Битый документ не меняет состояние.
func (s *TaskService) ImportJSON(ctx context.Context, data []byte) (*ImportResult, error) {
	doc, err := transfer.ParseJSON(data)
	if err != nil {
		logger.Warn("Service: Ошибка разбора JSON", zap.Error(err))
		return nil, NewParseError("json", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	prev := s.state.Clone()
	next := s.state.Clone()
	var keys []string

	if doc.Tasks != nil {
		next.Tasks = append([]task.Task{}, *doc.Tasks...)
		keys = append(keys, rep.KeyTasks)
	}
	if doc.Categories != nil {
		next.Categories = append([]task.Category{}, *doc.Categories...)
		keys = append(keys, rep.KeyCategories)
	}

	res := &ImportResult{Tasks: len(next.Tasks), Categories: len(next.Categories)}
	res.Detached = detachOrphans(&next)
	if res.Detached > 0 && doc.Tasks == nil {
		keys = append(keys, rep.KeyTasks)
	}

	if len(keys) == 0 {
		return res, nil
	}

	s.state = next
	if err := s.commit(ctx, prev, keys...); err != nil {
		return nil, err
	}
	s.ids.ObserveSnapshot(next)

	logger.Info("Service: Импорт JSON завершён",
		zap.Int("tasks", res.Tasks),
		zap.Int("categories", res.Categories),
		zap.Int("detached", res.Detached))
	return res, nil
}

func (s *TaskService) ExportCSV(ctx context.Context) []byte {
	snap := s.Snapshot()
	return transfer.ExportCSV(snap.Tasks, snap.Categories)
}

// ImportCSV дописывает задачи в конец коллекции с новыми id и без проекта.
// Названия проектов из файла намеренно не сопоставляются с категориями.
func (s *TaskService) ImportCSV(ctx context.Context, data []byte) (*ImportResult, error) {
	parsed := transfer.ParseCSV(data)
	res := &ImportResult{Skipped: parsed.Skipped}

	if len(parsed.Records) == 0 {
		logger.Info("Service: CSV без подходящих строк", zap.Int("skipped", parsed.Skipped))
		return res, nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	prev := s.state.Clone()
	createdAt := s.clock().UTC().Truncate(time.Millisecond)

	for _, rec := range parsed.Records {
		s.state.Tasks = append(s.state.Tasks, task.Task{
			ID:        s.ids.Next(),
			Text:      rec.Text,
			Completed: rec.Completed,
			Priority:  rec.Priority,
			DueDate:   rec.DueDate,
			DueTime:   rec.DueTime,
			Category:  task.NoCategory,
			CreatedAt: createdAt,
			Notes:     rec.Notes,
		})
	}

	if err := s.commit(ctx, prev, rep.KeyTasks); err != nil {
		return nil, err
	}

	res.Tasks = len(parsed.Records)
	logger.Info("Service: Импорт CSV завершён",
		zap.Int("imported", res.Tasks),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func (s *TaskService) RenderTable(ctx context.Context, w io.Writer) error {
	snap := s.Snapshot()
	return transfer.RenderTable(w, snap.Tasks, snap.Categories)
}
