package service

import (
	"context"
	"strings"

	"taskmaster/internal/logger"
	"taskmaster/internal/models/task"
	rep "taskmaster/internal/repository"

	"go.uber.org/zap"
)

func (s *TaskService) Categories() []task.Category {
	return s.Snapshot().Categories
}

func (s *TaskService) GetCategoryByID(ctx context.Context, id string) (*task.Category, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	idx := s.state.CategoryIndex(id)
	if idx < 0 {
		return nil, NewNotFound(ResourceCategory, id)
	}
	found := s.state.Categories[idx]
	return &found, nil
}

func normalizeCategory(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", NewValidationError("name", "название проекта не может быть пустым")
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = task.DefaultColor
	}
	return name, color, nil
}

func (s *TaskService) CreateCategory(ctx context.Context, name, color string) (*task.Category, error) {
	name, color, err := normalizeCategory(name, color)
	if err != nil {
		logger.Warn("Service: Ошибка валидации категории", zap.Error(err))
		return nil, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	category := task.Category{
		ID:    s.ids.NextCategoryID(),
		Name:  name,
		Color: color,
	}

	prev := s.state.Clone()
	s.state.Categories = append(s.state.Categories, category)
	if err := s.commit(ctx, prev, rep.KeyCategories); err != nil {
		return nil, err
	}

	logger.Info("Service: Категория создана", zap.String("category_id", category.ID))
	return &category, nil
}

func (s *TaskService) UpdateCategory(ctx context.Context, id, name, color string) (*task.Category, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.state.CategoryIndex(id)
	if idx < 0 {
		return nil, NewNotFound(ResourceCategory, id)
	}

	name, color, err := normalizeCategory(name, color)
	if err != nil {
		return nil, err
	}

	prev := s.state.Clone()
	s.state.Categories[idx].Name = name
	s.state.Categories[idx].Color = color
	if err := s.commit(ctx, prev, rep.KeyCategories); err != nil {
		return nil, err
	}

	updated := s.state.Categories[idx]
	return &updated, nil
}

// DeleteCategory удаляет категорию и переводит её задачи в NoCategory.
// Возвращает число затронутых задач; отсутствующий id - не ошибка.
func (s *TaskService) DeleteCategory(ctx context.Context, id string) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.state.CategoryIndex(id)
	if idx < 0 {
		return 0, nil
	}

	prev := s.state.Clone()
	s.state.Categories = append(s.state.Categories[:idx:idx], s.state.Categories[idx+1:]...)

	affected := 0
	for i := range s.state.Tasks {
		if s.state.Tasks[i].Category == id {
			s.state.Tasks[i].Category = task.NoCategory
			affected++
		}
	}

	keys := []string{rep.KeyCategories}
	if affected > 0 {
		keys = append(keys, rep.KeyTasks)
	}
	if err := s.commit(ctx, prev, keys...); err != nil {
		return 0, err
	}

	logger.Info("Service: Категория удалена",
		zap.String("category_id", id),
		zap.Int("affected_tasks", affected))
	return affected, nil
}
