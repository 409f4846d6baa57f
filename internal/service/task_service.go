package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskmaster/internal/logger"
	"taskmaster/internal/models/task"
	rep "taskmaster/internal/repository"
	"taskmaster/internal/view"

	"go.uber.org/zap"
)

// TaskService - единственный владелец состояния задач и категорий.
// Каждая мутация сохраняется в Store до возврата; при ошибке сохранения
// состояние в памяти откатывается.
type TaskService struct {
	store Store
	clock func() time.Time
	ids   *IDGenerator

	mtx   sync.RWMutex
	state task.Snapshot
}

func NewTaskService(store Store, clock func() time.Time) *TaskService {
	if clock == nil {
		clock = time.Now
	}
	return &TaskService{
		store: store,
		clock: clock,
		ids:   NewIDGenerator(clock),
		state: task.Snapshot{Tasks: []task.Task{}, Categories: []task.Category{}},
	}
}

type CreateTaskInput struct {
	Text     string
	Priority task.Priority
	DueDate  string
	DueTime  string
	Category string
	Notes    string
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.store.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка хранилища: %w", err)
	}
	return nil
}

// Load читает три независимых ключа. Отсутствующий ключ означает пустое значение.
func (s *TaskService) Load(ctx context.Context) error {
	var loaded task.Snapshot

	if err := s.loadKey(ctx, rep.KeyTasks, &loaded.Tasks); err != nil {
		return err
	}
	if err := s.loadKey(ctx, rep.KeyCategories, &loaded.Categories); err != nil {
		return err
	}
	if err := s.loadKey(ctx, rep.KeyDarkMode, &loaded.DarkMode); err != nil {
		return err
	}

	if loaded.Tasks == nil {
		loaded.Tasks = []task.Task{}
	}
	if loaded.Categories == nil {
		loaded.Categories = []task.Category{}
	}
	if detached := detachOrphans(&loaded); detached > 0 {
		logger.Warn("Service: Задачи ссылались на удалённые категории", zap.Int("detached", detached))
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.state = loaded
	s.ids.ObserveSnapshot(loaded)

	logger.Info("Service: Состояние загружено",
		zap.Int("tasks", len(loaded.Tasks)),
		zap.Int("categories", len(loaded.Categories)))
	return nil
}

func (s *TaskService) loadKey(ctx context.Context, key string, dst any) error {
	data, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("загрузка %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return NewParseError(key, err)
	}
	return nil
}

func (s *TaskService) saveKey(ctx context.Context, state task.Snapshot, key string) error {
	var value any
	switch key {
	case rep.KeyTasks:
		value = state.Tasks
	case rep.KeyCategories:
		value = state.Categories
	case rep.KeyDarkMode:
		value = state.DarkMode
	default:
		return fmt.Errorf("неизвестный ключ %s", key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("сериализация %s: %w", key, err)
	}
	return s.store.Save(ctx, key, data)
}

// commit сохраняет изменённые ключи. Вызывается под s.mtx.
// При ошибке состояние откатывается к prev, а уже записанные ключи перезаписываются обратно.
func (s *TaskService) commit(ctx context.Context, prev task.Snapshot, keys ...string) error {
	for i, key := range keys {
		err := s.saveKey(ctx, s.state, key)
		if err == nil {
			continue
		}

		s.state = prev
		for _, written := range keys[:i] {
			if rerr := s.saveKey(ctx, prev, written); rerr != nil {
				logger.Error("Service: Не удалось откатить ключ", rerr, zap.String("key", written))
			}
		}
		logger.Error("Service: Ошибка сохранения, изменения отменены", err, zap.String("key", key))
		return fmt.Errorf("сохранение %s: %w", key, err)
	}
	return nil
}

func (s *TaskService) Today() task.Date {
	return task.DateOf(s.clock())
}

func (s *TaskService) Snapshot() task.Snapshot {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.state.Clone()
}

// Tasks - копия коллекции в ручном порядке
func (s *TaskService) Tasks() []task.Task {
	return s.Snapshot().Tasks
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	idx := s.state.TaskIndex(id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
		return nil, NewNotFound(ResourceTask, id)
	}
	found := s.state.Tasks[idx]
	return &found, nil
}

// validateTask нормализует поля задачи и проверяет ссылку на категорию
func (s *TaskService) validateTask(t *task.Task) error {
	t.Text = strings.TrimSpace(t.Text)
	if t.Text == "" {
		return NewValidationError("text", "текст задачи не может быть пустым")
	}

	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", "допустимы high, medium, low")
	}

	due, err := task.ParseDate(string(t.DueDate))
	if err != nil {
		return NewValidationError("dueDate", "ожидается формат YYYY-MM-DD")
	}
	t.DueDate = due

	clock, err := task.ParseClock(t.DueTime)
	if err != nil {
		return NewValidationError("dueTime", "ожидается формат HH:MM")
	}
	t.DueTime = clock

	if t.Category == "" {
		t.Category = task.NoCategory
	}
	if !s.state.HasCategory(t.Category) {
		return NewValidationError("category", fmt.Sprintf("категория %s не существует", t.Category))
	}
	return nil
}

// CreateTask добавляет задачу в начало ручного порядка
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	newTask := task.Task{
		Text:     input.Text,
		Priority: input.Priority,
		DueDate:  task.Date(input.DueDate),
		DueTime:  input.DueTime,
		Category: input.Category,
		Notes:    input.Notes,
	}
	if err := s.validateTask(&newTask); err != nil {
		logger.Warn("Service: Ошибка валидации задачи", zap.Error(err))
		return nil, err
	}

	newTask.ID = s.ids.Next()
	newTask.CreatedAt = s.clock().UTC().Truncate(time.Millisecond)

	prev := s.state.Clone()
	s.state.Tasks = append([]task.Task{newTask}, s.state.Tasks...)
	if err := s.commit(ctx, prev, rep.KeyTasks); err != nil {
		return nil, err
	}

	logger.Info("Service: Задача создана", zap.Int64("task_id", newTask.ID))
	return &newTask, nil
}

// UpdateTask применяет только переданные опции; id и createdAt не меняются
func (s *TaskService) UpdateTask(ctx context.Context, id int64, options ...task.TaskOption) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.state.TaskIndex(id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
		return nil, NewNotFound(ResourceTask, id)
	}

	original := s.state.Tasks[idx]
	updated := original
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&updated)
	}
	updated.ID = original.ID
	updated.CreatedAt = original.CreatedAt

	if err := s.validateTask(&updated); err != nil {
		logger.Warn("Service: Ошибка валидации задачи", zap.Int64("task_id", id), zap.Error(err))
		return nil, err
	}

	prev := s.state.Clone()
	s.state.Tasks[idx] = updated
	if err := s.commit(ctx, prev, rep.KeyTasks); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ToggleTask: отсутствующий id возвращает NotFound, состояние не меняется
func (s *TaskService) ToggleTask(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.state.TaskIndex(id)
	if idx < 0 {
		logger.Info("Service: Задача для переключения не найдена", zap.Int64("target_id", id))
		return nil, NewNotFound(ResourceTask, id)
	}

	prev := s.state.Clone()
	s.state.Tasks[idx].Completed = !s.state.Tasks[idx].Completed
	if err := s.commit(ctx, prev, rep.KeyTasks); err != nil {
		return nil, err
	}

	toggled := s.state.Tasks[idx]
	return &toggled, nil
}

// DeleteTask идемпотентен
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.state.TaskIndex(id)
	if idx < 0 {
		return nil
	}

	prev := s.state.Clone()
	s.state.Tasks = append(s.state.Tasks[:idx:idx], s.state.Tasks[idx+1:]...)
	if err := s.commit(ctx, prev, rep.KeyTasks); err != nil {
		return err
	}

	logger.Info("Service: Задача удалена", zap.Int64("task_id", id))
	return nil
}

// MoveTask переставляет задачу на позицию toIndex (с ограничением границами)
func (s *TaskService) MoveTask(ctx context.Context, id int64, toIndex int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	from := s.state.TaskIndex(id)
	if from < 0 {
		return NewNotFound(ResourceTask, id)
	}
	return s.moveLocked(ctx, from, toIndex)
}

// MoveTaskOnto ставит перетаскиваемую задачу на место целевой
func (s *TaskService) MoveTaskOnto(ctx context.Context, draggedID, targetID int64) error {
	if draggedID == targetID {
		return nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	from := s.state.TaskIndex(draggedID)
	if from < 0 {
		return NewNotFound(ResourceTask, draggedID)
	}
	to := s.state.TaskIndex(targetID)
	if to < 0 {
		return NewNotFound(ResourceTask, targetID)
	}
	return s.moveLocked(ctx, from, to)
}

func (s *TaskService) moveLocked(ctx context.Context, from, to int) error {
	to = max(0, min(to, len(s.state.Tasks)-1))
	if from == to {
		return nil
	}

	prev := s.state.Clone()
	moved := s.state.Tasks[from]
	rest := append(s.state.Tasks[:from:from], s.state.Tasks[from+1:]...)

	reordered := make([]task.Task, 0, len(s.state.Tasks))
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[to:]...)
	s.state.Tasks = reordered

	return s.commit(ctx, prev, rep.KeyTasks)
}

// Result - страница представления вместе с переключателем и статистикой
type Result struct {
	Page  view.Page
	Links []view.PageLink
	Stats view.Summary
}

func (s *TaskService) View(ctx context.Context, criteria view.Criteria, page, pageSize int) (*Result, error) {
	s.mtx.RLock()
	tasks := s.state.Clone().Tasks
	s.mtx.RUnlock()

	visible := view.Compute(tasks, criteria, s.Today())

	p, err := view.Paginate(visible, page, pageSize)
	if err != nil {
		var rangeErr *view.OutOfRangeError
		if errors.As(err, &rangeErr) {
			return nil, NewPageOutOfRange(rangeErr.Page, rangeErr.TotalPages)
		}
		return nil, NewValidationError("page_size", err.Error())
	}

	return &Result{
		Page:  p,
		Links: view.PageWindow(p.Number, p.TotalPages),
		Stats: view.Stats(tasks),
	}, nil
}

func (s *TaskService) Stats(ctx context.Context) view.Summary {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return view.Stats(s.state.Tasks)
}

// detachOrphans переводит задачи с несуществующей категорией в NoCategory
func detachOrphans(state *task.Snapshot) int {
	affected := 0
	for i := range state.Tasks {
		if !state.HasCategory(state.Tasks[i].Category) {
			state.Tasks[i].Category = task.NoCategory
			affected++
		}
	}
	return affected
}
