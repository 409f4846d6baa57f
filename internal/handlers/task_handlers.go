package handlers

import (
	"net/http"
	"time"

	"taskmaster/internal/handlers/dto"
	"taskmaster/internal/logger"
	"taskmaster/internal/view"

	"go.uber.org/zap"
)

// DefaultPageSize используется, когда page_size не передан
const DefaultPageSize = 10

type TaskHandler struct {
	TaskService TaskService
	PageSize    int
}

func NewTaskHandler(taskService TaskService, pageSize int) TaskHandler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return TaskHandler{
		TaskService: taskService,
		PageSize:    pageSize,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

// ListTasks отдаёт страницу видимых задач с переключателем страниц и статистикой
func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query()

	status, ok := view.ParseStatus(query.Get("status"))
	if !ok {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "status"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное значение status")
		return
	}

	sortMode, ok := view.ParseSortMode(query.Get("sort"))
	if !ok {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "sort"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное значение sort")
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageSize, err := queryInt(r, "page_size", s.PageSize)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	criteria := view.Criteria{
		Category: query.Get("category"),
		Status:   status,
		Search:   query.Get("search"),
		Sort:     sortMode,
	}

	res, err := s.TaskService.View(r.Context(), criteria, page, pageSize)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(res.Page.Items)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromResult(res, s.TaskService.Today()))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), request.ToInput())
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created, s.TaskService.Today()))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	found, err := s.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(found, s.TaskService.Today()))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.Options()...)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated, s.TaskService.Today()))
}

func (s *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	toggled, err := s.TaskService.ToggleTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "toggle_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(toggled, s.TaskService.Today()))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

// MoveTask принимает либо позицию в ручном порядке, либо id задачи, на место которой ставится перетаскиваемая
func (s *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var request dto.MoveTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	var err error
	switch {
	case request.Index != nil && request.TargetID == nil:
		err = s.TaskService.MoveTask(r.Context(), id, *request.Index)
	case request.TargetID != nil && request.Index == nil:
		err = s.TaskService.MoveTaskOnto(r.Context(), id, *request.TargetID)
	default:
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "index/target_id"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "нужно указать ровно одно из полей index или target_id")
		return
	}
	if err != nil {
		handleError(w, r, err, "move_task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, s.TaskService.Stats(r.Context()))
}
