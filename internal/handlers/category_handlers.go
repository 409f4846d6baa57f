package handlers

import (
	"net/http"

	"taskmaster/internal/handlers/dto"
	"taskmaster/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (s *TaskHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, s.TaskService.Categories())
}

func (s *TaskHandler) PostCategory(w http.ResponseWriter, r *http.Request) {
	var request dto.CategoryRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := s.TaskService.CreateCategory(r.Context(), request.Name, request.Color)
	if err != nil {
		handleError(w, r, err, "create_category")
		return
	}

	logger.Info("HTTP_OUT: Категория создана",
		zap.String("category_id", created.ID),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, created)
}

func (s *TaskHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var request dto.CategoryRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.UpdateCategory(r.Context(), id, request.Name, request.Color)
	if err != nil {
		handleError(w, r, err, "update_category")
		return
	}
	responseWithBody(w, http.StatusOK, updated)
}

// DeleteCategory сообщает, сколько задач переведено в "без проекта"
func (s *TaskHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	affected, err := s.TaskService.DeleteCategory(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "delete_category")
		return
	}

	logger.Info("HTTP_OUT: Категория удалена",
		zap.String("category_id", id),
		zap.Int("affected_tasks", affected))

	responseWithJSON(w, http.StatusOK, toPayload("affected_tasks", affected))
}
