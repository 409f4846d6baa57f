package handlers

import (
	"bytes"
	"net/http"
	"time"

	"taskmaster/internal/handlers/dto"
	"taskmaster/internal/logger"
	"taskmaster/internal/transfer"

	"go.uber.org/zap"
)

func (s *TaskHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := s.TaskService.ExportJSON(r.Context())
	if err != nil {
		handleError(w, r, err, "export_json")
		return
	}
	responseWithFile(w, "application/json", transfer.BackupFileName(time.Now()), data)
}

func (s *TaskHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}

	res, err := s.TaskService.ImportJSON(r.Context(), data)
	if err != nil {
		handleError(w, r, err, "import_json")
		return
	}

	logger.Info("HTTP_OUT: Резервная копия загружена",
		zap.Int("tasks", res.Tasks),
		zap.Int("categories", res.Categories))

	responseWithBody(w, http.StatusOK, res)
}

func (s *TaskHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	responseWithFile(w, "text/csv; charset=utf-8", transfer.CSVFileName(time.Now()), s.TaskService.ExportCSV(r.Context()))
}

func (s *TaskHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}

	res, err := s.TaskService.ImportCSV(r.Context(), data)
	if err != nil {
		handleError(w, r, err, "import_csv")
		return
	}

	logger.Info("HTTP_OUT: CSV загружен",
		zap.Int("imported", res.Tasks),
		zap.Int("skipped", res.Skipped))

	responseWithBody(w, http.StatusOK, res)
}

func (s *TaskHandler) ExportTable(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.TaskService.RenderTable(r.Context(), &buf); err != nil {
		handleError(w, r, err, "export_table")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *TaskHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, toPayload("darkMode", s.TaskService.DarkMode(r.Context())))
}

func (s *TaskHandler) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var request dto.DarkModeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if err := s.TaskService.SetDarkMode(r.Context(), request.Enabled); err != nil {
		handleError(w, r, err, "set_dark_mode")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("darkMode", request.Enabled))
}

func (s *TaskHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.TaskService.ToggleDarkMode(r.Context())
	if err != nil {
		handleError(w, r, err, "toggle_dark_mode")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("darkMode", enabled))
}
