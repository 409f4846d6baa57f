package handlers

import (
	"net/http"
	"time"

	"taskmaster/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(h TaskHandler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", h.HealthCheck)
	r.Get("/stats", h.Stats)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks) // GET /tasks
		r.Post("/", h.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", h.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", h.DeleteTaskByID) // DELETE /tasks/{id}

			r.Post("/toggle", h.ToggleTask) // POST /tasks/{id}/toggle
			r.Post("/move", h.MoveTask)     // POST /tasks/{id}/move
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.PostCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})

	r.Route("/preferences", func(r chi.Router) {
		r.Get("/", h.GetPreferences)
		r.Put("/dark-mode", h.SetDarkMode)
		r.Post("/dark-mode/toggle", h.ToggleDarkMode)
	})

	r.Get("/export/json", h.ExportJSON)
	r.Post("/import/json", h.ImportJSON)
	r.Get("/export/csv", h.ExportCSV)
	r.Post("/import/csv", h.ImportCSV)
	r.Get("/export/table", h.ExportTable)

	return r
}
