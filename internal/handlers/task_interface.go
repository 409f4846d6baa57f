package handlers

import (
	"context"
	"io"

	"taskmaster/internal/models/task"
	"taskmaster/internal/service"
	"taskmaster/internal/view"
)

type TaskService interface {
	HealthCheck(context.Context) error
	Today() task.Date

	View(context.Context, view.Criteria, int, int) (*service.Result, error)
	Stats(context.Context) view.Summary
	CreateTask(context.Context, service.CreateTaskInput) (*task.Task, error)
	GetTaskByID(context.Context, int64) (*task.Task, error)
	UpdateTask(context.Context, int64, ...task.TaskOption) (*task.Task, error)
	ToggleTask(context.Context, int64) (*task.Task, error)
	DeleteTask(context.Context, int64) error
	MoveTask(context.Context, int64, int) error
	MoveTaskOnto(context.Context, int64, int64) error

	Categories() []task.Category
	CreateCategory(context.Context, string, string) (*task.Category, error)
	UpdateCategory(context.Context, string, string, string) (*task.Category, error)
	DeleteCategory(context.Context, string) (int, error)

	DarkMode(context.Context) bool
	SetDarkMode(context.Context, bool) error
	ToggleDarkMode(context.Context) (bool, error)

	ExportJSON(context.Context) ([]byte, error)
	ImportJSON(context.Context, []byte) (*service.ImportResult, error)
	ExportCSV(context.Context) []byte
	ImportCSV(context.Context, []byte) (*service.ImportResult, error)
	RenderTable(context.Context, io.Writer) error
}

var _ TaskService = (*service.TaskService)(nil)
