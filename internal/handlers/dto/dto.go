package dto

import (
	"time"

	"taskmaster/internal/models/task"
	"taskmaster/internal/service"
	"taskmaster/internal/view"
)

type CreateTaskRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
	DueDate  string `json:"dueDate"`
	DueTime  string `json:"dueTime"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
}

func (r CreateTaskRequest) ToInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		Text:     r.Text,
		Priority: task.Priority(r.Priority),
		DueDate:  r.DueDate,
		DueTime:  r.DueTime,
		Category: r.Category,
		Notes:    r.Notes,
	}
}

// UpdateTaskRequest: nil-поле не меняется, пустая строка в dueDate снимает срок
type UpdateTaskRequest struct {
	Text      *string `json:"text,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	DueTime   *string `json:"dueTime,omitempty"`
	Category  *string `json:"category,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (r UpdateTaskRequest) Options() []task.TaskOption {
	var opts []task.TaskOption
	if r.Text != nil {
		opts = append(opts, task.WithText(*r.Text))
	}
	if r.Priority != nil {
		opts = append(opts, task.WithPriority(task.Priority(*r.Priority)))
	}
	if r.DueDate != nil {
		opts = append(opts, task.WithDueDate(task.Date(*r.DueDate)))
	}
	if r.DueTime != nil {
		opts = append(opts, task.WithDueTime(*r.DueTime))
	}
	if r.Category != nil {
		opts = append(opts, task.WithCategory(*r.Category))
	}
	if r.Notes != nil {
		opts = append(opts, task.WithNotes(*r.Notes))
	}
	if r.Completed != nil {
		opts = append(opts, task.WithCompleted(*r.Completed))
	}
	return opts
}

// MoveTaskRequest: задаётся ровно одно из полей
type MoveTaskRequest struct {
	Index    *int   `json:"index,omitempty"`
	TargetID *int64 `json:"target_id,omitempty"`
}

type CategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type DarkModeRequest struct {
	Enabled bool `json:"enabled"`
}

type TaskResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  string    `json:"priority"`
	DueDate   string    `json:"dueDate"`
	DueTime   string    `json:"dueTime"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	Notes     string    `json:"notes"`
	IsOverdue bool      `json:"is_overdue"`
}

func FromTask(t *task.Task, today task.Date) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		Priority:  string(t.Priority),
		DueDate:   string(t.DueDate),
		DueTime:   t.DueTime,
		Category:  t.Category,
		CreatedAt: t.CreatedAt,
		Notes:     t.Notes,
		IsOverdue: t.IsOverdue(today),
	}
}

func FromTaskList(tasks []task.Task, today task.Date) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i := range tasks {
		result[i] = FromTask(&tasks[i], today)
	}
	return result
}

type ViewResponse struct {
	Tasks      []TaskResponse  `json:"tasks"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalItems int             `json:"total_items"`
	TotalPages int             `json:"total_pages"`
	Pages      []view.PageLink `json:"pages"`
	Stats      view.Summary    `json:"stats"`
}

func FromResult(res *service.Result, today task.Date) ViewResponse {
	pages := res.Links
	if pages == nil {
		pages = []view.PageLink{}
	}
	return ViewResponse{
		Tasks:      FromTaskList(res.Page.Items, today),
		Page:       res.Page.Number,
		PageSize:   res.Page.Size,
		TotalItems: res.Page.TotalItems,
		TotalPages: res.Page.TotalPages,
		Pages:      pages,
		Stats:      res.Stats,
	}
}
