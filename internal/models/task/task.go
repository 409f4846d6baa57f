package task

import (
	"strings"
	"time"
)

// NoCategory - ссылка на категорию, означающая "без проекта"
const NoCategory = "all"

type Task struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	DueDate   Date      `json:"dueDate"`
	DueTime   string    `json:"dueTime"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	Notes     string    `json:"notes"`
}

// HasDue сообщает, назначен ли задаче корректный срок
func (t Task) HasDue() bool {
	_, ok := t.DueDate.Time()
	return ok
}

// IsOverdue: задача не выполнена и срок строго раньше today
func (t Task) IsOverdue(today Date) bool {
	if t.Completed || !t.HasDue() {
		return false
	}
	return t.DueDate.Compare(today) < 0
}

type Priority string

const PriorityHigh Priority = "high"
const PriorityMedium Priority = "medium"
const PriorityLow Priority = "low"

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank: high < medium < low, неизвестные значения уходят в конец
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Title - отображаемое имя приоритета ("High", "Medium", "Low")
func (p Priority) Title() string {
	if p == "" {
		return ""
	}
	s := string(p)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParsePriority разбирает приоритет без учёта регистра и пробелов
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", false
	}
	return p, true
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

const CategoryIDPrefix = "cat_"

// DefaultColor - первый цвет палитры
const DefaultColor = "#ff5945"

var Palette = []string{
	DefaultColor,
	"#ff9f43",
	"#feca57",
	"#1dd1a1",
	"#54a0ff",
	"#5f27cd",
	"#c8d6e5",
}
