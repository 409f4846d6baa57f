package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"taskmaster/internal/models/task"
)

const FormatVersion = "1.0"

// ISOLayout - момент времени с миллисекундами в UTC
const ISOLayout = "2006-01-02T15:04:05.000Z"

type Backup struct {
	Tasks      []task.Task     `json:"tasks"`
	Categories []task.Category `json:"categories"`
	ExportDate string          `json:"exportDate"`
	Version    string          `json:"version"`
}

// Document - разобранный файл резервной копии.
// nil-поле означает, что в документе его не было и коллекцию заменять не нужно.
type Document struct {
	Tasks      *[]task.Task     `json:"tasks"`
	Categories *[]task.Category `json:"categories"`
	ExportDate string           `json:"exportDate"`
	Version    string           `json:"version"`
}

func ExportJSON(tasks []task.Task, categories []task.Category, now time.Time) ([]byte, error) {
	backup := Backup{
		Tasks:      nonNil(tasks),
		Categories: nonNil(categories),
		ExportDate: now.UTC().Format(ISOLayout),
		Version:    FormatVersion,
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("сериализация резервной копии: %w", err)
	}
	return data, nil
}

// ParseJSON не трогает состояние: применение документа остаётся вызывающему
func ParseJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("разбор JSON: %w", err)
	}

	if doc.Tasks != nil {
		seen := make(map[int64]bool, len(*doc.Tasks))
		for _, t := range *doc.Tasks {
			if seen[t.ID] {
				return Document{}, fmt.Errorf("повторяющийся id задачи %d", t.ID)
			}
			seen[t.ID] = true
		}
	}

	if doc.Categories != nil {
		seen := make(map[string]bool, len(*doc.Categories))
		for _, c := range *doc.Categories {
			if c.ID == "" || c.ID == task.NoCategory {
				return Document{}, fmt.Errorf("недопустимый id категории %q", c.ID)
			}
			if seen[c.ID] {
				return Document{}, fmt.Errorf("повторяющийся id категории %q", c.ID)
			}
			seen[c.ID] = true
		}
	}

	return doc, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
