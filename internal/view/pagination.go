package view

import (
	"errors"
	"fmt"
	"math"

	"taskmaster/internal/models/task"
)

// WindowSize - сколько номеров страниц показывает переключатель
const WindowSize = 5

var ErrInvalidPageSize = errors.New("размер страницы должен быть больше нуля")

type OutOfRangeError struct {
	Page       int
	TotalPages int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("страница %d вне диапазона [1, %d]", e.Page, e.TotalPages)
}

type Page struct {
	Items      []task.Task
	Number     int
	Size       int
	TotalItems int
	TotalPages int
}

func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(pageSize)))
}

// Paginate не исправляет номер страницы: вне [1, TotalPages] возвращается *OutOfRangeError.
// Пустой список отдаёт пустую первую страницу.
func Paginate(tasks []task.Task, page, pageSize int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, ErrInvalidPageSize
	}

	total := TotalPages(len(tasks), pageSize)
	if len(tasks) == 0 && page == 1 {
		return Page{Items: []task.Task{}, Number: 1, Size: pageSize}, nil
	}
	if page < 1 || page > total {
		return Page{}, &OutOfRangeError{Page: page, TotalPages: total}
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(tasks))

	return Page{
		Items:      tasks[start:end],
		Number:     page,
		Size:       pageSize,
		TotalItems: len(tasks),
		TotalPages: total,
	}, nil
}

// PageLink - кнопка переключателя страниц. Ellipsis=true означает пропуск.
type PageLink struct {
	Number   int  `json:"number,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PageWindow строит окно из WindowSize номеров вокруг current
// с многоточиями, если окно не достаёт до первой или последней страницы.
func PageWindow(current, totalPages int) []PageLink {
	if totalPages <= 0 {
		return nil
	}
	current = max(1, min(current, totalPages))

	start := max(1, current-WindowSize/2)
	end := start + WindowSize - 1
	if end > totalPages {
		end = totalPages
		start = max(1, end-WindowSize+1)
	}

	links := make([]PageLink, 0, WindowSize+2)
	if start > 1 {
		links = append(links, PageLink{Ellipsis: true})
	}
	for n := start; n <= end; n++ {
		links = append(links, PageLink{Number: n, Current: n == current})
	}
	if end < totalPages {
		links = append(links, PageLink{Ellipsis: true})
	}
	return links
}
