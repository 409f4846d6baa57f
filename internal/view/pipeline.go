package view

import (
	"slices"
	"strings"

	"taskmaster/internal/models/task"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Status string

const StatusAll Status = "all"
const StatusActive Status = "active"
const StatusCompleted Status = "completed"

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case "":
		return StatusAll, true
	case StatusAll, StatusActive, StatusCompleted:
		return st, true
	}
	return "", false
}

type SortMode string

const SortDefault SortMode = "default"
const SortPriority SortMode = "priority"
const SortDueDate SortMode = "dueDate"
const SortAlphabetical SortMode = "alphabetical"

func ParseSortMode(s string) (SortMode, bool) {
	switch m := SortMode(s); m {
	case "":
		return SortDefault, true
	case SortDefault, SortPriority, SortDueDate, SortAlphabetical:
		return m, true
	}
	return "", false
}

// Criteria - текущее состояние фильтров интерфейса
type Criteria struct {
	Category string
	Status   Status
	Search   string
	Sort     SortMode
}

// Compute строит видимую последовательность задач:
// фильтр по категории, статусу и поиску, сортировка, затем
// перераскладка по корзинам (просроченные, предстоящие, без срока, выполненные).
// Исходный срез не изменяется.
func Compute(tasks []task.Task, criteria Criteria, today task.Date) []task.Task {
	filtered := Filter(tasks, criteria)
	sorted := Sort(filtered, criteria.Sort)
	return Prioritize(sorted, today)
}

func Filter(tasks []task.Task, criteria Criteria) []task.Task {
	search := strings.ToLower(criteria.Search)
	res := make([]task.Task, 0, len(tasks))

	for _, t := range tasks {
		if criteria.Category != "" && criteria.Category != task.NoCategory && t.Category != criteria.Category {
			continue
		}

		switch criteria.Status {
		case StatusActive:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(t.Text), search) &&
			!strings.Contains(strings.ToLower(t.Notes), search) {
			continue
		}

		res = append(res, t)
	}
	return res
}

// Sort возвращает отсортированную копию. Все режимы стабильны.
func Sort(tasks []task.Task, mode SortMode) []task.Task {
	sorted := slices.Clone(tasks)

	switch mode {
	case SortPriority:
		slices.SortStableFunc(sorted, func(a, b task.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
	case SortDueDate:
		slices.SortStableFunc(sorted, compareDueLast)
	case SortAlphabetical:
		// Collator не потокобезопасен, поэтому создаётся на каждый вызов
		coll := collate.New(language.English)
		slices.SortStableFunc(sorted, func(a, b task.Task) int {
			return coll.CompareString(a.Text, b.Text)
		})
	}
	return sorted
}

// задачи без срока уходят в конец
func compareDueLast(a, b task.Task) int {
	aHas, bHas := a.HasDue(), b.HasDue()
	switch {
	case !aHas && !bHas:
		return 0
	case !aHas:
		return 1
	case !bHas:
		return -1
	}
	return a.DueDate.Compare(b.DueDate)
}

// Prioritize раскладывает задачи по корзинам поверх любой сортировки.
// Просроченные: ближайшие к today первыми. Предстоящие: по возрастанию срока.
// Без срока и выполненные сохраняют входной порядок.
func Prioritize(tasks []task.Task, today task.Date) []task.Task {
	var overdue, upcoming, noDue, completed []task.Task

	for _, t := range tasks {
		switch {
		case t.Completed:
			completed = append(completed, t)
		case !t.HasDue():
			noDue = append(noDue, t)
		case t.DueDate.Compare(today) < 0:
			overdue = append(overdue, t)
		default:
			upcoming = append(upcoming, t)
		}
	}

	slices.SortStableFunc(overdue, func(a, b task.Task) int {
		return b.DueDate.Compare(a.DueDate)
	})
	slices.SortStableFunc(upcoming, func(a, b task.Task) int {
		return a.DueDate.Compare(b.DueDate)
	})

	res := make([]task.Task, 0, len(tasks))
	res = append(res, overdue...)
	res = append(res, upcoming...)
	res = append(res, noDue...)
	res = append(res, completed...)
	return res
}

// Overdue возвращает только просроченную корзину в порядке Prioritize
func Overdue(tasks []task.Task, today task.Date) []task.Task {
	var res []task.Task
	for _, t := range Prioritize(tasks, today) {
		if !t.IsOverdue(today) {
			break
		}
		res = append(res, t)
	}
	return res
}
