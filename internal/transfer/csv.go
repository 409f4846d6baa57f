package transfer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"taskmaster/internal/models/task"
)

var Header = []string{"Task", "Priority", "Status", "Due Date", "Time", "Project", "Notes"}

const (
	colTask = iota
	colPriority
	colStatus
	colDueDate
	colTime
	colProject
	colNotes
)

// minColumns - строки короче пропускаются
const minColumns = 4

const StatusCompleted = "Completed"
const StatusPending = "Pending"

var errUnterminatedQuote = errors.New("незакрытая кавычка")

// Record - задача, прочитанная из CSV, ещё без id и даты создания
type Record struct {
	Text      string
	Priority  task.Priority
	Completed bool
	DueDate   task.Date
	DueTime   string
	Project   string
	Notes     string
}

type CSVResult struct {
	Records []Record
	Skipped int
}

func row(t task.Task, categories []task.Category) []string {
	status := StatusPending
	if t.Completed {
		status = StatusCompleted
	}
	return []string{
		t.Text,
		t.Priority.Title(),
		status,
		string(t.DueDate),
		t.DueTime,
		task.CategoryName(categories, t.Category),
		t.Notes,
	}
}

// ExportCSV: заголовок без кавычек, каждое значение строки в кавычках
func ExportCSV(tasks []task.Task, categories []task.Category) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(Header, ","))
	buf.WriteByte('\n')

	for _, t := range tasks {
		fields := row(t, categories)
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quote(f))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func flatten(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(flatten(s), `"`, `""`) + `"`
}

// ParseCSV пропускает заголовок, пустые строки и битые строки по одной
func ParseCSV(data []byte) CSVResult {
	var res CSVResult
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := parseRecord(line)
		if err != nil {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func parseRecord(line string) (Record, error) {
	fields, err := SplitLine(line)
	if err != nil {
		return Record{}, err
	}
	if len(fields) < minColumns {
		return Record{}, fmt.Errorf("ожидалось не меньше %d колонок, получено %d", minColumns, len(fields))
	}

	text := strings.TrimSpace(fields[colTask])
	if text == "" {
		return Record{}, errors.New("пустой текст задачи")
	}

	priority, ok := task.ParsePriority(fields[colPriority])
	if !ok {
		priority = task.PriorityMedium
	}

	due, err := task.ParseDate(fields[colDueDate])
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Text:      text,
		Priority:  priority,
		Completed: strings.EqualFold(strings.TrimSpace(fields[colStatus]), StatusCompleted),
		DueDate:   due,
	}

	if len(fields) > colTime {
		clock, err := task.ParseClock(fields[colTime])
		if err != nil {
			return Record{}, err
		}
		rec.DueTime = clock
	}
	if len(fields) > colProject {
		rec.Project = fields[colProject]
	}
	if len(fields) > colNotes {
		rec.Notes = fields[colNotes]
	}
	return rec, nil
}

// SplitLine делит строку по запятым с учётом кавычек; "" внутри кавычек - это одна кавычка
func SplitLine(line string) ([]string, error) {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuotes && c == '"':
			if i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = false
			}
		case inQuotes:
			field.WriteByte(c)
		case c == '"':
			inQuotes = true
		case c == ',':
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}

	if inQuotes {
		return nil, errUnterminatedQuote
	}
	return append(fields, field.String()), nil
}
