package task

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"
const ClockLayout = "15:04"

// Date - календарная дата без времени в формате YYYY-MM-DD.
// Пустая строка означает отсутствие срока.
type Date string

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("неверная дата %q: %w", s, err)
	}
	return DateOf(parsed), nil
}

func (d Date) IsZero() bool {
	return d == ""
}

// Time возвращает полночь даты в UTC. ok=false для пустой или битой даты.
func (d Date) Time() (time.Time, bool) {
	if d.IsZero() {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Compare сравнивает две корректные даты. Битые даты считаются меньше любых корректных.
func (d Date) Compare(other Date) int {
	a, okA := d.Time()
	b, okB := other.Time()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	return a.Compare(b)
}

// ParseClock проверяет время суток в формате HH:MM
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	parsed, err := time.Parse(ClockLayout, s)
	if err != nil {
		return "", fmt.Errorf("неверное время %q: %w", s, err)
	}
	return parsed.Format(ClockLayout), nil
}
