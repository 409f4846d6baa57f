package service

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"taskmaster/internal/models/task"
)

// IDGenerator выдаёт id, похожие на метку времени в миллисекундах,
// но строго возрастающие: две задачи в одну миллисекунду получат разные id.
type IDGenerator struct {
	mtx  sync.Mutex
	now  func() time.Time
	last int64
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() int64 {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

func (g *IDGenerator) NextCategoryID() string {
	return task.CategoryIDPrefix + strconv.FormatInt(g.Next(), 10)
}

// Observe учитывает уже существующий id, чтобы новые его не повторили
func (g *IDGenerator) Observe(id int64) {
	g.mtx.Lock()
	defer g.mtx.Unlock()

	if id > g.last {
		g.last = id
	}
}

func (g *IDGenerator) ObserveCategory(id string) {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, task.CategoryIDPrefix), 10, 64)
	if err != nil {
		return
	}
	g.Observe(n)
}

func (g *IDGenerator) ObserveSnapshot(s task.Snapshot) {
	for _, t := range s.Tasks {
		g.Observe(t.ID)
	}
	for _, c := range s.Categories {
		g.ObserveCategory(c.ID)
	}
}
