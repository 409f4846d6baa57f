package task

import "slices"

// Snapshot - полное сохраняемое состояние приложения
type Snapshot struct {
	Tasks      []Task
	Categories []Category
	DarkMode   bool
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Tasks:      slices.Clone(s.Tasks),
		Categories: slices.Clone(s.Categories),
		DarkMode:   s.DarkMode,
	}
}

func (s Snapshot) TaskIndex(id int64) int {
	return slices.IndexFunc(s.Tasks, func(t Task) bool { return t.ID == id })
}

func (s Snapshot) CategoryIndex(id string) int {
	return slices.IndexFunc(s.Categories, func(c Category) bool { return c.ID == id })
}

// HasCategory: ссылка NoCategory всегда допустима
func (s Snapshot) HasCategory(id string) bool {
	return id == NoCategory || s.CategoryIndex(id) >= 0
}

// CategoryName возвращает имя проекта или "No Project"
func CategoryName(categories []Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "No Project"
}
