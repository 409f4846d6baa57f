package repository

// ключи, под которыми независимо сохраняются части состояния
const (
	KeyTasks      = "tasks"
	KeyCategories = "categories"
	KeyDarkMode   = "darkMode"
)
