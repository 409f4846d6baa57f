package task

type TaskOption func(*Task)

func WithText(text string) TaskOption {
	return func(task *Task) {
		task.Text = text
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

// WithDueDate с пустой датой снимает срок
func WithDueDate(date Date) TaskOption {
	return func(task *Task) {
		task.DueDate = date
	}
}

func WithDueTime(clock string) TaskOption {
	return func(task *Task) {
		task.DueTime = clock
	}
}

func WithCategory(category string) TaskOption {
	if category == "" {
		return nil
	}
	return func(task *Task) {
		task.Category = category
	}
}

func WithNotes(notes string) TaskOption {
	return func(task *Task) {
		task.Notes = notes
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.Completed = completed
	}
}
