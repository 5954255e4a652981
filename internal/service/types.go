package service

// Task represents a single task item.
type Task struct {
	ID        int64  `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`

	// Timestamps are maintained by the server and never parsed locally.
	CreatedAt string `json:"created_at" yaml:"created_at"`
	UpdatedAt string `json:"updated_at" yaml:"updated_at"`
}

// TaskUpdate carries a partial update. Nil fields are not sent.
type TaskUpdate struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// SetTitle returns an update that changes only the title.
func SetTitle(title string) TaskUpdate {
	return TaskUpdate{Title: &title}
}

// SetCompleted returns an update that changes only the completion flag.
func SetCompleted(completed bool) TaskUpdate {
	return TaskUpdate{Completed: &completed}
}
