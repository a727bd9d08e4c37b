package models

import "time"

// TaskStatus is an open-ended status label. Only TaskStatusCompleted has
// side effects.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// TaskUpdate is a partial update. Only fields that were present in the
// request are applied.
type TaskUpdate struct {
	Title       OptionalString `json:"title"`
	Description OptionalString `json:"description"`
	Status      OptionalString `json:"status"`
}

// IsEmpty reports whether no updatable field was provided.
func (u TaskUpdate) IsEmpty() bool {
	return !u.Title.Set && !u.Description.Set && !u.Status.Set
}

// Analytics holds aggregate metrics computed over all tasks at query time.
type Analytics struct {
	TotalTasks               int64    `json:"total_tasks"`
	CompletedTasks           int64    `json:"completed_tasks"`
	AverageCompletionSeconds *float64 `json:"average_completion_seconds"`
}
