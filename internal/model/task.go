package model

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusActive    TaskStatus = "active"
	StatusCompleted TaskStatus = "completed"
)

// Task represents a single item in the tracker. DueDate and CompletedDate
// hold YYYY-MM-DD strings; CompletedDate is set only while Status is completed.
type Task struct {
	ID            uint  `gorm:"primaryKey"`
	UserID        int64 `gorm:"index"`
	Title         string
	Description   string
	Status        TaskStatus `gorm:"index;default:active"`
	Category      string     `gorm:"index"`
	DueDate       *string
	CompletedDate *string `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsCompleted reports whether the task has been marked done.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}
