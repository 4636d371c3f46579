package models

import (
	"time"

	"gorm.io/gorm"
)

// Task status values. RUNNING is the only non-terminal state.
const (
	TaskStatusRunning   = "RUNNING"
	TaskStatusCompleted = "COMPLETED"
	TaskStatusAbandoned = "ABANDONED"
)

// FocusTask is a timed unit of work. It is created RUNNING and only ever
// transitions its status; records are kept for history, never deleted.
type FocusTask struct {
	gorm.Model
	OwnerID         uint       `gorm:"not null;index" json:"ownerId"`
	TaskName        string     `gorm:"not null" json:"taskName"`
	DurationSeconds int        `gorm:"not null" json:"durationSeconds"`
	Status          string     `gorm:"not null;index" json:"status"`
	StartedAt       time.Time  `json:"startedAt"`
	ExpectedEndAt   time.Time  `json:"expectedEndAt"`
	CompletedAt     *time.Time `json:"completedAt"`
}
