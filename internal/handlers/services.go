package handlers

import (
	"time"

	"antigravity/focus/internal/services"
)

// AccountService captures the account operations required by handlers.
type AccountService interface {
	Register(username, password, nickname string) (*services.AuthResult, error)
	Login(username, password string) (*services.AuthResult, error)
	LoginAsGuest() (*services.AuthResult, error)
	CheckUsername(username string) (bool, error)
}

// TaskLifecycle captures the focus-task operations required by handlers.
type TaskLifecycle interface {
	Start(ownerID uint, taskName string, durationSeconds int, startTime string, now time.Time) (*services.StartResult, error)
	Complete(taskID, callerID uint, now time.Time) (*services.CompleteResult, error)
	Abandon(taskID, callerID uint, now time.Time) error
	ListRunning(callerID uint, now time.Time) ([]services.TaskView, error)
	ListHistory(callerID uint, limit int) ([]services.TaskView, error)
}
