package services

import (
	"time"

	"antigravity/focus/internal/leveling"
	"antigravity/focus/internal/models"
)

// UserStore captures the account persistence operations required by services.
// Implementations must enforce username uniqueness atomically.
type UserStore interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(userID uint) (*models.User, error)
	ExistsByUsername(username string) (bool, error)
}

// TaskStore captures the focus-task persistence operations required by
// services. TransitionStatus must be conditional on the current status so a
// task cannot be completed twice.
type TaskStore interface {
	Create(task *models.FocusTask) error
	GetOwnedByID(taskID, ownerID uint) (*models.FocusTask, error)
	TransitionStatus(taskID, ownerID uint, from, to string, completedAt time.Time) (bool, error)
	ListRunningByOwner(ownerID uint) ([]models.FocusTask, error)
	ListCompletedByOwner(ownerID uint, limit int) ([]models.FocusTask, error)
}

// LevelStore captures the level-record persistence operations required by
// services. Grant must be atomic per owner.
type LevelStore interface {
	GetByOwner(ownerID uint) (*models.UserLevel, error)
	EnsureExists(ownerID uint) error
	Grant(ownerID uint, outcome leveling.Outcome) (*models.UserLevel, error)
}
