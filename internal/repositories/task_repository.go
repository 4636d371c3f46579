package repositories

import (
	"errors"
	"time"

	"antigravity/focus/internal/models"

	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository struct {
	DB *gorm.DB
}

func (r *TaskRepository) Create(task *models.FocusTask) error {
	return r.DB.Create(task).Error
}

// GetOwnedByID fetches a task only if it belongs to the given owner.
// A task that exists but belongs to someone else is reported exactly like
// one that does not exist.
func (r *TaskRepository) GetOwnedByID(taskID, ownerID uint) (*models.FocusTask, error) {
	var task models.FocusTask
	err := r.DB.Where("id = ? AND owner_id = ?", taskID, ownerID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// TransitionStatus moves a task from one status to another in a single
// conditional statement. It reports false when the task was not in the
// expected status, so two racing callers cannot both win the same
// transition.
func (r *TaskRepository) TransitionStatus(taskID, ownerID uint, from, to string, completedAt time.Time) (bool, error) {
	result := r.DB.Model(&models.FocusTask{}).
		Where("id = ? AND owner_id = ? AND status = ?", taskID, ownerID, from).
		Updates(map[string]any{"status": to, "completed_at": completedAt})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListRunningByOwner returns the owner's RUNNING tasks, most recently
// started first.
func (r *TaskRepository) ListRunningByOwner(ownerID uint) ([]models.FocusTask, error) {
	tasks := []models.FocusTask{}
	err := r.DB.
		Where("owner_id = ? AND status = ?", ownerID, models.TaskStatusRunning).
		Order("started_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// ListCompletedByOwner returns up to limit of the owner's COMPLETED tasks,
// most recently completed first. Abandoned tasks are kept in the table but
// never listed here.
func (r *TaskRepository) ListCompletedByOwner(ownerID uint, limit int) ([]models.FocusTask, error) {
	tasks := []models.FocusTask{}
	err := r.DB.
		Where("owner_id = ? AND status = ?", ownerID, models.TaskStatusCompleted).
		Order("completed_at DESC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}
