package services

import (
	"errors"
	"fmt"
	"time"

	"antigravity/focus/internal/events"
	"antigravity/focus/internal/leveling"
	"antigravity/focus/internal/models"
	"antigravity/focus/internal/repositories"

	"go.uber.org/zap"
)

var (
	ErrInvalidDuration  = errors.New("duration must be a positive number of seconds")
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskNotStoppable = errors.New("task is not in a completable state")
)

const (
	startTimeLayout = "2006-01-02T15:04:05"
	endTimeLayout   = "2006-01-02 15:04:05"

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Notifier receives best-effort completion events.
type Notifier interface {
	NotifyCompleted(event events.TaskCompleted)
}

// StartResult is returned when a focus task begins.
type StartResult struct {
	Task          *models.FocusTask
	Message       string
	ExpectedEndAt string
}

// CompleteResult is returned when a focus task finishes, including the
// caller's updated level.
type CompleteResult struct {
	Message         string
	CultivationRank string
	TotalExperience int64
	LeveledUp       bool
}

// TaskView is the read model for task listings. RemainingSeconds is computed
// at read time, never stored.
type TaskView struct {
	ID               uint       `json:"id"`
	TaskName         string     `json:"taskName"`
	DurationSeconds  int        `json:"durationSeconds"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"startedAt"`
	ExpectedEndAt    time.Time  `json:"expectedEndAt"`
	CompletedAt      *time.Time `json:"completedAt"`
	RemainingSeconds int64      `json:"remainingSeconds"`
}

// TaskService drives a focus task through RUNNING -> {COMPLETED, ABANDONED}
// and applies leveling on completion. It holds no per-request state.
type TaskService struct {
	Tasks    TaskStore
	Levels   LevelStore
	Engine   *leveling.Engine
	Notifier Notifier
	Logger   *zap.Logger
}

func NewTaskService(tasks TaskStore, levels LevelStore, engine *leveling.Engine, notifier Notifier, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{Tasks: tasks, Levels: levels, Engine: engine, Notifier: notifier, Logger: logger}
}

// Start creates a RUNNING task. An unparseable or missing start time falls
// back to now; that fallback is a deliberate recovery, not an error.
func (s *TaskService) Start(ownerID uint, taskName string, durationSeconds int, startTime string, now time.Time) (*StartResult, error) {
	if durationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}

	startedAt := now
	if startTime != "" {
		if parsed, err := parseStartTime(startTime); err == nil {
			startedAt = parsed
		}
	}

	task := &models.FocusTask{
		OwnerID:         ownerID,
		TaskName:        taskName,
		DurationSeconds: durationSeconds,
		Status:          models.TaskStatusRunning,
		StartedAt:       startedAt,
		ExpectedEndAt:   startedAt.Add(time.Duration(durationSeconds) * time.Second),
	}
	if err := s.Tasks.Create(task); err != nil {
		return nil, err
	}

	return &StartResult{
		Task:          task,
		Message:       "修炼任务已开始：" + taskName,
		ExpectedEndAt: task.ExpectedEndAt.Format(endTimeLayout),
	}, nil
}

// Complete finishes a RUNNING task and grants experience. Completing an
// already-COMPLETED task is an idempotent read of the caller's level, not an
// error, so retries are safe. A task owned by someone else is
// indistinguishable from a missing one.
func (s *TaskService) Complete(taskID, callerID uint, now time.Time) (*CompleteResult, error) {
	task, err := s.getOwned(taskID, callerID)
	if err != nil {
		return nil, err
	}

	switch task.Status {
	case models.TaskStatusCompleted:
		return s.alreadyCompleted(callerID)
	case models.TaskStatusRunning:
		// fall through to the transition below
	default:
		return nil, fmt.Errorf("%w: %s", ErrTaskNotStoppable, task.Status)
	}

	won, err := s.Tasks.TransitionStatus(taskID, callerID, models.TaskStatusRunning, models.TaskStatusCompleted, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// A concurrent caller transitioned the task first; re-read and
		// route to the idempotent or invalid-state branch.
		task, err = s.getOwned(taskID, callerID)
		if err != nil {
			return nil, err
		}
		if task.Status == models.TaskStatusCompleted {
			return s.alreadyCompleted(callerID)
		}
		return nil, fmt.Errorf("%w: %s", ErrTaskNotStoppable, task.Status)
	}

	outcome := s.Engine.Apply(int64(task.DurationSeconds))
	level, err := s.Levels.Grant(callerID, outcome)
	if err != nil {
		return nil, err
	}

	s.notifyCompleted(task, outcome, level, now)

	message := fmt.Sprintf("修炼结束，吸收了 %d 点天地灵气。", outcome.ExpGain)
	if outcome.LeveledUp {
		message = fmt.Sprintf("✨ 天地异象！渡劫成功！境界提升至 %s！ ✨", level.CultivationRank)
	}
	return &CompleteResult{
		Message:         message,
		CultivationRank: level.CultivationRank,
		TotalExperience: level.TotalExperience,
		LeveledUp:       outcome.LeveledUp,
	}, nil
}

// Abandon marks a RUNNING task ABANDONED. It is best-effort cleanup: a
// missing, foreign, or already-terminal task is silently ignored.
func (s *TaskService) Abandon(taskID, callerID uint, now time.Time) error {
	_, err := s.Tasks.TransitionStatus(taskID, callerID, models.TaskStatusRunning, models.TaskStatusAbandoned, now)
	return err
}

// ListRunning returns the caller's RUNNING tasks, most recently started
// first, with remaining time computed against now.
func (s *TaskService) ListRunning(callerID uint, now time.Time) ([]TaskView, error) {
	tasks, err := s.Tasks.ListRunningByOwner(callerID)
	if err != nil {
		return nil, err
	}
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		remaining := int64(task.ExpectedEndAt.Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		views = append(views, newTaskView(task, remaining))
	}
	return views, nil
}

// ListHistory returns the caller's COMPLETED tasks, most recently completed
// first. Abandoned tasks are excluded.
func (s *TaskService) ListHistory(callerID uint, limit int) ([]TaskView, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	tasks, err := s.Tasks.ListCompletedByOwner(callerID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, newTaskView(task, 0))
	}
	return views, nil
}

func (s *TaskService) getOwned(taskID, callerID uint) (*models.FocusTask, error) {
	task, err := s.Tasks.GetOwnedByID(taskID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) alreadyCompleted(callerID uint) (*CompleteResult, error) {
	if err := s.Levels.EnsureExists(callerID); err != nil {
		return nil, err
	}
	level, err := s.Levels.GetByOwner(callerID)
	if err != nil {
		return nil, err
	}
	return &CompleteResult{
		Message:         "修炼此前已圆满完成",
		CultivationRank: level.CultivationRank,
		TotalExperience: level.TotalExperience,
		LeveledUp:       false,
	}, nil
}

func (s *TaskService) notifyCompleted(task *models.FocusTask, outcome leveling.Outcome, level *models.UserLevel, now time.Time) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.NotifyCompleted(events.TaskCompleted{
		TaskID:          task.ID,
		UserID:          task.OwnerID,
		TaskName:        task.TaskName,
		DurationSeconds: task.DurationSeconds,
		ExpGain:         outcome.ExpGain,
		LeveledUp:       outcome.LeveledUp,
		CultivationRank: level.CultivationRank,
		CompletedAt:     now,
	})
}

func newTaskView(task models.FocusTask, remaining int64) TaskView {
	return TaskView{
		ID:               task.ID,
		TaskName:         task.TaskName,
		DurationSeconds:  task.DurationSeconds,
		Status:           task.Status,
		StartedAt:        task.StartedAt,
		ExpectedEndAt:    task.ExpectedEndAt,
		CompletedAt:      task.CompletedAt,
		RemainingSeconds: remaining,
	}
}

func parseStartTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.ParseInLocation(startTimeLayout, value, time.Local)
}
