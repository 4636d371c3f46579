package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel carrying task-completion events.
const TaskCompletedChannel = "focus_completed"

// TaskCompleted is published after a task transitions to COMPLETED and its
// experience has been granted.
type TaskCompleted struct {
	TaskID          uint      `json:"taskId"`
	UserID          uint      `json:"userId"`
	TaskName        string    `json:"taskName"`
	DurationSeconds int       `json:"durationSeconds"`
	ExpGain         int64     `json:"expGain"`
	LeveledUp       bool      `json:"leveledUp"`
	CultivationRank string    `json:"cultivationRank"`
	CompletedAt     time.Time `json:"completedAt"`
	Instance        string    `json:"instance"`
}

// Publisher broadcasts completion events over Redis pub/sub. Publishing is
// best-effort: failures are logged and never propagated to the caller.
type Publisher struct {
	rdb        *redis.Client
	logger     *zap.Logger
	instanceID string
}

func NewPublisher(redisAddr string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	return &Publisher{
		rdb:        rdb,
		logger:     logger,
		instanceID: uuid.New().String()[:8], // short instance ID for event tracing
	}
}

// NotifyCompleted publishes the event on the completion channel.
func (p *Publisher) NotifyCompleted(event TaskCompleted) {
	event.Instance = p.instanceID
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode completion event", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, TaskCompletedChannel, payload).Err(); err != nil {
		p.logger.Warn("failed to publish completion event",
			zap.Uint("taskId", event.TaskID),
			zap.Error(err))
	}
}

// Close releases the underlying Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
