package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TransitionEvent describes a single enrollment status change. One event is
// published per committed transition; delivery to students (push channel,
// webhook, polling endpoint) is owned by downstream consumers.
type TransitionEvent struct {
	StudentID    string    `json:"student_id"`
	Term         string    `json:"term"`
	AcademicYear string    `json:"academic_year"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits transition events to an external notification collaborator.
type Publisher interface {
	PublishTransition(ctx context.Context, event TransitionEvent) error
}

// RedisPublisher broadcasts events over a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisPublisher constructs a publisher for the given channel.
func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{client: client, channel: channel, logger: logger}
}

// PublishTransition marshals and publishes the event.
func (p *RedisPublisher) PublishTransition(ctx context.Context, event TransitionEvent) error {
	if p.client == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transition event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish transition event: %w", err)
	}
	p.logger.Debug("transition event published",
		zap.String("student_id", event.StudentID),
		zap.String("status", event.Status),
	)
	return nil
}

// NopPublisher swallows events when publication is disabled.
type NopPublisher struct{}

// PublishTransition implements Publisher.
func (NopPublisher) PublishTransition(context.Context, TransitionEvent) error { return nil }
