package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Emitter is what command services publish through.
type Emitter interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// NewEvent stamps data with a fresh id and the current time.
func NewEvent(eventType string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	eventJSON, err := json.Marshal(NewEvent(eventType, data))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
