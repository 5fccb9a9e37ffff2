package redis

import (
	"context"
	"encoding/json"

	"approvalflow/internal/domain"

	"github.com/redis/go-redis/v9"
)

type EventBus struct {
	client  *redis.Client
	channel string
}

func NewEventBus(client *redis.Client) *EventBus {
	return &EventBus{
		client:  client,
		channel: "approval:events:workflow",
	}
}

// Publish broadcasts a workflow lifecycle event to the network.
func (b *EventBus) Publish(ctx context.Context, event domain.WorkflowEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe opens a continuous stream for the Coordinator.
func (b *EventBus) Subscribe(ctx context.Context) (<-chan domain.WorkflowEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	// Forward Redis messages onto a Go channel for the consumer.
	msgChan := make(chan domain.WorkflowEvent)

	go func() {
		defer close(msgChan)
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			default:
				msg, err := pubsub.ReceiveMessage(ctx)
				if err == nil {
					var event domain.WorkflowEvent
					if err := json.Unmarshal([]byte(msg.Payload), &event); err == nil {
						msgChan <- event
					}
				}
			}
		}
	}()

	return msgChan, nil
}
