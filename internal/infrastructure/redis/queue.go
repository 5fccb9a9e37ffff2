package redis

import (
	"context"
	"encoding/json"
	"time"

	"approvalflow/internal/domain"

	"github.com/redis/go-redis/v9"
)

type NotificationQueue struct {
	client    *redis.Client
	queueName string
}

func NewNotificationQueue(client *redis.Client) *NotificationQueue {
	return &NotificationQueue{
		client:    client,
		queueName: "approval:queue:notifications",
	}
}

// Push appends a notification job to the end of the list.
func (q *NotificationQueue) Push(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, q.queueName, payload).Err()
}

// Pop blocks until a notification is available and removes it from the
// front of the list.
func (q *NotificationQueue) Pop(ctx context.Context) (domain.Notification, error) {
	var n domain.Notification
	// 0 means "wait forever until an item appears"
	result, err := q.client.BLPop(ctx, 0*time.Second, q.queueName).Result()
	if err != nil {
		return n, err
	}
	// BLPop returns a slice: [QueueName, Element]
	err = json.Unmarshal([]byte(result[1]), &n)
	return n, err
}
