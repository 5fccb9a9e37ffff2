package notifier

import (
	"context"
	"log"

	"approvalflow/internal/core/ports"
	"approvalflow/internal/metrics"

	"github.com/google/uuid"
)

// Notifier drains the notification queue. Delivery is fire-and-forget: a
// job that fails is logged and dropped, never retried.
type Notifier struct {
	notifierID string
	queue      ports.NotificationQueue
	registry   DeliveryRegistry
}

func NewNotifier(q ports.NotificationQueue, reg DeliveryRegistry) *Notifier {
	return &Notifier{
		notifierID: uuid.New().String(),
		queue:      q,
		registry:   reg,
	}
}

// ProcessNext handles exactly one notification lifecycle.
func (n *Notifier) ProcessNext(ctx context.Context) {
	job, err := n.queue.Pop(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("Notifier error popping from queue: %v", err)
		return
	}

	deliver, exists := n.registry[job.Kind]
	if !exists {
		log.Printf("Notifier: unknown notification kind %q, dropping", job.Kind)
		return
	}

	if err := deliver(ctx, job); err != nil {
		log.Printf("Notifier %s failed to deliver %s to %s: %v", n.notifierID, job.Kind, job.RecipientID, err)
		return
	}

	metrics.NotificationsTotal.WithLabelValues(string(job.Kind)).Inc()
}

// StartPool launches multiple concurrent delivery loops.
func (n *Notifier) StartPool(ctx context.Context, concurrency int) {
	log.Printf("Starting notifier pool with %d concurrent workers...", concurrency)

	for i := 0; i < concurrency; i++ {
		go func(threadID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Notifier thread %d (ID: %s) shutting down", threadID, n.notifierID)
					return
				default:
					n.ProcessNext(ctx)
				}
			}
		}(i)
	}
}
