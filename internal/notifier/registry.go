package notifier

import (
	"context"
	"log"

	"approvalflow/internal/domain"
)

// DeliveryFunc sends one notification to its recipient.
type DeliveryFunc func(ctx context.Context, n domain.Notification) error

// DeliveryRegistry maps notification kinds to delivery channels.
type DeliveryRegistry map[domain.NotificationKind]DeliveryFunc

// InitRegistry wires up the delivery channels. The log-based delivery
// stands in for the mail/in-app integrations the dashboard uses.
func InitRegistry() DeliveryRegistry {
	registry := make(DeliveryRegistry)

	registry[domain.NotifyReviewRequested] = func(ctx context.Context, n domain.Notification) error {
		log.Printf("notify %s: %s (workflow %s)", n.RecipientID, n.Message, n.WorkflowID)
		return nil
	}

	registry[domain.NotifyOverdueReminder] = func(ctx context.Context, n domain.Notification) error {
		log.Printf("remind %s: %s (workflow %s)", n.RecipientID, n.Message, n.WorkflowID)
		return nil
	}

	registry[domain.NotifyWorkflowCompleted] = func(ctx context.Context, n domain.Notification) error {
		log.Printf("notify %s: %s", n.RecipientID, n.Message)
		return nil
	}

	return registry
}
