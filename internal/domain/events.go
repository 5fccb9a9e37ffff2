package domain

import (
	"github.com/google/uuid"
)

type EventType string

const (
	EventWorkflowSubmitted EventType = "workflow.submitted"
	EventReviewRecorded    EventType = "review.recorded"
	EventWorkflowEscalated EventType = "workflow.escalated"
)

// WorkflowEvent is published to Redis Pub/Sub after a lifecycle mutation.
// The coordinator consumes it to fan out reviewer notifications.
type WorkflowEvent struct {
	Type       EventType      `json:"type"`
	WorkflowID uuid.UUID      `json:"workflow_id"`
	StepID     uuid.UUID      `json:"step_id,omitempty"`
	ActorID    uuid.UUID      `json:"actor_id"`
	Action     StepAction     `json:"action,omitempty"`
	Status     WorkflowStatus `json:"status,omitempty"`
}

type NotificationKind string

const (
	NotifyReviewRequested   NotificationKind = "review_requested"
	NotifyOverdueReminder   NotificationKind = "overdue_reminder"
	NotifyWorkflowCompleted NotificationKind = "workflow_completed"
)

// Notification is one delivery job on the Redis list queue.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	WorkflowID  uuid.UUID        `json:"workflow_id"`
	StepID      uuid.UUID        `json:"step_id,omitempty"`
	Message     string           `json:"message"`
}
