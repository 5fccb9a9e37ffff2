package ports

import (
	"context"
	"time"

	"approvalflow/internal/domain"

	"github.com/google/uuid"
)

// WorkflowRepository persists workflows and their step sequences.
// Multi-row mutations are atomic inside each method; callers never see a
// step updated without its workflow.
type WorkflowRepository interface {
	// Create a workflow together with its ordered steps in one transaction.
	CreateWithSteps(ctx context.Context, wf *domain.Workflow, steps []domain.ApprovalStep) error

	// GetByID loads a workflow with its steps ordered by step_order.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error)

	ListByStatus(ctx context.Context, status domain.WorkflowStatus) ([]domain.Workflow, error)

	// ApplyReview persists a completed step, the recomputed workflow state
	// and the optional review comment in one transaction.
	ApplyReview(ctx context.Context, wf *domain.Workflow, step *domain.ApprovalStep, comment *domain.Comment) error

	// SaveWithSteps persists the workflow and the given subset of its steps
	// in one transaction. Used by return-to-step and resubmission.
	SaveWithSteps(ctx context.Context, wf *domain.Workflow, steps []*domain.ApprovalStep) error

	// AppendStep persists the workflow and one new step in one transaction.
	// Used by escalation.
	AppendStep(ctx context.Context, wf *domain.Workflow, step *domain.ApprovalStep) error

	Save(ctx context.Context, wf *domain.Workflow) error
}

// StepRepository covers step lookups that do not go through the parent
// workflow.
type StepRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalStep, error)

	Save(ctx context.Context, step *domain.ApprovalStep) error

	// FindIncomplete returns incomplete steps with their workflow loaded,
	// optionally restricted to one project. Used by the workload report.
	FindIncomplete(ctx context.Context, projectID *uuid.UUID) ([]domain.ApprovalStep, error)

	// FindOverdue returns incomplete steps whose due date is before now.
	FindOverdue(ctx context.Context, now time.Time) ([]domain.ApprovalStep, error)

	// ReassignIncomplete moves all incomplete steps of a workflow assigned
	// to one reviewer onto another. Returns the number of steps moved.
	ReassignIncomplete(ctx context.Context, workflowID, fromReviewer, toReviewer uuid.UUID) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.Comment, error)
}

type VersionRepository interface {
	// Create inserts the version and bumps the workflow's current version
	// in one transaction.
	Create(ctx context.Context, v *domain.WorkflowVersion, wf *domain.Workflow) error
	ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowVersion, error)
}

// NotificationQueue is the "to-deliver" list drained by the notifier pool.
type NotificationQueue interface {
	Push(ctx context.Context, n domain.Notification) error

	// Pop blocks until a notification is available.
	Pop(ctx context.Context) (domain.Notification, error)
}

// EventBus carries workflow lifecycle events between the service and the
// coordinator.
type EventBus interface {
	Publish(ctx context.Context, event domain.WorkflowEvent) error

	// Subscribe opens a continuous stream (used by the coordinator).
	Subscribe(ctx context.Context) (<-chan domain.WorkflowEvent, error)
}
