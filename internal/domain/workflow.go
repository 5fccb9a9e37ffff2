package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WorkflowStatus string

const (
	StatusPending          WorkflowStatus = "PENDING"
	StatusInReview         WorkflowStatus = "IN_REVIEW"
	StatusChangesRequested WorkflowStatus = "CHANGES_REQUESTED"
	StatusApproved         WorkflowStatus = "APPROVED"
	StatusRejected         WorkflowStatus = "REJECTED"
	StatusCancelled        WorkflowStatus = "CANCELLED"
)

type Workflow struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Category    string     `gorm:"type:varchar(50);index"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index"`
	SubmitterID uuid.UUID  `gorm:"type:uuid;index;not null"`

	// State
	Status         WorkflowStatus `gorm:"type:varchar(20);index;default:'PENDING'"`
	CurrentVersion int            `gorm:"default:1"`
	FileIDs        datatypes.JSON `gorm:"type:jsonb"`

	SubmittedAt      time.Time
	LastReviewAt     *time.Time
	LastEscalationAt *time.Time
	CompletedAt      *time.Time

	// Relationships
	// Steps are loaded ordered by step_order when fetched through the repository.
	Steps []ApprovalStep `gorm:"foreignKey:WorkflowID"`

	// Audit
	CreatedAt time.Time
	UpdatedAt time.Time
}

// --- FACTORY ---
func NewWorkflow(submitterID uuid.UUID, name, description, category string) *Workflow {
	return &Workflow{
		ID:             uuid.New(),
		Name:           name,
		Description:    description,
		Category:       category,
		SubmitterID:    submitterID,
		Status:         StatusPending,
		CurrentVersion: 1,
		SubmittedAt:    time.Now().UTC(),
	}
}

// --- METHODS ---

// IsClosed reports whether the workflow is in a state that accepts no
// further review actions.
func (w *Workflow) IsClosed() bool {
	return w.Status == StatusApproved || w.Status == StatusRejected || w.Status == StatusCancelled
}

// EarliestIncompleteStep returns the incomplete step with the lowest
// step order, or nil when every step is completed.
func (w *Workflow) EarliestIncompleteStep() *ApprovalStep {
	var earliest *ApprovalStep
	for i := range w.Steps {
		s := &w.Steps[i]
		if s.IsCompleted {
			continue
		}
		if earliest == nil || s.StepOrder < earliest.StepOrder {
			earliest = s
		}
	}
	return earliest
}

// AllRequiredStepsSettled reports whether every required step is completed.
// Optional steps never block sequential approval.
func (w *Workflow) AllRequiredStepsSettled() bool {
	for i := range w.Steps {
		s := &w.Steps[i]
		if s.IsRequired && !s.IsCompleted {
			return false
		}
	}
	return true
}

// MaxStepOrder returns the highest step order in the workflow, or 0 when
// the workflow has no steps.
func (w *Workflow) MaxStepOrder() int {
	max := 0
	for i := range w.Steps {
		if w.Steps[i].StepOrder > max {
			max = w.Steps[i].StepOrder
		}
	}
	return max
}
