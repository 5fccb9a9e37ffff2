package domain

import (
	"time"

	"github.com/google/uuid"
)

type StepAction string

const (
	ActionApprove        StepAction = "APPROVE"
	ActionReject         StepAction = "REJECT"
	ActionRequestChanges StepAction = "REQUEST_CHANGES"
	ActionSkip           StepAction = "SKIP"
)

// Valid reports whether a is one of the known review actions.
func (a StepAction) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionRequestChanges, ActionSkip:
		return true
	}
	return false
}

type ApprovalStep struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;"`
	WorkflowID uuid.UUID `gorm:"type:uuid;index;not null"`
	ReviewerID uuid.UUID `gorm:"type:uuid;index;not null"`
	StepOrder  int       `gorm:"index;not null"`
	IsRequired bool      `gorm:"default:true"`

	// Review outcome. Action is nil until the step is completed.
	IsCompleted bool        `gorm:"index;default:false"`
	Action      *StepAction `gorm:"type:varchar(20)"`
	Comment     string      `gorm:"type:text"`
	Reasoning   string      `gorm:"type:text"`
	CompletedAt *time.Time

	ApprovalWeight int  `gorm:"default:1"`
	CanSkip        bool `gorm:"default:false"`
	DueDate        *time.Time

	// Delegation. Recording a delegate does not reassign ReviewerID.
	IsDelegated      bool       `gorm:"default:false"`
	DelegatedTo      *uuid.UUID `gorm:"type:uuid"`
	DelegatedBy      *uuid.UUID `gorm:"type:uuid"`
	DelegationReason string     `gorm:"type:text"`
	DelegatedAt      *time.Time

	// Escalation
	EscalationLevel  int        `gorm:"default:0"`
	EscalationReason string     `gorm:"type:text"`
	EscalatedBy      *uuid.UUID `gorm:"type:uuid"`

	// Return-to-step
	HasBeenReturned bool       `gorm:"default:false"`
	ReturnedBy      *uuid.UUID `gorm:"type:uuid"`
	ReturnReason    string     `gorm:"type:text"`

	// Set when the step is loaded through the workload query.
	Workflow *Workflow `gorm:"foreignKey:WorkflowID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewStep(workflowID, reviewerID uuid.UUID, order int, required bool) *ApprovalStep {
	return &ApprovalStep{
		ID:             uuid.New(),
		WorkflowID:     workflowID,
		ReviewerID:     reviewerID,
		StepOrder:      order,
		IsRequired:     required,
		ApprovalWeight: 1,
		CreatedAt:      time.Now().UTC(),
	}
}

// Complete records the reviewer's decision on the step.
func (s *ApprovalStep) Complete(action StepAction, comment, reasoning string, at time.Time) {
	s.IsCompleted = true
	s.Action = &action
	s.Comment = comment
	s.Reasoning = reasoning
	s.CompletedAt = &at
}

// Reset clears the review outcome so the step can be processed again.
// Delegation, escalation and return history are preserved.
func (s *ApprovalStep) Reset() {
	s.IsCompleted = false
	s.Action = nil
	s.Comment = ""
	s.Reasoning = ""
	s.CompletedAt = nil
}

// MarkReturned flags the step as rewound by a return-to-step operation.
func (s *ApprovalStep) MarkReturned(by uuid.UUID, reason string) {
	s.HasBeenReturned = true
	s.ReturnedBy = &by
	s.ReturnReason = reason
}

// IsOverdue reports whether the step is incomplete and past its due date.
func (s *ApprovalStep) IsOverdue(now time.Time) bool {
	return !s.IsCompleted && s.DueDate != nil && s.DueDate.Before(now)
}
