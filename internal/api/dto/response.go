package dto

import (
	"github.com/google/uuid"
)

type WeightedApprovalResponse struct {
	TotalWeight    int  `json:"total_weight"`
	ApprovedWeight int  `json:"approved_weight"`
	RequiredWeight int  `json:"required_weight"`
	IsApproved     bool `json:"is_approved"`
}

// BulkResult reports per-item outcomes of a bulk operation. Partial
// successes are kept; nothing is rolled back.
type BulkResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

type WorkloadWorkflow struct {
	WorkflowID  uuid.UUID `json:"workflow_id"`
	Name        string    `json:"name"`
	DaysPending int       `json:"days_pending"`
}

type ReviewerWorkload struct {
	ReviewerID   uuid.UUID          `json:"reviewer_id"`
	PendingSteps int                `json:"pending_steps"`
	OverdueSteps int                `json:"overdue_steps"`
	Workflows    []WorkloadWorkflow `json:"workflows"`
}
