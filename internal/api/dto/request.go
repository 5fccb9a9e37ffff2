package dto

import (
	"time"

	"github.com/google/uuid"
)

type StepSpec struct {
	ReviewerID     uuid.UUID  `json:"reviewer_id" binding:"required"`
	StepOrder      int        `json:"step_order" binding:"required,min=1"`
	IsRequired     bool       `json:"is_required"`
	ApprovalWeight int        `json:"approval_weight"`
	CanSkip        bool       `json:"can_skip"`
	DueDate        *time.Time `json:"due_date"`
}

type SubmitWorkflowRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	ProjectID   *uuid.UUID `json:"project_id"`
	FileIDs     []string   `json:"file_ids"`
	Steps       []StepSpec `json:"steps" binding:"required,min=1,dive"`
}

type ReviewRequest struct {
	Action              string `json:"action" binding:"required"`
	Comment             string `json:"comment"`
	Reasoning           string `json:"reasoning"`
	SkipToFinalApproval bool   `json:"skip_to_final_approval"`
}

type DelegateRequest struct {
	DelegateTo uuid.UUID `json:"delegate_to" binding:"required"`
	Reason     string    `json:"reason"`
}

type EscalateRequest struct {
	EscalateTo uuid.UUID `json:"escalate_to" binding:"required"`
	Reason     string    `json:"reason"`
}

type ReturnToStepRequest struct {
	StepID uuid.UUID `json:"step_id" binding:"required"`
	Reason string    `json:"reason"`
}

type ResubmitRequest struct {
	FileIDs []string `json:"file_ids"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type BulkActionRequest struct {
	WorkflowIDs []uuid.UUID `json:"workflow_ids" binding:"required,min=1"`
	Comment     string      `json:"comment"`
}

type BulkReassignRequest struct {
	WorkflowIDs  []uuid.UUID `json:"workflow_ids" binding:"required,min=1"`
	FromReviewer uuid.UUID   `json:"from_reviewer" binding:"required"`
	ToReviewer   uuid.UUID   `json:"to_reviewer" binding:"required"`
}

type AddCommentRequest struct {
	Content         string     `json:"content" binding:"required"`
	IsInternal      bool       `json:"is_internal"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id"`
}

type CreateVersionRequest struct {
	FileIDs        []string `json:"file_ids"`
	CheckpointNote string   `json:"checkpoint_note"`
}
