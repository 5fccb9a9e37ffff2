package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"approvalflow/internal/api/dto"
	"approvalflow/internal/core/ports"
	"approvalflow/internal/domain"
	"approvalflow/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ApprovalService implements the report approval lifecycle. Every mutation
// takes the acting user explicitly; the service never resolves an ambient
// "current user".
type ApprovalService interface {
	Submit(ctx context.Context, actorID uuid.UUID, req dto.SubmitWorkflowRequest) (*domain.Workflow, error)
	Get(ctx context.Context, workflowID uuid.UUID) (*domain.Workflow, error)
	ListByStatus(ctx context.Context, status domain.WorkflowStatus) ([]domain.Workflow, error)

	Review(ctx context.Context, actorID, workflowID uuid.UUID, req dto.ReviewRequest) (*domain.Workflow, error)
	DelegateReview(ctx context.Context, actorID, stepID, delegateTo uuid.UUID, reason string) (*domain.ApprovalStep, error)
	EscalateReview(ctx context.Context, actorID, workflowID, escalateTo uuid.UUID, reason string) (*domain.Workflow, error)
	ReturnToStep(ctx context.Context, actorID, workflowID, stepID uuid.UUID, reason string) (*domain.Workflow, error)
	Resubmit(ctx context.Context, actorID, workflowID uuid.UUID, fileIDs []string) (*domain.Workflow, error)
	Cancel(ctx context.Context, actorID, workflowID uuid.UUID, reason string) (*domain.Workflow, error)

	WeightedApproval(ctx context.Context, workflowID uuid.UUID) (*dto.WeightedApprovalResponse, error)

	BulkApprove(ctx context.Context, actorID uuid.UUID, workflowIDs []uuid.UUID, comment string) dto.BulkResult
	BulkReject(ctx context.Context, actorID uuid.UUID, workflowIDs []uuid.UUID, comment string) dto.BulkResult
	BulkReassign(ctx context.Context, workflowIDs []uuid.UUID, fromReviewer, toReviewer uuid.UUID) dto.BulkResult

	ReviewerWorkload(ctx context.Context, projectID *uuid.UUID) ([]dto.ReviewerWorkload, error)

	AddComment(ctx context.Context, actorID, workflowID uuid.UUID, req dto.AddCommentRequest) (*domain.Comment, error)
	ListComments(ctx context.Context, workflowID uuid.UUID) ([]domain.Comment, error)

	CreateVersion(ctx context.Context, actorID, workflowID uuid.UUID, req dto.CreateVersionRequest) (*domain.WorkflowVersion, error)
	ListVersions(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowVersion, error)
}

// The Implementation
type approvalService struct {
	workflows ports.WorkflowRepository
	steps     ports.StepRepository
	comments  ports.CommentRepository
	versions  ports.VersionRepository
	bus       ports.EventBus
}

// Constructor
func NewApprovalService(
	workflows ports.WorkflowRepository,
	steps ports.StepRepository,
	comments ports.CommentRepository,
	versions ports.VersionRepository,
	bus ports.EventBus,
) ApprovalService {
	return &approvalService{
		workflows: workflows,
		steps:     steps,
		comments:  comments,
		versions:  versions,
		bus:       bus,
	}
}

func (s *approvalService) Submit(ctx context.Context, actorID uuid.UUID, req dto.SubmitWorkflowRequest) (*domain.Workflow, error) {
	wf := domain.NewWorkflow(actorID, req.Name, req.Description, req.Category)
	wf.ProjectID = req.ProjectID
	wf.FileIDs = marshalFileIDs(req.FileIDs)

	steps := make([]domain.ApprovalStep, 0, len(req.Steps))
	for _, spec := range req.Steps {
		step := domain.NewStep(wf.ID, spec.ReviewerID, spec.StepOrder, spec.IsRequired)
		if spec.ApprovalWeight > 0 {
			step.ApprovalWeight = spec.ApprovalWeight
		}
		step.CanSkip = spec.CanSkip
		step.DueDate = spec.DueDate
		steps = append(steps, *step)
	}

	if err := s.workflows.CreateWithSteps(ctx, wf, steps); err != nil {
		return nil, err
	}
	wf.Steps = steps

	metrics.SubmissionsTotal.Inc()
	s.publish(ctx, domain.WorkflowEvent{
		Type:       domain.EventWorkflowSubmitted,
		WorkflowID: wf.ID,
		ActorID:    actorID,
		Status:     wf.Status,
	})
	return wf, nil
}

func (s *approvalService) Get(ctx context.Context, workflowID uuid.UUID) (*domain.Workflow, error) {
	return s.workflows.GetByID(ctx, workflowID)
}

func (s *approvalService) ListByStatus(ctx context.Context, status domain.WorkflowStatus) ([]domain.Workflow, error) {
	return s.workflows.ListByStatus(ctx, status)
}

// Review applies the actor's decision to exactly one step and recomputes
// the workflow status. The step must be assigned to the actor and must be
// the earliest incomplete step; anything else fails with
// ErrNotAuthorizedOrOutOfOrder. Note: a recorded delegate does NOT widen
// this check (see DESIGN.md, open question on delegation).
func (s *approvalService) Review(ctx context.Context, actorID, workflowID uuid.UUID, req dto.ReviewRequest) (*domain.Workflow, error) {
	action := domain.StepAction(req.Action)
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, req.Action)
	}

	wf, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.IsClosed() {
		return nil, domain.ErrWorkflowClosed
	}

	step := wf.EarliestIncompleteStep()
	if step == nil || step.ReviewerID != actorID {
		return nil, domain.ErrNotAuthorizedOrOutOfOrder
	}

	now := time.Now().UTC()
	step.Complete(action, req.Comment, req.Reasoning, now)
	wf.LastReviewAt = &now

	switch action {
	case domain.ActionReject:
		wf.Status = domain.StatusRejected
		wf.CompletedAt = &now
	case domain.ActionRequestChanges:
		wf.Status = domain.StatusChangesRequested
	default: // APPROVE or SKIP
		if req.SkipToFinalApproval || wf.AllRequiredStepsSettled() {
			wf.Status = domain.StatusApproved
			wf.CompletedAt = &now
		} else {
			wf.Status = domain.StatusInReview
		}
	}

	var comment *domain.Comment
	if req.Comment != "" {
		comment = domain.NewComment(wf.ID, actorID, req.Comment, false)
	}

	if err := s.workflows.ApplyReview(ctx, wf, step, comment); err != nil {
		return nil, err
	}

	metrics.ReviewsTotal.WithLabelValues(string(action)).Inc()
	s.publish(ctx, domain.WorkflowEvent{
		Type:       domain.EventReviewRecorded,
		WorkflowID: wf.ID,
		StepID:     step.ID,
		ActorID:    actorID,
		Action:     action,
		Status:     wf.Status,
	})
	return wf, nil
}

// DelegateReview records a delegate on the step. ReviewerID is left
// untouched, so the delegate cannot act through Review; the fields are
// informational until the delegation question is settled.
func (s *approvalService) DelegateReview(ctx context.Context, actorID, stepID, delegateTo uuid.UUID, reason string) (*domain.ApprovalStep, error) {
	step, err := s.steps.GetByID(ctx, stepID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	step.IsDelegated = true
	step.DelegatedTo = &delegateTo
	step.DelegatedBy = &actorID
	step.DelegationReason = reason
	step.DelegatedAt = &now

	if err := s.steps.Save(ctx, step); err != nil {
		return nil, err
	}
	return step, nil
}

// EscalateReview appends a new required step at the end of the sequence,
// assigned to the escalation target.
func (s *approvalService) EscalateReview(ctx context.Context, actorID, workflowID, escalateTo uuid.UUID, reason string) (*domain.Workflow, error) {
	wf, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.IsClosed() {
		return nil, domain.ErrWorkflowClosed
	}

	maxLevel := 0
	for i := range wf.Steps {
		if wf.Steps[i].EscalationLevel > maxLevel {
			maxLevel = wf.Steps[i].EscalationLevel
		}
	}

	step := domain.NewStep(wf.ID, escalateTo, wf.MaxStepOrder()+1, true)
	step.EscalationLevel = maxLevel + 1
	step.EscalationReason = reason
	step.EscalatedBy = &actorID

	now := time.Now().UTC()
	wf.Status = domain.StatusInReview
	wf.LastEscalationAt = &now
	wf.CompletedAt = nil

	if err := s.workflows.AppendStep(ctx, wf, step); err != nil {
		return nil, err
	}
	wf.Steps = append(wf.Steps, *step)

	s.publish(ctx, domain.WorkflowEvent{
		Type:       domain.EventWorkflowEscalated,
		WorkflowID: wf.ID,
		StepID:     step.ID,
		ActorID:    actorID,
		Status:     wf.Status,
	})
	return wf, nil
}

// ReturnToStep rewinds the approval chain: every step strictly after the
// target is reset and flagged as returned. The target step and everything
// before it are untouched.
func (s *approvalService) ReturnToStep(ctx context.Context, actorID, workflowID, stepID uuid.UUID, reason string) (*domain.Workflow, error) {
	wf, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	var target *domain.ApprovalStep
	for i := range wf.Steps {
		if wf.Steps[i].ID == stepID {
			target = &wf.Steps[i]
			break
		}
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}

	var changed []*domain.ApprovalStep
	for i := range wf.Steps {
		step := &wf.Steps[i]
		if step.StepOrder <= target.StepOrder {
			continue
		}
		step.Reset()
		step.MarkReturned(actorID, reason)
		changed = append(changed, step)
	}

	wf.Status = domain.StatusChangesRequested
	wf.CompletedAt = nil

	if err := s.workflows.SaveWithSteps(ctx, wf, changed); err != nil {
		return nil, err
	}
	return wf, nil
}

// Resubmit restarts the whole sequence: all steps reset, status back to
// PENDING, review timestamps cleared. Idempotent on step state.
func (s *approvalService) Resubmit(ctx context.Context, actorID, workflowID uuid.UUID, fileIDs []string) (*domain.Workflow, error) {
	wf, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	wf.Status = domain.StatusPending
	wf.LastReviewAt = nil
	wf.CompletedAt = nil
	if fileIDs != nil {
		wf.FileIDs = marshalFileIDs(fileIDs)
	}

	changed := make([]*domain.ApprovalStep, 0, len(wf.Steps))
	for i := range wf.Steps {
		wf.Steps[i].Reset()
		changed = append(changed, &wf.Steps[i])
	}

	if err := s.workflows.SaveWithSteps(ctx, wf, changed); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.WorkflowEvent{
		Type:       domain.EventWorkflowSubmitted,
		WorkflowID: wf.ID,
		ActorID:    actorID,
		Status:     wf.Status,
	})
	return wf, nil
}

func (s *approvalService) Cancel(ctx context.Context, actorID, workflowID uuid.UUID, reason string) (*domain.Workflow, error) {
	wf, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wf.Status = domain.StatusCancelled
	wf.CompletedAt = &now

	if err := s.workflows.Save(ctx, wf); err != nil {
		return nil, err
	}

	if reason != "" {
		c := domain.NewComment(wf.ID, actorID, reason, false)
		if err := s.comments.Create(ctx, c); err != nil {
			log.Printf("cancel: failed to log comment for workflow %s: %v", wf.ID, err)
		}
	}
	return wf, nil
}

// WeightedApproval reports the weight-based approval view. It is advisory:
// the sequential rule of Review governs the workflow status, and the two
// can disagree on the same data.
func (s *approvalService) WeightedApproval(ctx context.Context, workflowID uuid.UUID) (*dto.WeightedApprovalResponse, error) {
	wf, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	var resp dto.WeightedApprovalResponse
	for i := range wf.Steps {
		step := &wf.Steps[i]
		resp.TotalWeight += step.ApprovalWeight
		if step.IsCompleted {
			resp.ApprovedWeight += step.ApprovalWeight
		}
		if step.IsRequired {
			resp.RequiredWeight += step.ApprovalWeight
		}
	}
	resp.IsApproved = resp.ApprovedWeight >= resp.RequiredWeight
	return &resp, nil
}

func (s *approvalService) AddComment(ctx context.Context, actorID, workflowID uuid.UUID, req dto.AddCommentRequest) (*domain.Comment, error) {
	if _, err := s.workflows.GetByID(ctx, workflowID); err != nil {
		return nil, err
	}

	c := domain.NewComment(workflowID, actorID, req.Content, req.IsInternal)
	if req.ParentCommentID != nil {
		parent, err := s.comments.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.WorkflowID != workflowID {
			return nil, domain.ErrNotFound
		}
		c.ReplyTo(parent)
	}

	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *approvalService) ListComments(ctx context.Context, workflowID uuid.UUID) ([]domain.Comment, error) {
	return s.comments.ListByWorkflow(ctx, workflowID)
}

// CreateVersion checkpoints the workflow's attachments. When file IDs are
// supplied they replace the workflow's current set and become the snapshot;
// otherwise the current set is snapshotted as-is.
func (s *approvalService) CreateVersion(ctx context.Context, actorID, workflowID uuid.UUID, req dto.CreateVersionRequest) (*domain.WorkflowVersion, error) {
	wf, err := s.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	snapshot := wf.FileIDs
	if req.FileIDs != nil {
		snapshot = marshalFileIDs(req.FileIDs)
		wf.FileIDs = snapshot
	}

	wf.CurrentVersion++
	v := domain.NewVersion(wf.ID, actorID, wf.CurrentVersion, snapshot, req.CheckpointNote)

	if err := s.versions.Create(ctx, v, wf); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *approvalService) ListVersions(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowVersion, error) {
	return s.versions.ListByWorkflow(ctx, workflowID)
}

// publish is fire-and-forget: a bus failure never fails the operation.
func (s *approvalService) publish(ctx context.Context, event domain.WorkflowEvent) {
	if err := s.bus.Publish(ctx, event); err != nil {
		log.Printf("event bus publish failed for workflow %s: %v", event.WorkflowID, err)
	}
}

func marshalFileIDs(fileIDs []string) datatypes.JSON {
	if fileIDs == nil {
		fileIDs = []string{}
	}
	payload, _ := json.Marshal(fileIDs)
	return datatypes.JSON(payload)
}
