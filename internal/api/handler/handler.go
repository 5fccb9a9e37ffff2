package handler

import (
	"errors"
	"net/http"

	"approvalflow/internal/api/dto"
	"approvalflow/internal/domain"
	"approvalflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActorHeader carries the resolved user identity. Session resolution is
// an upstream concern; the service only ever sees an explicit actor ID.
const ActorHeader = "X-Actor-ID"

type WorkflowHandler struct {
	service service.ApprovalService
}

func NewWorkflowHandler(svc service.ApprovalService) *WorkflowHandler {
	return &WorkflowHandler{service: svc}
}

func (h *WorkflowHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/workflows", h.Submit)
	api.GET("/workflows", h.ListByStatus)
	api.GET("/workflows/:id", h.Get)
	api.POST("/workflows/:id/review", h.Review)
	api.POST("/workflows/:id/escalate", h.Escalate)
	api.POST("/workflows/:id/return", h.ReturnToStep)
	api.POST("/workflows/:id/resubmit", h.Resubmit)
	api.POST("/workflows/:id/cancel", h.Cancel)
	api.GET("/workflows/:id/weighted-approval", h.WeightedApproval)
	api.POST("/workflows/:id/comments", h.AddComment)
	api.GET("/workflows/:id/comments", h.ListComments)
	api.POST("/workflows/:id/versions", h.CreateVersion)
	api.GET("/workflows/:id/versions", h.ListVersions)
	api.POST("/workflows/bulk/approve", h.BulkApprove)
	api.POST("/workflows/bulk/reject", h.BulkReject)
	api.POST("/workflows/bulk/reassign", h.BulkReassign)
	api.POST("/steps/:id/delegate", h.Delegate)
	api.GET("/reviewers/workload", h.ReviewerWorkload)
}

func (h *WorkflowHandler) Submit(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req dto.SubmitWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wf, err := h.service.Submit(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wf)
}

func (h *WorkflowHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	wf, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *WorkflowHandler) ListByStatus(c *gin.Context) {
	status := domain.WorkflowStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	}

	workflows, err := h.service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflows)
}

func (h *WorkflowHandler) Review(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wf, err := h.service.Review(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *WorkflowHandler) Delegate(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	stepID, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.DelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	step, err := h.service.DelegateReview(c.Request.Context(), actor, stepID, req.DelegateTo, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

func (h *WorkflowHandler) Escalate(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wf, err := h.service.EscalateReview(c.Request.Context(), actor, id, req.EscalateTo, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *WorkflowHandler) ReturnToStep(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ReturnToStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wf, err := h.service.ReturnToStep(c.Request.Context(), actor, id, req.StepID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *WorkflowHandler) Resubmit(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ResubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wf, err := h.service.Resubmit(c.Request.Context(), actor, id, req.FileIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *WorkflowHandler) Cancel(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wf, err := h.service.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (h *WorkflowHandler) WeightedApproval(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.service.WeightedApproval(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WorkflowHandler) BulkApprove(c *gin.Context) {
	h.bulkAction(c, func(actor uuid.UUID, req dto.BulkActionRequest) dto.BulkResult {
		return h.service.BulkApprove(c.Request.Context(), actor, req.WorkflowIDs, req.Comment)
	})
}

func (h *WorkflowHandler) BulkReject(c *gin.Context) {
	h.bulkAction(c, func(actor uuid.UUID, req dto.BulkActionRequest) dto.BulkResult {
		return h.service.BulkReject(c.Request.Context(), actor, req.WorkflowIDs, req.Comment)
	})
}

func (h *WorkflowHandler) bulkAction(c *gin.Context, run func(uuid.UUID, dto.BulkActionRequest) dto.BulkResult) {
	actor, ok := actorID(c)
	if !ok {
		return
	}

	var req dto.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run(actor, req))
}

func (h *WorkflowHandler) BulkReassign(c *gin.Context) {
	if _, ok := actorID(c); !ok {
		return
	}

	var req dto.BulkReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.service.BulkReassign(c.Request.Context(), req.WorkflowIDs, req.FromReviewer, req.ToReviewer))
}

func (h *WorkflowHandler) ReviewerWorkload(c *gin.Context) {
	var projectID *uuid.UUID
	if raw := c.Query("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
			return
		}
		projectID = &id
	}

	workloads, err := h.service.ReviewerWorkload(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workloads)
}

func (h *WorkflowHandler) AddComment(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *WorkflowHandler) ListComments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *WorkflowHandler) CreateVersion(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.service.CreateVersion(c.Request.Context(), actor, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, version)
}

func (h *WorkflowHandler) ListVersions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	versions, err := h.service.ListVersions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

func actorID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(ActorHeader)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ActorHeader + " header is required"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + ActorHeader + " header"})
		return uuid.Nil, false
	}
	return id, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors onto HTTP statuses. Anything unknown is
// a persistence failure propagated verbatim.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotAuthorizedOrOutOfOrder):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrWorkflowClosed), errors.Is(err, domain.ErrInvalidAction):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
