package repository

import (
	"context"
	"errors"
	"time"

	"approvalflow/internal/core/ports"
	"approvalflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stepRepository struct {
	db *gorm.DB
}

// NewStepRepository creates a new instance of StepRepository
func NewStepRepository(db *gorm.DB) ports.StepRepository {
	return &stepRepository{db: db}
}

func (r *stepRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalStep, error) {
	var step domain.ApprovalStep
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&step).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &step, nil
}

func (r *stepRepository) Save(ctx context.Context, step *domain.ApprovalStep) error {
	return r.db.WithContext(ctx).Omit("Workflow").Save(step).Error
}

func (r *stepRepository) FindIncomplete(ctx context.Context, projectID *uuid.UUID) ([]domain.ApprovalStep, error) {
	var steps []domain.ApprovalStep
	query := r.db.WithContext(ctx).
		Preload("Workflow").
		Where("is_completed = ?", false)
	if projectID != nil {
		query = query.
			Joins("JOIN workflows ON workflows.id = approval_steps.workflow_id").
			Where("workflows.project_id = ?", *projectID)
	}
	err := query.Order("step_order ASC").Find(&steps).Error
	return steps, err
}

func (r *stepRepository) FindOverdue(ctx context.Context, now time.Time) ([]domain.ApprovalStep, error) {
	var steps []domain.ApprovalStep
	err := r.db.WithContext(ctx).
		Where("is_completed = ? AND due_date IS NOT NULL AND due_date < ?", false, now).
		Find(&steps).Error
	return steps, err
}

func (r *stepRepository) ReassignIncomplete(ctx context.Context, workflowID, fromReviewer, toReviewer uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ApprovalStep{}).
		Where("workflow_id = ? AND reviewer_id = ? AND is_completed = ?", workflowID, fromReviewer, false).
		Update("reviewer_id", toReviewer)
	return result.RowsAffected, result.Error
}
