package repository

import (
	"context"
	"errors"

	"approvalflow/internal/core/ports"
	"approvalflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new instance of WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) ports.WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) CreateWithSteps(ctx context.Context, wf *domain.Workflow, steps []domain.ApprovalStep) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wf).Error; err != nil {
			return err
		}
		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *workflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	var wf domain.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("id = ?", id).
		First(&wf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &wf, nil
}

func (r *workflowRepository) ListByStatus(ctx context.Context, status domain.WorkflowStatus) ([]domain.Workflow, error) {
	var workflows []domain.Workflow
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("submitted_at DESC").
		Find(&workflows).Error
	return workflows, err
}

// ApplyReview writes the step, the workflow and the optional comment
// atomically. A step must never appear completed without the matching
// workflow status update.
func (r *workflowRepository) ApplyReview(ctx context.Context, wf *domain.Workflow, step *domain.ApprovalStep, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Workflow").Save(step).Error; err != nil {
			return err
		}
		if err := tx.Omit("Steps").Save(wf).Error; err != nil {
			return err
		}
		if comment != nil {
			if err := tx.Create(comment).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *workflowRepository) SaveWithSteps(ctx context.Context, wf *domain.Workflow, steps []*domain.ApprovalStep) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Steps").Save(wf).Error; err != nil {
			return err
		}
		for _, step := range steps {
			if err := tx.Omit("Workflow").Save(step).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *workflowRepository) AppendStep(ctx context.Context, wf *domain.Workflow, step *domain.ApprovalStep) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Steps").Save(wf).Error; err != nil {
			return err
		}
		return tx.Omit("Workflow").Create(step).Error
	})
}

func (r *workflowRepository) Save(ctx context.Context, wf *domain.Workflow) error {
	return r.db.WithContext(ctx).Omit("Steps").Save(wf).Error
}
