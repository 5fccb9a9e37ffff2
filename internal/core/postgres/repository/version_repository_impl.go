package repository

import (
	"context"

	"approvalflow/internal/core/ports"
	"approvalflow/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new instance of VersionRepository
func NewVersionRepository(db *gorm.DB) ports.VersionRepository {
	return &versionRepository{db: db}
}

// Create inserts the checkpoint and the workflow's bumped version number
// together, so the version counter can never run ahead of the snapshots.
func (r *versionRepository) Create(ctx context.Context, v *domain.WorkflowVersion, wf *domain.Workflow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		return tx.Omit("Steps").Save(wf).Error
	})
}

func (r *versionRepository) ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowVersion, error) {
	var versions []domain.WorkflowVersion
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("version_number ASC").
		Find(&versions).Error
	return versions, err
}
