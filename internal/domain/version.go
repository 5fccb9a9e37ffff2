package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkflowVersion is a point-in-time checkpoint of a workflow's attached
// files. Versions are created explicitly, not on every mutation.
type WorkflowVersion struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;"`
	WorkflowID     uuid.UUID      `gorm:"type:uuid;index;not null"`
	VersionNumber  int            `gorm:"not null"`
	FileIDs        datatypes.JSON `gorm:"type:jsonb"`
	CheckpointNote string         `gorm:"type:text"`
	SubmittedBy    uuid.UUID      `gorm:"type:uuid;not null"`
	SubmittedAt    time.Time
}

func NewVersion(workflowID, submittedBy uuid.UUID, number int, fileIDs datatypes.JSON, note string) *WorkflowVersion {
	return &WorkflowVersion{
		ID:             uuid.New(),
		WorkflowID:     workflowID,
		VersionNumber:  number,
		FileIDs:        fileIDs,
		CheckpointNote: note,
		SubmittedBy:    submittedBy,
		SubmittedAt:    time.Now().UTC(),
	}
}
