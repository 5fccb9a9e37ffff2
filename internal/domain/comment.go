package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is an append-only annotation on a workflow. Comments are never
// edited or deleted; threading is expressed through ParentCommentID.
type Comment struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;"`
	WorkflowID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	AuthorID        uuid.UUID  `gorm:"type:uuid;not null"`
	Content         string     `gorm:"type:text;not null"`
	IsInternal      bool       `gorm:"default:false"`
	ParentCommentID *uuid.UUID `gorm:"type:uuid;index"`
	ThreadDepth     int        `gorm:"default:0"`

	CreatedAt time.Time
}

func NewComment(workflowID, authorID uuid.UUID, content string, isInternal bool) *Comment {
	return &Comment{
		ID:         uuid.New(),
		WorkflowID: workflowID,
		AuthorID:   authorID,
		Content:    content,
		IsInternal: isInternal,
		CreatedAt:  time.Now().UTC(),
	}
}

// ReplyTo attaches the comment under parent, computing its thread depth.
func (c *Comment) ReplyTo(parent *Comment) {
	c.ParentCommentID = &parent.ID
	c.ThreadDepth = parent.ThreadDepth + 1
}
