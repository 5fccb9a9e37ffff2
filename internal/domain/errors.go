package domain

import "errors"

var (
	// ErrNotFound is returned when a workflow, step or comment parent
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorizedOrOutOfOrder is returned when a reviewer acts on a
	// step that is not assigned to them, already completed, or not the
	// earliest pending step in the sequence.
	ErrNotAuthorizedOrOutOfOrder = errors.New("reviewer not assigned or step out of order")

	// ErrWorkflowClosed is returned when a mutation targets a workflow
	// that is approved, rejected or cancelled.
	ErrWorkflowClosed = errors.New("workflow is closed")

	// ErrInvalidAction is returned for an unknown review action.
	ErrInvalidAction = errors.New("invalid review action")
)
