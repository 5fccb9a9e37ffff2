package service

import (
	"context"
	"sort"
	"time"

	"approvalflow/internal/api/dto"

	"github.com/google/uuid"
)

// ReviewerWorkload aggregates incomplete steps per reviewer: pending and
// overdue counts plus the affected workflows with days pending. Read-only.
func (s *approvalService) ReviewerWorkload(ctx context.Context, projectID *uuid.UUID) ([]dto.ReviewerWorkload, error) {
	steps, err := s.steps.FindIncomplete(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	byReviewer := make(map[uuid.UUID]*dto.ReviewerWorkload)
	seen := make(map[uuid.UUID]map[uuid.UUID]bool)

	for i := range steps {
		step := &steps[i]
		entry, ok := byReviewer[step.ReviewerID]
		if !ok {
			entry = &dto.ReviewerWorkload{ReviewerID: step.ReviewerID}
			byReviewer[step.ReviewerID] = entry
			seen[step.ReviewerID] = make(map[uuid.UUID]bool)
		}

		entry.PendingSteps++
		if step.IsOverdue(now) {
			entry.OverdueSteps++
		}

		if step.Workflow != nil && !seen[step.ReviewerID][step.WorkflowID] {
			seen[step.ReviewerID][step.WorkflowID] = true
			entry.Workflows = append(entry.Workflows, dto.WorkloadWorkflow{
				WorkflowID:  step.WorkflowID,
				Name:        step.Workflow.Name,
				DaysPending: int(now.Sub(step.Workflow.SubmittedAt).Hours() / 24),
			})
		}
	}

	workloads := make([]dto.ReviewerWorkload, 0, len(byReviewer))
	for _, entry := range byReviewer {
		workloads = append(workloads, *entry)
	}
	sort.Slice(workloads, func(i, j int) bool {
		return workloads[i].PendingSteps > workloads[j].PendingSteps
	})
	return workloads, nil
}
