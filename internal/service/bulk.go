package service

import (
	"context"
	"fmt"
	"sync"

	"approvalflow/internal/api/dto"
	"approvalflow/internal/domain"

	"github.com/google/uuid"
)

// Bulk operations fan the single-item operation out across workflow IDs.
// Items are independent: one failure does not abort the rest, and partial
// successes are never rolled back.

func (s *approvalService) BulkApprove(ctx context.Context, actorID uuid.UUID, workflowIDs []uuid.UUID, comment string) dto.BulkResult {
	return s.bulkReview(ctx, actorID, workflowIDs, domain.ActionApprove, comment)
}

func (s *approvalService) BulkReject(ctx context.Context, actorID uuid.UUID, workflowIDs []uuid.UUID, comment string) dto.BulkResult {
	return s.bulkReview(ctx, actorID, workflowIDs, domain.ActionReject, comment)
}

func (s *approvalService) bulkReview(ctx context.Context, actorID uuid.UUID, workflowIDs []uuid.UUID, action domain.StepAction, comment string) dto.BulkResult {
	return fanOut(workflowIDs, func(id uuid.UUID) error {
		_, err := s.Review(ctx, actorID, id, dto.ReviewRequest{
			Action:  string(action),
			Comment: comment,
		})
		return err
	})
}

func (s *approvalService) BulkReassign(ctx context.Context, workflowIDs []uuid.UUID, fromReviewer, toReviewer uuid.UUID) dto.BulkResult {
	return fanOut(workflowIDs, func(id uuid.UUID) error {
		moved, err := s.steps.ReassignIncomplete(ctx, id, fromReviewer, toReviewer)
		if err != nil {
			return err
		}
		if moved == 0 {
			return fmt.Errorf("workflow %s: no incomplete steps assigned to %s", id, fromReviewer)
		}
		return nil
	})
}

// fanOut runs op once per ID concurrently and collects per-item outcomes.
func fanOut(ids []uuid.UUID, op func(uuid.UUID) error) dto.BulkResult {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result dto.BulkResult
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			err := op(id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
				return
			}
			result.Success++
		}(id)
	}

	wg.Wait()
	return result
}
