package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"approvalflow/internal/domain"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the Postgres repositories plus
// the Redis bus and queue. It copies entities on read and write so state
// only changes when a repository method is called, mirroring a real store.
type fakeStore struct {
	mu        sync.Mutex
	workflows map[uuid.UUID]domain.Workflow
	comments  map[uuid.UUID]domain.Comment
	versions  []domain.WorkflowVersion

	// applyErr simulates a persistence failure for a given workflow.
	applyErr map[uuid.UUID]error

	events        []domain.WorkflowEvent
	notifications []domain.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workflows: make(map[uuid.UUID]domain.Workflow),
		comments:  make(map[uuid.UUID]domain.Comment),
		applyErr:  make(map[uuid.UUID]error),
	}
}

func cloneWorkflow(w domain.Workflow) domain.Workflow {
	steps := make([]domain.ApprovalStep, len(w.Steps))
	copy(steps, w.Steps)
	w.Steps = steps
	return w
}

// --- ports.WorkflowRepository ---

func (f *fakeStore) CreateWithSteps(ctx context.Context, wf *domain.Workflow, steps []domain.ApprovalStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := cloneWorkflow(*wf)
	stored.Steps = append([]domain.ApprovalStep(nil), steps...)
	f.workflows[wf.ID] = stored
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	wf := cloneWorkflow(stored)
	sort.Slice(wf.Steps, func(i, j int) bool {
		return wf.Steps[i].StepOrder < wf.Steps[j].StepOrder
	})
	return &wf, nil
}

func (f *fakeStore) ListByStatus(ctx context.Context, status domain.WorkflowStatus) ([]domain.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Workflow
	for _, wf := range f.workflows {
		if wf.Status == status {
			out = append(out, cloneWorkflow(wf))
		}
	}
	return out, nil
}

func (f *fakeStore) ApplyReview(ctx context.Context, wf *domain.Workflow, step *domain.ApprovalStep, comment *domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.applyErr[wf.ID]; err != nil {
		return err
	}
	f.workflows[wf.ID] = cloneWorkflow(*wf)
	if comment != nil {
		f.comments[comment.ID] = *comment
	}
	return nil
}

func (f *fakeStore) SaveWithSteps(ctx context.Context, wf *domain.Workflow, steps []*domain.ApprovalStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workflows[wf.ID] = cloneWorkflow(*wf)
	return nil
}

func (f *fakeStore) AppendStep(ctx context.Context, wf *domain.Workflow, step *domain.ApprovalStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := cloneWorkflow(*wf)
	stored.Steps = append(stored.Steps, *step)
	f.workflows[wf.ID] = stored
	return nil
}

func (f *fakeStore) Save(ctx context.Context, wf *domain.Workflow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := cloneWorkflow(*wf)
	if prev, ok := f.workflows[wf.ID]; ok && len(stored.Steps) == 0 {
		stored.Steps = append([]domain.ApprovalStep(nil), prev.Steps...)
	}
	f.workflows[wf.ID] = stored
	return nil
}

// --- ports.StepRepository ---

func (f *fakeStore) stepByID(id uuid.UUID) (uuid.UUID, int, bool) {
	for wfID, wf := range f.workflows {
		for i := range wf.Steps {
			if wf.Steps[i].ID == id {
				return wfID, i, true
			}
		}
	}
	return uuid.Nil, 0, false
}

func (f *fakeStore) StepGetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wfID, i, ok := f.stepByID(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	step := f.workflows[wfID].Steps[i]
	return &step, nil
}

func (f *fakeStore) StepSave(ctx context.Context, step *domain.ApprovalStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wfID, i, ok := f.stepByID(step.ID)
	if !ok {
		return domain.ErrNotFound
	}
	wf := f.workflows[wfID]
	wf.Steps[i] = *step
	f.workflows[wfID] = wf
	return nil
}

func (f *fakeStore) FindIncomplete(ctx context.Context, projectID *uuid.UUID) ([]domain.ApprovalStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ApprovalStep
	for _, wf := range f.workflows {
		if projectID != nil && (wf.ProjectID == nil || *wf.ProjectID != *projectID) {
			continue
		}
		parent := cloneWorkflow(wf)
		for i := range wf.Steps {
			if wf.Steps[i].IsCompleted {
				continue
			}
			step := wf.Steps[i]
			step.Workflow = &parent
			out = append(out, step)
		}
	}
	return out, nil
}

func (f *fakeStore) FindOverdue(ctx context.Context, now time.Time) ([]domain.ApprovalStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ApprovalStep
	for _, wf := range f.workflows {
		for i := range wf.Steps {
			if wf.Steps[i].IsOverdue(now) {
				out = append(out, wf.Steps[i])
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ReassignIncomplete(ctx context.Context, workflowID, fromReviewer, toReviewer uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wf, ok := f.workflows[workflowID]
	if !ok {
		return 0, nil
	}
	var moved int64
	for i := range wf.Steps {
		if !wf.Steps[i].IsCompleted && wf.Steps[i].ReviewerID == fromReviewer {
			wf.Steps[i].ReviewerID = toReviewer
			moved++
		}
	}
	f.workflows[workflowID] = wf
	return moved, nil
}

// --- ports.CommentRepository ---

func (f *fakeStore) CommentCreate(ctx context.Context, c *domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[c.ID] = *c
	return nil
}

func (f *fakeStore) CommentGetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Comment
	for _, c := range f.comments {
		if c.WorkflowID == workflowID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- ports.VersionRepository ---

func (f *fakeStore) VersionCreate(ctx context.Context, v *domain.WorkflowVersion, wf *domain.Workflow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions = append(f.versions, *v)
	stored := cloneWorkflow(*wf)
	if prev, ok := f.workflows[wf.ID]; ok && len(stored.Steps) == 0 {
		stored.Steps = append([]domain.ApprovalStep(nil), prev.Steps...)
	}
	f.workflows[wf.ID] = stored
	return nil
}

func (f *fakeStore) VersionsByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WorkflowVersion
	for _, v := range f.versions {
		if v.WorkflowID == workflowID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber < out[j].VersionNumber })
	return out, nil
}

// Adapters resolving method-name collisions between the repository
// interfaces; the store itself satisfies ports.WorkflowRepository.

type fakeStepRepo struct{ *fakeStore }

func (r fakeStepRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalStep, error) {
	return r.StepGetByID(ctx, id)
}

func (r fakeStepRepo) Save(ctx context.Context, step *domain.ApprovalStep) error {
	return r.StepSave(ctx, step)
}

type fakeCommentRepo struct{ *fakeStore }

func (r fakeCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return r.CommentCreate(ctx, c)
}

func (r fakeCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return r.CommentGetByID(ctx, id)
}

type fakeVersionRepo struct{ *fakeStore }

func (r fakeVersionRepo) Create(ctx context.Context, v *domain.WorkflowVersion, wf *domain.Workflow) error {
	return r.VersionCreate(ctx, v, wf)
}

func (r fakeVersionRepo) ListByWorkflow(ctx context.Context, workflowID uuid.UUID) ([]domain.WorkflowVersion, error) {
	return r.VersionsByWorkflow(ctx, workflowID)
}

func newTestService() (ApprovalService, *fakeStore) {
	store := newFakeStore()
	svc := NewApprovalService(store, fakeStepRepo{store}, fakeCommentRepo{store}, fakeVersionRepo{store}, store)
	return svc, store
}

// --- ports.EventBus / ports.NotificationQueue ---

func (f *fakeStore) Publish(ctx context.Context, event domain.WorkflowEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) Subscribe(ctx context.Context) (<-chan domain.WorkflowEvent, error) {
	ch := make(chan domain.WorkflowEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (f *fakeStore) Push(ctx context.Context, n domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeStore) Pop(ctx context.Context) (domain.Notification, error) {
	<-ctx.Done()
	return domain.Notification{}, ctx.Err()
}
