package coordinator

import (
	"context"
	"fmt"
	"log"
	"time"

	"approvalflow/internal/core/ports"
	"approvalflow/internal/domain"

	"github.com/robfig/cron/v3"
)

// Coordinator turns workflow lifecycle events into notification jobs.
// It owns no workflow state: it reads, decides who to tell, and pushes
// jobs onto the queue for the notifier pool.
type Coordinator struct {
	workflows ports.WorkflowRepository
	steps     ports.StepRepository
	queue     ports.NotificationQueue
	eventBus  ports.EventBus
	cron      *cron.Cron
}

func NewCoordinator(
	workflows ports.WorkflowRepository,
	steps ports.StepRepository,
	queue ports.NotificationQueue,
	bus ports.EventBus,
) *Coordinator {
	return &Coordinator{
		workflows: workflows,
		steps:     steps,
		queue:     queue,
		eventBus:  bus,
		cron:      cron.New(),
	}
}

// Start begins the listening loop. Call this in main.go as a goroutine.
func (c *Coordinator) Start(ctx context.Context) {
	log.Println("Coordinator started, listening for events...")

	eventChannel, err := c.eventBus.Subscribe(ctx)
	if err != nil {
		log.Fatalf("Failed to subscribe to event bus: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Coordinator shutting down...")
			c.cron.Stop()
			return

		case event := <-eventChannel:
			c.handleEvent(ctx, event)
		}
	}
}

// StartOverdueScan schedules the periodic reminder sweep for steps past
// their due date.
func (c *Coordinator) StartOverdueScan(ctx context.Context, cronSpec string) error {
	_, err := c.cron.AddFunc(cronSpec, func() {
		c.scanOverdue(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid overdue scan schedule %q: %w", cronSpec, err)
	}
	c.cron.Start()
	return nil
}

func (c *Coordinator) handleEvent(ctx context.Context, event domain.WorkflowEvent) {
	switch event.Type {
	case domain.EventWorkflowSubmitted, domain.EventWorkflowEscalated:
		c.notifyNextReviewer(ctx, event)

	case domain.EventReviewRecorded:
		if event.Status == domain.StatusInReview || event.Status == domain.StatusPending {
			c.notifyNextReviewer(ctx, event)
			return
		}
		c.notifySubmitter(ctx, event)

	default:
		log.Printf("Coordinator: ignoring unknown event type %q", event.Type)
	}
}

// notifyNextReviewer tells the earliest pending reviewer their turn has come.
func (c *Coordinator) notifyNextReviewer(ctx context.Context, event domain.WorkflowEvent) {
	wf, err := c.workflows.GetByID(ctx, event.WorkflowID)
	if err != nil {
		log.Printf("Coordinator: failed to load workflow %s: %v", event.WorkflowID, err)
		return
	}

	step := wf.EarliestIncompleteStep()
	if step == nil {
		return
	}

	c.push(ctx, domain.Notification{
		Kind:        domain.NotifyReviewRequested,
		RecipientID: step.ReviewerID,
		WorkflowID:  wf.ID,
		StepID:      step.ID,
		Message:     fmt.Sprintf("review requested for %q (step %d)", wf.Name, step.StepOrder),
	})
}

// notifySubmitter reports a terminal or changes-requested outcome back to
// the workflow owner.
func (c *Coordinator) notifySubmitter(ctx context.Context, event domain.WorkflowEvent) {
	wf, err := c.workflows.GetByID(ctx, event.WorkflowID)
	if err != nil {
		log.Printf("Coordinator: failed to load workflow %s: %v", event.WorkflowID, err)
		return
	}

	c.push(ctx, domain.Notification{
		Kind:        domain.NotifyWorkflowCompleted,
		RecipientID: wf.SubmitterID,
		WorkflowID:  wf.ID,
		Message:     fmt.Sprintf("%q is now %s", wf.Name, wf.Status),
	})
}

func (c *Coordinator) scanOverdue(ctx context.Context) {
	steps, err := c.steps.FindOverdue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Coordinator: overdue scan failed: %v", err)
		return
	}

	for i := range steps {
		step := &steps[i]
		c.push(ctx, domain.Notification{
			Kind:        domain.NotifyOverdueReminder,
			RecipientID: step.ReviewerID,
			WorkflowID:  step.WorkflowID,
			StepID:      step.ID,
			Message:     fmt.Sprintf("review step %d is overdue", step.StepOrder),
		})
	}

	if len(steps) > 0 {
		log.Printf("Coordinator: queued %d overdue reminders", len(steps))
	}
}

func (c *Coordinator) push(ctx context.Context, n domain.Notification) {
	if err := c.queue.Push(ctx, n); err != nil {
		log.Printf("Coordinator: failed to queue %s notification for %s: %v", n.Kind, n.RecipientID, err)
	}
}
