package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eunits/bookflow/pkg/dispatch"
	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

// ActionDispatcher executes one workflow action against one event.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, wf *models.Workflow, event *models.Event) (*dispatch.Result, error)
}

// Runner drives the two halves of the engine: processing freshly ingested
// events (dispatch now or enqueue for later) and executing due scheduled
// tasks picked up by the poller.
type Runner struct {
	store      persistence.Persistence
	dispatcher ActionDispatcher
	matcher    *Matcher
	enricher   *Enricher
	logger     *slog.Logger
	now        func() time.Time
}

// NewRunner creates a runner. The enricher may be nil when no provider client
// is configured; ingested events are then processed as-is.
func NewRunner(
	store persistence.Persistence,
	dispatcher ActionDispatcher,
	matcher *Matcher,
	enricher *Enricher,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		store:      store,
		dispatcher: dispatcher,
		matcher:    matcher,
		enricher:   enricher,
		logger:     logger.With("module", "runner"),
		now:        time.Now,
	}
}

// ProcessSummary counts the outcomes of processing one inbound event.
type ProcessSummary struct {
	Matched    int `json:"matched"`
	Dispatched int `json:"dispatched"`
	Scheduled  int `json:"scheduled"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// ProcessBookingEvent enriches a freshly created booking and runs every
// booking-scoped workflow against it.
func (r *Runner) ProcessBookingEvent(ctx context.Context, event *models.Event) (*ProcessSummary, error) {
	if r.enricher != nil {
		if err := r.enricher.Enrich(ctx, event); err != nil {
			return nil, err
		}
	}

	return r.Process(ctx, event, []models.TriggerType{
		models.TriggerBookingCreated,
		models.TriggerTimeBeforeBooking,
		models.TriggerTimeAfterBooking,
	})
}

// ProcessCustomerEvent runs customer-scoped workflows against the event.
func (r *Runner) ProcessCustomerEvent(ctx context.Context, event *models.Event) (*ProcessSummary, error) {
	return r.Process(ctx, event, []models.TriggerType{models.TriggerCustomerCreated})
}

// ProcessTransactionEvent runs transaction-scoped workflows against the event.
func (r *Runner) ProcessTransactionEvent(ctx context.Context, event *models.Event) (*ProcessSummary, error) {
	return r.Process(ctx, event, []models.TriggerType{models.TriggerTransactionCreated})
}

// Process matches the event against the company's workflows for the given
// triggers, dispatches immediate matches and enqueues deferred ones. Each
// workflow runs at most once per event: a processed marker is written after
// handling and checked before. Store failures abort; channel failures are
// counted and move on.
func (r *Runner) Process(ctx context.Context, event *models.Event, triggers []models.TriggerType) (*ProcessSummary, error) {
	workflows, err := r.store.WorkflowsByCompanyAndTriggers(ctx, event.CompanyID, triggers)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflows for company %s: %w", event.CompanyID, err)
	}

	match := r.matcher.Match(event, workflows)
	summary := &ProcessSummary{Matched: match.Total()}

	for _, wf := range match.Immediate {
		handled, err := r.alreadyHandled(ctx, event, wf)
		if err != nil {
			return nil, err
		}

		if handled {
			summary.Skipped++

			continue
		}

		result, err := r.dispatcher.Dispatch(ctx, wf, event)
		if err != nil {
			return nil, err
		}

		if result.Status == models.StatusSuccess {
			summary.Dispatched++
		} else {
			r.logger.Warn("Workflow dispatch failed",
				"workflow_id", wf.ID, "event_id", event.ID, "reason", result.Reason)
			summary.Failed++
		}

		if err := r.store.MarkProcessed(ctx, event.ID, wf.ID); err != nil {
			return nil, fmt.Errorf("failed to mark event %s processed for workflow %s: %w", event.ID, wf.ID, err)
		}
	}

	if err := r.schedule(ctx, event, match.DeferredBefore, event.CreatedAt, summary); err != nil {
		return nil, err
	}

	if err := r.schedule(ctx, event, match.DeferredAfter, event.EndsAt, summary); err != nil {
		return nil, err
	}

	r.logger.Info("Processed event",
		"event_id", event.ID,
		"company_id", event.CompanyID,
		"matched", summary.Matched,
		"dispatched", summary.Dispatched,
		"scheduled", summary.Scheduled,
		"failed", summary.Failed,
		"skipped", summary.Skipped)

	return summary, nil
}

// schedule enqueues one frozen task per deferred workflow, firing at the
// anchor time plus the workflow's configured interval.
func (r *Runner) schedule(ctx context.Context, event *models.Event, workflows []*models.Workflow, anchor time.Time, summary *ProcessSummary) error {
	for _, wf := range workflows {
		if wf.Settings.Interval == nil {
			r.logger.Warn("Deferred workflow without interval, skipping",
				"workflow_id", wf.ID, "workflow_name", wf.Name)
			summary.Skipped++

			continue
		}

		handled, err := r.alreadyHandled(ctx, event, wf)
		if err != nil {
			return err
		}

		if handled {
			summary.Skipped++

			continue
		}

		task, err := models.NewScheduledTask(wf, event, anchor.Add(wf.Settings.Interval.Offset()))
		if err != nil {
			return err
		}

		taskID, err := r.store.EnqueueTask(ctx, task)
		if err != nil {
			return fmt.Errorf("failed to enqueue task for workflow %s: %w", wf.ID, err)
		}

		if err := r.store.MarkProcessed(ctx, event.ID, wf.ID); err != nil {
			return fmt.Errorf("failed to mark event %s processed for workflow %s: %w", event.ID, wf.ID, err)
		}

		r.logger.Info("Scheduled deferred workflow",
			"workflow_id", wf.ID, "event_id", event.ID, "task_id", taskID, "fire_at", task.FireAt)
		summary.Scheduled++
	}

	return nil
}

func (r *Runner) alreadyHandled(ctx context.Context, event *models.Event, wf *models.Workflow) (bool, error) {
	handled, err := r.store.IsProcessed(ctx, event.ID, wf.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check processed marker for event %s: %w", event.ID, err)
	}

	if handled {
		r.logger.Info("Event already handled by workflow, skipping",
			"event_id", event.ID, "workflow_id", wf.ID)
	}

	return handled, nil
}

// PollSummary counts the outcomes of one poll run.
type PollSummary struct {
	RanAt    time.Time `json:"ranAt"`
	Executed int       `json:"executed"`
	Failed   int       `json:"failed"`
}

// RunDue executes every task whose fire time has passed. Execution is
// at-least-once: a task is deleted after its single execution attempt
// regardless of the channel outcome, so a crash between dispatch and delete
// re-runs the task while a channel failure never does. An infrastructure
// error from the dispatcher (a ledger write, not a channel rejection) aborts
// the cycle before the delete; the task stays queued for the next poll.
func (r *Runner) RunDue(ctx context.Context) (*PollSummary, error) {
	now := r.now().UTC()

	tasks, err := r.store.DueTasks(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load due tasks: %w", err)
	}

	summary := &PollSummary{RanAt: now}

	for _, task := range tasks {
		wf, event, err := task.Snapshots()
		if err != nil {
			// A corrupt snapshot can never execute; drop the task.
			r.logger.Error("Dropping task with undecodable snapshot", "task_id", task.ID, "error", err)
			summary.Failed++

			if err := r.store.DeleteTask(ctx, task.ID); err != nil {
				return nil, fmt.Errorf("failed to delete task %s: %w", task.ID, err)
			}

			continue
		}

		result, err := r.dispatcher.Dispatch(ctx, wf, event)
		if err != nil {
			return nil, fmt.Errorf("failed to execute task %s: %w", task.ID, err)
		}

		if result.Status == models.StatusSuccess {
			summary.Executed++
		} else {
			r.logger.Warn("Task dispatch unsuccessful",
				"task_id", task.ID, "workflow_id", wf.ID, "reason", result.Reason)
			summary.Failed++
		}

		if err := r.store.DeleteTask(ctx, task.ID); err != nil {
			return nil, fmt.Errorf("failed to delete task %s: %w", task.ID, err)
		}
	}

	r.logger.Info("Completed poll run",
		"ran_at", summary.RanAt, "executed", summary.Executed, "failed", summary.Failed)

	return summary, nil
}
