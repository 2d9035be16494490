package services

import (
	"context"
	"fmt"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

// Scheduler exposes read and cancel access to the pending task queue. Task
// execution itself lives in the workflow runner.
type Scheduler struct {
	persistence persistence.Persistence
}

// NewScheduler creates a new scheduler service.
func NewScheduler(persistence persistence.Persistence) *Scheduler {
	return &Scheduler{persistence: persistence}
}

// Tasks returns the company's pending scheduled tasks.
func (s *Scheduler) Tasks(ctx context.Context, companyID string) ([]*models.ScheduledTask, error) {
	tasks, err := s.persistence.TasksByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled tasks: %w", err)
	}

	return tasks, nil
}

// Cancel removes a pending task before it fires. The task must belong to the
// company; anything else is a not-found.
func (s *Scheduler) Cancel(ctx context.Context, id, companyID string) error {
	tasks, err := s.persistence.TasksByCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to list scheduled tasks: %w", err)
	}

	for _, task := range tasks {
		if task.ID == id {
			return s.persistence.DeleteTask(ctx, id)
		}
	}

	return persistence.ErrTaskNotFound
}
