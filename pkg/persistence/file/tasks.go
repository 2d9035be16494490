package file

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

// EnqueueTask persists a scheduled task and returns its id.
func (p *Persistence) EnqueueTask(_ context.Context, task *models.ScheduledTask) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	if err := p.write(tasksDir, task.ID, task); err != nil {
		return "", persistence.NewStoreError("EnqueueTask", task.ID, err)
	}

	return task.ID, nil
}

// DueTasks returns every task with fireAt <= now, oldest first. There is no
// lower bound: tasks delayed past their fire time still show up.
func (p *Persistence) DueTasks(_ context.Context, now time.Time) ([]*models.ScheduledTask, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	all, err := p.tasks()
	if err != nil {
		return nil, err
	}

	due := make([]*models.ScheduledTask, 0, len(all))

	for _, task := range all {
		if !task.FireAt.After(now) {
			due = append(due, task)
		}
	}

	return due, nil
}

// TasksByCompany returns the company's pending tasks, soonest first.
func (p *Persistence) TasksByCompany(_ context.Context, companyID string) ([]*models.ScheduledTask, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	all, err := p.tasks()
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.ScheduledTask, 0, len(all))

	for _, task := range all {
		if task.CompanyID == companyID {
			tasks = append(tasks, task)
		}
	}

	return tasks, nil
}

// DeleteTask removes a task. Deleting an already removed task is not an error:
// the poller deletes unconditionally after execution.
func (p *Persistence) DeleteTask(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.remove(tasksDir, id); err != nil {
		return persistence.NewStoreError("DeleteTask", id, err)
	}

	return nil
}

func (p *Persistence) tasks() ([]*models.ScheduledTask, error) {
	ids, err := p.ids(tasksDir)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.ScheduledTask, 0, len(ids))

	for _, id := range ids {
		var task models.ScheduledTask

		found, err := p.read(tasksDir, id, &task)
		if err != nil {
			return nil, fmt.Errorf("failed to load task %s: %w", id, err)
		}

		if found {
			tasks = append(tasks, &task)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].FireAt.Before(tasks[j].FireAt)
	})

	return tasks, nil
}
