package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

// EnqueueTask persists a scheduled task and returns its id.
func (p *Persistence) EnqueueTask(ctx context.Context, task *models.ScheduledTask) (string, error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	query := `
		INSERT INTO scheduled_tasks (id, wf, event, fire_at, company_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.db.ExecContext(ctx, query,
		task.ID, []byte(task.Workflow), []byte(task.Event), task.FireAt, task.CompanyID)
	if err != nil {
		return "", persistence.NewStoreError("EnqueueTask", task.ID, err)
	}

	return task.ID, nil
}

// DueTasks returns every task with fire_at <= now, oldest first.
func (p *Persistence) DueTasks(ctx context.Context, now time.Time) ([]*models.ScheduledTask, error) {
	query := `
		SELECT id, wf, event, fire_at, company_id
		FROM scheduled_tasks
		WHERE fire_at <= $1
		ORDER BY fire_at ASC
	`

	rows, err := p.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}

	return p.collectTasks(ctx, rows)
}

// TasksByCompany returns the company's pending tasks, soonest first.
func (p *Persistence) TasksByCompany(ctx context.Context, companyID string) ([]*models.ScheduledTask, error) {
	query := `
		SELECT id, wf, event, fire_at, company_id
		FROM scheduled_tasks
		WHERE company_id = $1
		ORDER BY fire_at ASC
	`

	rows, err := p.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks by company: %w", err)
	}

	return p.collectTasks(ctx, rows)
}

// DeleteTask removes a task. Deleting an already removed task is not an error.
func (p *Persistence) DeleteTask(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM scheduled_tasks WHERE id = $1`, id)
	if err != nil {
		return persistence.NewStoreError("DeleteTask", id, err)
	}

	return nil
}

func (p *Persistence) collectTasks(ctx context.Context, rows *sql.Rows) ([]*models.ScheduledTask, error) {
	defer p.closeRows(ctx, rows)

	tasks := make([]*models.ScheduledTask, 0)

	for rows.Next() {
		var (
			task     models.ScheduledTask
			wf, evnt []byte
		)

		if err := rows.Scan(&task.ID, &wf, &evnt, &task.FireAt, &task.CompanyID); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled task: %w", err)
		}

		task.Workflow = wf
		task.Event = evnt
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduled tasks: %w", err)
	}

	return tasks, nil
}
