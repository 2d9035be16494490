package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

// AddDeliveryRecord appends one row of sent history.
func (p *Persistence) AddDeliveryRecord(ctx context.Context, record *models.DeliveryRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	query := `
		INSERT INTO deliveries (id, wf, event, sent_at, company_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.db.ExecContext(ctx, query,
		record.ID, []byte(record.Workflow), []byte(record.Event), record.SentAt, record.CompanyID)
	if err != nil {
		return persistence.NewStoreError("AddDeliveryRecord", record.ID, err)
	}

	return nil
}

// DeliveriesByCompany returns the company's sent history, newest first.
func (p *Persistence) DeliveriesByCompany(ctx context.Context, companyID string) ([]*models.DeliveryRecord, error) {
	query := `
		SELECT id, wf, event, sent_at, company_id
		FROM deliveries
		WHERE company_id = $1
		ORDER BY sent_at DESC
	`

	rows, err := p.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}

	defer p.closeRows(ctx, rows)

	records := make([]*models.DeliveryRecord, 0)

	for rows.Next() {
		var (
			record   models.DeliveryRecord
			wf, evnt []byte
		)

		if err := rows.Scan(&record.ID, &wf, &evnt, &record.SentAt, &record.CompanyID); err != nil {
			return nil, fmt.Errorf("failed to scan delivery record: %w", err)
		}

		record.Workflow = wf
		record.Event = evnt
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deliveries: %w", err)
	}

	return records, nil
}

// LogAction appends one row to the action audit trail.
func (p *Persistence) LogAction(ctx context.Context, entry *models.ActionLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO action_logs (id, event_id, workflow_id, company_id, action_type, status, details, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := p.db.ExecContext(ctx, query,
		entry.ID,
		entry.EventID,
		entry.WorkflowID,
		entry.CompanyID,
		string(entry.ActionType),
		string(entry.Status),
		[]byte(entry.Details),
		entry.LoggedAt,
	)
	if err != nil {
		return persistence.NewStoreError("LogAction", entry.ID, err)
	}

	return nil
}

// ActionLogByCompany returns the company's action log, newest first.
func (p *Persistence) ActionLogByCompany(ctx context.Context, companyID string) ([]*models.ActionLogEntry, error) {
	query := `
		SELECT id, event_id, workflow_id, company_id, action_type, status, details, logged_at
		FROM action_logs
		WHERE company_id = $1
		ORDER BY logged_at DESC
	`

	rows, err := p.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query action logs: %w", err)
	}

	defer p.closeRows(ctx, rows)

	entries := make([]*models.ActionLogEntry, 0)

	for rows.Next() {
		var (
			entry   models.ActionLogEntry
			details []byte
		)

		err := rows.Scan(&entry.ID, &entry.EventID, &entry.WorkflowID, &entry.CompanyID,
			&entry.ActionType, &entry.Status, &details, &entry.LoggedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action log entry: %w", err)
		}

		entry.Details = details
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action logs: %w", err)
	}

	return entries, nil
}

// IsProcessed reports whether the event was already matched against the workflow.
func (p *Persistence) IsProcessed(ctx context.Context, eventID, workflowID string) (bool, error) {
	var count int

	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processed_events WHERE event_id = $1 AND workflow_id = $2`,
		eventID, workflowID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query processed marker: %w", err)
	}

	return count > 0, nil
}

// MarkProcessed records that the event was matched against the workflow.
func (p *Persistence) MarkProcessed(ctx context.Context, eventID, workflowID string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO processed_events (event_id, workflow_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, workflow_id) DO NOTHING
	`, eventID, workflowID)
	if err != nil {
		return persistence.NewStoreError("MarkProcessed", eventID, err)
	}

	return nil
}

func (p *Persistence) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		p.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
