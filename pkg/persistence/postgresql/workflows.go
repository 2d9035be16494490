package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

const workflowColumns = `id, company_id, trigger, action, settings, name, created_at`

// WorkflowsByCompany returns every workflow owned by the company, newest first.
func (p *Persistence) WorkflowsByCompany(ctx context.Context, companyID string) ([]*models.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE company_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	return p.collectWorkflows(ctx, rows)
}

// WorkflowsByCompanyAndTriggers returns the company's workflows whose trigger
// is in the given set.
func (p *Persistence) WorkflowsByCompanyAndTriggers(ctx context.Context, companyID string, triggers []models.TriggerType) ([]*models.Workflow, error) {
	names := make([]string, 0, len(triggers))
	for _, t := range triggers {
		names = append(names, string(t))
	}

	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE company_id = $1 AND trigger = ANY($2)
		ORDER BY created_at DESC
	`

	rows, err := p.db.QueryContext(ctx, query, companyID, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows by triggers: %w", err)
	}

	return p.collectWorkflows(ctx, rows)
}

// WorkflowByID returns the workflow, or ErrWorkflowNotFound if it does not
// exist or belongs to another company.
func (p *Persistence) WorkflowByID(ctx context.Context, id, companyID string) (*models.Workflow, error) {
	query := `
		SELECT ` + workflowColumns + `
		FROM workflows
		WHERE id = $1 AND company_id = $2
	`

	wf, err := p.scanWorkflow(ctx, p.db.QueryRowContext(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return wf, nil
}

// SaveWorkflow inserts or replaces the workflow row.
func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	settings, err := json.Marshal(workflow.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings for workflow %s: %w", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (id, company_id, trigger, action, settings, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET settings = EXCLUDED.settings, name = EXCLUDED.name
	`

	_, err = p.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.CompanyID,
		string(workflow.Trigger),
		string(workflow.Action),
		settings,
		workflow.Name,
		workflow.CreatedAt,
	)
	if err != nil {
		return persistence.NewStoreError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

// UpdateWorkflowSettings replaces the settings of an existing workflow.
// Trigger and action are never touched.
func (p *Persistence) UpdateWorkflowSettings(ctx context.Context, id, companyID string, settings models.Settings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings for workflow %s: %w", id, err)
	}

	result, err := p.db.ExecContext(ctx,
		`UPDATE workflows SET settings = $1 WHERE id = $2 AND company_id = $3`,
		encoded, id, companyID,
	)
	if err != nil {
		return persistence.NewStoreError("UpdateWorkflowSettings", id, err)
	}

	return p.requireRow(result, "UpdateWorkflowSettings", id)
}

// DeleteWorkflow removes the workflow row.
func (p *Persistence) DeleteWorkflow(ctx context.Context, id, companyID string) error {
	result, err := p.db.ExecContext(ctx,
		`DELETE FROM workflows WHERE id = $1 AND company_id = $2`,
		id, companyID,
	)
	if err != nil {
		return persistence.NewStoreError("DeleteWorkflow", id, err)
	}

	return p.requireRow(result, "DeleteWorkflow", id)
}

func (p *Persistence) requireRow(result sql.Result, op, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError(op, id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (p *Persistence) collectWorkflows(ctx context.Context, rows *sql.Rows) ([]*models.Workflow, error) {
	defer p.closeRows(ctx, rows)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		wf, err := p.scanWorkflow(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, wf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanWorkflow reads one row. A settings blob that no longer decodes degrades
// to the zero value instead of failing the row: zero settings never match any
// event, and the workflow stays visible for repair or deletion.
func (p *Persistence) scanWorkflow(ctx context.Context, row rowScanner) (*models.Workflow, error) {
	var (
		wf       models.Workflow
		settings []byte
	)

	err := row.Scan(&wf.ID, &wf.CompanyID, &wf.Trigger, &wf.Action, &settings, &wf.Name, &wf.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(settings, &wf.Settings); err != nil {
		p.logger.WarnContext(ctx, "Ignoring undecodable workflow settings",
			"workflow_id", wf.ID, "error", err)

		wf.Settings = models.Settings{}
	}

	return &wf, nil
}
