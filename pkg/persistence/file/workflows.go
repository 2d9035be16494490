package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

// workflowDoc defers the settings decode so one malformed blob cannot fail a
// whole listing. Undecodable settings degrade to the zero value, which never
// matches any event.
type workflowDoc struct {
	models.Workflow
	Settings json.RawMessage `json:"settings"`
}

func (doc *workflowDoc) workflow() *models.Workflow {
	wf := doc.Workflow

	if len(doc.Settings) > 0 {
		if err := json.Unmarshal(doc.Settings, &wf.Settings); err != nil {
			slog.Warn("Ignoring undecodable workflow settings",
				"workflow_id", wf.ID, "error", err)

			wf.Settings = models.Settings{}
		}
	}

	return &wf
}

// WorkflowsByCompany returns every workflow owned by the company, newest first.
func (p *Persistence) WorkflowsByCompany(_ context.Context, companyID string) ([]*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.workflowsByCompany(companyID)
}

// WorkflowsByCompanyAndTriggers returns the company's workflows whose trigger
// is in the given set.
func (p *Persistence) WorkflowsByCompanyAndTriggers(_ context.Context, companyID string, triggers []models.TriggerType) ([]*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	all, err := p.workflowsByCompany(companyID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[models.TriggerType]bool, len(triggers))
	for _, t := range triggers {
		wanted[t] = true
	}

	matched := make([]*models.Workflow, 0, len(all))

	for _, wf := range all {
		if wanted[wf.Trigger] {
			matched = append(matched, wf)
		}
	}

	return matched, nil
}

// WorkflowByID returns the workflow, or ErrWorkflowNotFound if it does not
// exist or belongs to another company.
func (p *Persistence) WorkflowByID(_ context.Context, id, companyID string) (*models.Workflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.workflowByID(id, companyID)
}

// SaveWorkflow writes the workflow document.
func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.write(workflowsDir, workflow.ID, workflow)
}

// UpdateWorkflowSettings replaces the settings of an existing workflow.
// Trigger and action are never touched.
func (p *Persistence) UpdateWorkflowSettings(_ context.Context, id, companyID string, settings models.Settings) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wf, err := p.workflowByID(id, companyID)
	if err != nil {
		return err
	}

	wf.Settings = settings

	return p.write(workflowsDir, wf.ID, wf)
}

// DeleteWorkflow removes the workflow document.
func (p *Persistence) DeleteWorkflow(_ context.Context, id, companyID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	wf, err := p.workflowByID(id, companyID)
	if err != nil {
		return err
	}

	return p.remove(workflowsDir, wf.ID)
}

func (p *Persistence) workflowsByCompany(companyID string) ([]*models.Workflow, error) {
	ids, err := p.ids(workflowsDir)
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		var doc workflowDoc

		found, err := p.read(workflowsDir, id, &doc)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
		}

		if found && doc.CompanyID == companyID {
			workflows = append(workflows, doc.workflow())
		}
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (p *Persistence) workflowByID(id, companyID string) (*models.Workflow, error) {
	var doc workflowDoc

	found, err := p.read(workflowsDir, id, &doc)
	if err != nil {
		return nil, err
	}

	if !found || doc.CompanyID != companyID {
		return nil, persistence.NewStoreError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
	}

	return doc.workflow(), nil
}
