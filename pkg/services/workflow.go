package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/eunits/bookflow/pkg/booking"
	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

// Catalog lists a company's bookable service types at the provider.
type Catalog interface {
	EventTypesByCompany(ctx context.Context, companyID string) ([]booking.EventType, error)
}

type Workflow struct {
	persistence persistence.Persistence
	catalog     Catalog
	validate    *validator.Validate
}

// NewWorkflow creates a new workflow service. With a nil catalog, service-type
// filters are accepted without a provider round trip.
func NewWorkflow(persistence persistence.Persistence, catalog Catalog) *Workflow {
	return &Workflow{
		persistence: persistence,
		catalog:     catalog,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every workflow registered by the company.
func (w *Workflow) List(ctx context.Context, companyID string) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves one of the company's workflows by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id, companyID string) (*models.Workflow, error) {
	return w.persistence.WorkflowByID(ctx, id, companyID)
}

// Create validates and stores a new workflow. The server assigns the ID and
// creation time; client-supplied values for either are ignored.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if err := w.validate.Struct(workflow); err != nil {
		return nil, NewValidationError("Create", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	if !slices.Contains(models.TriggerTypes(), workflow.Trigger) {
		return nil, NewValidationError("Create", "UNKNOWN_TRIGGER",
			fmt.Sprintf("unknown trigger type '%s'", workflow.Trigger), ErrUnknownTrigger)
	}

	if !slices.Contains(models.ActionTypes(), workflow.Action) {
		return nil, NewValidationError("Create", "UNKNOWN_ACTION",
			fmt.Sprintf("unknown action type '%s'", workflow.Action), ErrUnknownAction)
	}

	if err := w.validateSettings(workflow.Trigger, workflow.Action, workflow.Settings); err != nil {
		return nil, err
	}

	if err := w.validateServiceTypes(ctx, workflow.CompanyID, workflow.Settings); err != nil {
		return nil, err
	}

	workflow.ID = uuid.New().String()
	workflow.CreatedAt = time.Now().UTC()

	if err := w.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// UpdateSettings replaces the settings of an existing workflow. Trigger and
// action are immutable, so the new settings are validated against the stored
// ones.
func (w *Workflow) UpdateSettings(ctx context.Context, id, companyID string, settings models.Settings) (*models.Workflow, error) {
	existing, err := w.persistence.WorkflowByID(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	if err := w.validateSettings(existing.Trigger, existing.Action, settings); err != nil {
		return nil, err
	}

	if err := w.validateServiceTypes(ctx, companyID, settings); err != nil {
		return nil, err
	}

	if err := w.persistence.UpdateWorkflowSettings(ctx, id, companyID, settings); err != nil {
		return nil, fmt.Errorf("failed to update workflow settings: %w", err)
	}

	existing.Settings = settings

	return existing, nil
}

// Delete removes one of the company's workflows. Pending scheduled tasks
// carrying a frozen snapshot of it still execute.
func (w *Workflow) Delete(ctx context.Context, id, companyID string) error {
	return w.persistence.DeleteWorkflow(ctx, id, companyID)
}

// validateSettings checks the settings blob against the JSON schema of the
// workflow's action and enforces the interval requirement of deferred triggers.
func (w *Workflow) validateSettings(trigger models.TriggerType, action models.ActionType, settings models.Settings) error {
	if trigger.Deferred() && settings.Interval == nil {
		return NewValidationError("validateSettings", "INTERVAL_REQUIRED",
			fmt.Sprintf("trigger '%s' requires an interval", trigger), ErrIntervalRequired)
	}

	schema, ok := settingsSchemas[action]
	if !ok {
		return NewValidationError("validateSettings", "UNKNOWN_ACTION",
			fmt.Sprintf("no settings schema for action '%s'", action), ErrUnknownAction)
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(settings)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate settings: %w", err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return NewValidationError("validateSettings", "INVALID_SETTINGS",
			strings.Join(descriptions, "; "), ErrInvalidSettings)
	}

	return nil
}

// validateServiceTypes cross-checks the filter against the company's service
// catalog at the provider. Filters naming service types the company does not
// offer would silently never match.
func (w *Workflow) validateServiceTypes(ctx context.Context, companyID string, settings models.Settings) error {
	if w.catalog == nil || len(settings.ServiceTypes) == 0 {
		return nil
	}

	eventTypes, err := w.catalog.EventTypesByCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to fetch service catalog for company %s: %w", companyID, err)
	}

	known := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		known[eventType.ID] = true
	}

	for _, id := range settings.ServiceTypes {
		if !known[id] {
			return NewValidationError("validateServiceTypes", "UNKNOWN_SERVICE_TYPE",
				fmt.Sprintf("service type '%s' is not in the company's catalog", id), ErrInvalidSettings)
		}
	}

	return nil
}

// settingsSchemas holds the per-action JSON schema for the settings blob. All
// actions require a non-empty service-type filter; each requires the template
// of its own channel.
var settingsSchemas = map[models.ActionType]map[string]any{
	models.ActionEmail: {
		"type":     "object",
		"required": []string{"serviceType", "emailTemplate"},
		"properties": map[string]any{
			"serviceType": serviceTypeSchema,
			"emailTemplate": map[string]any{
				"type":     "object",
				"required": []string{"subject", "body", "recipients"},
				"properties": map[string]any{
					"subject":    map[string]any{"type": "string", "minLength": 1},
					"body":       map[string]any{"type": "string", "minLength": 1},
					"recipients": map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
	models.ActionSMS: {
		"type":     "object",
		"required": []string{"serviceType", "smsTemplate"},
		"properties": map[string]any{
			"serviceType": serviceTypeSchema,
			"smsTemplate": map[string]any{
				"type":     "object",
				"required": []string{"body", "recipients"},
				"properties": map[string]any{
					"body":       map[string]any{"type": "string", "minLength": 1},
					"recipients": map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	},
	models.ActionWebhook: {
		"type":     "object",
		"required": []string{"serviceType"},
		"properties": map[string]any{
			"serviceType": serviceTypeSchema,
		},
	},
}

var serviceTypeSchema = map[string]any{
	"type":     "array",
	"minItems": 1,
	"items":    map[string]any{"type": "string", "minLength": 1},
}
