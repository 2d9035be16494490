// Package persistence provides the data storage abstraction for workflows,
// scheduled tasks and the delivery ledger.
package persistence

import (
	"context"
	"time"

	"github.com/eunits/bookflow/pkg/models"
)

// Persistence is the durable store shared by the request path and the poller.
// Implementations must support row-scoped updates keyed by task/workflow id;
// no cross-row transactions are required.
type Persistence interface {
	// Workflows.
	WorkflowsByCompany(ctx context.Context, companyID string) ([]*models.Workflow, error)
	WorkflowsByCompanyAndTriggers(ctx context.Context, companyID string, triggers []models.TriggerType) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id, companyID string) (*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	UpdateWorkflowSettings(ctx context.Context, id, companyID string, settings models.Settings) error
	DeleteWorkflow(ctx context.Context, id, companyID string) error

	// Scheduler store. Snapshots inside tasks are opaque blobs.
	EnqueueTask(ctx context.Context, task *models.ScheduledTask) (string, error)
	DueTasks(ctx context.Context, now time.Time) ([]*models.ScheduledTask, error)
	TasksByCompany(ctx context.Context, companyID string) ([]*models.ScheduledTask, error)
	DeleteTask(ctx context.Context, id string) error

	// Delivery ledger, both append-only.
	AddDeliveryRecord(ctx context.Context, record *models.DeliveryRecord) error
	DeliveriesByCompany(ctx context.Context, companyID string) ([]*models.DeliveryRecord, error)
	LogAction(ctx context.Context, entry *models.ActionLogEntry) error
	ActionLogByCompany(ctx context.Context, companyID string) ([]*models.ActionLogEntry, error)

	// Processed markers deduplicate repeated inbound events per workflow.
	IsProcessed(ctx context.Context, eventID, workflowID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, workflowID string) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
