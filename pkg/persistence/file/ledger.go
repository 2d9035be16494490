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

// AddDeliveryRecord appends one row of sent history.
func (p *Persistence) AddDeliveryRecord(_ context.Context, record *models.DeliveryRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	if err := p.write(deliveriesDir, record.ID, record); err != nil {
		return persistence.NewStoreError("AddDeliveryRecord", record.ID, err)
	}

	return nil
}

// DeliveriesByCompany returns the company's sent history, newest first.
func (p *Persistence) DeliveriesByCompany(_ context.Context, companyID string) ([]*models.DeliveryRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids, err := p.ids(deliveriesDir)
	if err != nil {
		return nil, err
	}

	records := make([]*models.DeliveryRecord, 0, len(ids))

	for _, id := range ids {
		var record models.DeliveryRecord

		found, err := p.read(deliveriesDir, id, &record)
		if err != nil {
			return nil, fmt.Errorf("failed to load delivery record %s: %w", id, err)
		}

		if found && record.CompanyID == companyID {
			records = append(records, &record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SentAt.After(records[j].SentAt)
	})

	return records, nil
}

// LogAction appends one row to the action audit trail.
func (p *Persistence) LogAction(_ context.Context, entry *models.ActionLogEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if err := p.write(actionLogsDir, entry.ID, entry); err != nil {
		return persistence.NewStoreError("LogAction", entry.ID, err)
	}

	return nil
}

// ActionLogByCompany returns the company's action log, newest first.
func (p *Persistence) ActionLogByCompany(_ context.Context, companyID string) ([]*models.ActionLogEntry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids, err := p.ids(actionLogsDir)
	if err != nil {
		return nil, err
	}

	entries := make([]*models.ActionLogEntry, 0, len(ids))

	for _, id := range ids {
		var entry models.ActionLogEntry

		found, err := p.read(actionLogsDir, id, &entry)
		if err != nil {
			return nil, fmt.Errorf("failed to load action log entry %s: %w", id, err)
		}

		if found && entry.CompanyID == companyID {
			entries = append(entries, &entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LoggedAt.After(entries[j].LoggedAt)
	})

	return entries, nil
}

type processedMarker struct {
	EventID     string    `json:"event_id"`
	WorkflowID  string    `json:"workflow_id"`
	ProcessedAt time.Time `json:"processed_at"`
}

// IsProcessed reports whether the event was already matched against the workflow.
func (p *Persistence) IsProcessed(_ context.Context, eventID, workflowID string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var marker processedMarker

	return p.read(processedDir, markerID(eventID, workflowID), &marker)
}

// MarkProcessed records that the event was matched against the workflow.
func (p *Persistence) MarkProcessed(_ context.Context, eventID, workflowID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	marker := processedMarker{
		EventID:     eventID,
		WorkflowID:  workflowID,
		ProcessedAt: time.Now().UTC(),
	}

	return p.write(processedDir, markerID(eventID, workflowID), marker)
}

func markerID(eventID, workflowID string) string {
	return eventID + "_" + workflowID
}
