package services

import (
	"context"
	"fmt"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
)

// Ledger exposes read access to the delivery history and the action log.
type Ledger struct {
	persistence persistence.Persistence
}

// NewLedger creates a new ledger service.
func NewLedger(persistence persistence.Persistence) *Ledger {
	return &Ledger{persistence: persistence}
}

// Deliveries returns the company's sent history, newest first.
func (l *Ledger) Deliveries(ctx context.Context, companyID string) ([]*models.DeliveryRecord, error) {
	records, err := l.persistence.DeliveriesByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	return records, nil
}

// ActionLog returns the company's per-attempt action log, newest first.
func (l *Ledger) ActionLog(ctx context.Context, companyID string) ([]*models.ActionLogEntry, error) {
	entries, err := l.persistence.ActionLogByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list action log entries: %w", err)
	}

	return entries, nil
}
