package workflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/eunits/bookflow/pkg/booking"
	"github.com/eunits/bookflow/pkg/models"
)

// ProviderClient is the slice of the booking provider API the enricher uses.
type ProviderClient interface {
	Customer(ctx context.Context, id string) (*booking.Customer, error)
	UpdateEvent(ctx context.Context, eventID string, patch booking.EventPatch) error
}

// Enricher decorates an inbound event with customer details and a fresh
// one-time access code, and pushes the decorated details back to the provider.
// Enrichment runs once per inbound event, before trigger matching.
type Enricher struct {
	provider ProviderClient
	logger   *slog.Logger
}

// NewEnricher creates an enricher backed by the given provider client.
func NewEnricher(provider ProviderClient, logger *slog.Logger) *Enricher {
	return &Enricher{
		provider: provider,
		logger:   logger.With("module", "enricher"),
	}
}

// Enrich fills in customer contact details and the one-time code, decorates
// the event title and description with the code, and confirms the remote
// event. A failed remote update is logged and tolerated; a failed customer
// lookup is fatal because every channel depends on the contact details.
func (e *Enricher) Enrich(ctx context.Context, event *models.Event) error {
	customer, err := e.provider.Customer(ctx, event.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to fetch customer %s: %w", event.CustomerID, err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate access code: %w", err)
	}

	event.CustomerEmail = customer.Email
	event.CustomerPhone = customer.Phone()
	event.CustomerCode = code

	title := fmt.Sprintf("%s(%s)", event.Title, code)
	description := fmt.Sprintf("(%s) is your access code. It lets you in up to 15 minutes before your booked timeslot.\n\n%s", code, title)
	event.Title = title
	event.Description = description

	patch := booking.EventPatch{
		Title:          title,
		Description:    description,
		SuccessMessage: description,
	}

	if event.Unconfirmed {
		unconfirmed := false
		patch.Unconfirmed = &unconfirmed
		event.Unconfirmed = false
	}

	if !event.Confirmed {
		confirmed := true
		patch.Confirmed = &confirmed
		event.Confirmed = true
	}

	if err := e.provider.UpdateEvent(ctx, event.ID, patch); err != nil {
		e.logger.Warn("Failed to push enriched event back to provider",
			"event_id", event.ID, "error", err)
	}

	return nil
}

// generateCode returns a fresh 6-digit one-time access code.
func generateCode() (string, error) {
	max := big.NewInt(1000000)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
