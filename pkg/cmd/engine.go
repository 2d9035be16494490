package cmd

import (
	"log/slog"

	"github.com/eunits/bookflow/pkg/booking"
	"github.com/eunits/bookflow/pkg/dispatch"
	"github.com/eunits/bookflow/pkg/persistence"
	"github.com/eunits/bookflow/pkg/senders/email"
	"github.com/eunits/bookflow/pkg/senders/sms"
	"github.com/eunits/bookflow/pkg/senders/webhook"
	"github.com/eunits/bookflow/pkg/workflow"
)

// EngineConfig carries the channel endpoints and credentials the engine
// dispatches through.
type EngineConfig struct {
	FromEmail       string
	EmailEndpoint   string
	EmailAPIKey     string
	SMSEndpoint     string
	SMSAPIKey       string
	WebhookEndpoint string
	BookingAPIURL   string
	BookingAPIToken string
	Meta            dispatch.IntegrationMeta
}

// NewEngine wires senders, dispatcher, matcher and enricher into a runner.
// Without a booking API URL the enricher is disabled and events are processed
// with whatever contact details they arrive with.
func NewEngine(store persistence.Persistence, cfg EngineConfig, logger *slog.Logger) *workflow.Runner {
	dispatcher := dispatch.NewDispatcher(
		email.NewSender(cfg.EmailEndpoint, cfg.EmailAPIKey, logger),
		sms.NewSender(cfg.SMSEndpoint, cfg.SMSAPIKey, logger),
		webhook.NewSender(cfg.WebhookEndpoint, logger),
		store,
		cfg.FromEmail,
		cfg.Meta,
		logger,
	)

	var enricher *workflow.Enricher
	if cfg.BookingAPIURL != "" {
		enricher = workflow.NewEnricher(booking.NewClient(cfg.BookingAPIURL, cfg.BookingAPIToken, logger), logger)
	}

	return workflow.NewRunner(store, dispatcher, workflow.NewMatcher(logger), enricher, logger)
}
