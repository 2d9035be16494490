package cmd

import (
	cli "github.com/urfave/cli/v3"

	"github.com/eunits/bookflow/pkg/dispatch"
)

// EngineFlags are the channel and provider flags shared by every binary that
// dispatches workflow actions.
func EngineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "database-url",
			Usage:    "Database connection URL for persistence (postgres:// or a file path)",
			Required: true,
			Sources:  cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "from-email",
			Usage:   "Sender address stamped on outgoing email",
			Sources: cli.EnvVars("FROM_EMAIL"),
		},
		&cli.StringFlag{
			Name:    "email-endpoint",
			Usage:   "HTTP mail gateway endpoint",
			Sources: cli.EnvVars("EMAIL_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "email-api-key",
			Usage:   "API key for the mail gateway",
			Sources: cli.EnvVars("EMAIL_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "sms-endpoint",
			Usage:   "HTTP SMS gateway endpoint",
			Sources: cli.EnvVars("SMS_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "sms-api-key",
			Usage:   "API key for the SMS gateway",
			Sources: cli.EnvVars("SMS_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "webhook-endpoint",
			Usage:   "Downstream endpoint for webhook actions",
			Sources: cli.EnvVars("WEBHOOK_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "booking-api-url",
			Usage:   "Booking provider API base URL (empty disables enrichment)",
			Sources: cli.EnvVars("BOOKING_API_URL"),
		},
		&cli.StringFlag{
			Name:    "booking-api-token",
			Usage:   "Bearer token for the booking provider API",
			Sources: cli.EnvVars("BOOKING_API_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "integration-connection",
			Usage:   "Connection name stamped on webhook payloads",
			Value:   "Booking",
			Sources: cli.EnvVars("INTEGRATION_CONNECTION"),
		},
		&cli.StringFlag{
			Name:    "integration-company",
			Usage:   "Company name stamped on webhook payloads",
			Sources: cli.EnvVars("INTEGRATION_COMPANY"),
		},
		&cli.StringFlag{
			Name:    "integration-name",
			Usage:   "Integration name stamped on webhook payloads",
			Value:   "Bookflow",
			Sources: cli.EnvVars("INTEGRATION_NAME"),
		},
		&cli.StringFlag{
			Name:    "integration-company-id",
			Usage:   "Company identifier stamped on webhook payloads",
			Sources: cli.EnvVars("INTEGRATION_COMPANY_ID"),
		},
	}
}

// EngineConfigFromCommand reads the engine flags off a parsed command.
func EngineConfigFromCommand(command *cli.Command) EngineConfig {
	return EngineConfig{
		FromEmail:       command.String("from-email"),
		EmailEndpoint:   command.String("email-endpoint"),
		EmailAPIKey:     command.String("email-api-key"),
		SMSEndpoint:     command.String("sms-endpoint"),
		SMSAPIKey:       command.String("sms-api-key"),
		WebhookEndpoint: command.String("webhook-endpoint"),
		BookingAPIURL:   command.String("booking-api-url"),
		BookingAPIToken: command.String("booking-api-token"),
		Meta: dispatch.IntegrationMeta{
			Connection:  command.String("integration-connection"),
			Company:     command.String("integration-company"),
			Integration: command.String("integration-name"),
			CompanyID:   command.String("integration-company-id"),
		},
	}
}
