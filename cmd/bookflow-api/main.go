package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/eunits/bookflow/pkg/booking"
	"github.com/eunits/bookflow/pkg/cmd"
	"github.com/eunits/bookflow/pkg/log"
	"github.com/eunits/bookflow/pkg/services"
	"github.com/eunits/bookflow/pkg/signature"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "bookflow-api",
		Usage:                 "Booking workflow automation API",
		EnableShellCompletion: true,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "signature-secret",
				Usage:    "HMAC secret for inbound request signatures",
				Required: true,
				Sources:  cli.EnvVars("SIGNATURE_SECRET"),
			},
			&cli.StringFlag{
				Name:     "signature-salt",
				Usage:    "Salt mixed into signed payloads",
				Required: true,
				Sources:  cli.EnvVars("SIGNATURE_SALT"),
			},
		}, cmd.EngineFlags()...),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Bookflow API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			runner := cmd.NewEngine(persistence, cmd.EngineConfigFromCommand(command), logger)
			signer := signature.NewSigner(command.String("signature-secret"), command.String("signature-salt"))

			var catalog services.Catalog
			if url := command.String("booking-api-url"); url != "" {
				catalog = booking.NewClient(url, command.String("booking-api-token"), logger)
			}

			api := NewAPI(logger, persistence, runner, signer, catalog)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
