// Package main provides the standalone poller daemon. It covers deployments
// without an external cron hitting the API's /run endpoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	cli "github.com/urfave/cli/v3"

	"github.com/eunits/bookflow/pkg/cmd"
	"github.com/eunits/bookflow/pkg/log"
)

const defaultSchedule = "* * * * *"

func main() {
	logger := log.WithModule("poller")

	command := &cli.Command{
		Name:                  "bookflow-poller",
		Usage:                 "Executes due scheduled workflow tasks",
		EnableShellCompletion: true,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for the poll cycle",
				Value:   defaultSchedule,
				Sources: cli.EnvVars("POLL_SCHEDULE"),
			},
		}, cmd.EngineFlags()...),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Bookflow poller")

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

			scheduler := cron.New(cron.WithChain(
				cron.SkipIfStillRunning(cron.DefaultLogger),
				cron.Recover(cron.DefaultLogger),
			))

			_, err = scheduler.AddFunc(command.String("schedule"), func() {
				summary, err := runner.RunDue(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Poll cycle failed", "error", err)

					return
				}

				logger.InfoContext(ctx, "Poll cycle completed",
					"ran_at", summary.RanAt, "executed", summary.Executed, "failed", summary.Failed)
			})
			if err != nil {
				return err
			}

			scheduler.Start()
			logger.InfoContext(ctx, "Poller started", "schedule", command.String("schedule"))

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.InfoContext(ctx, "Shutting down poller")
			<-scheduler.Stop().Done()

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
