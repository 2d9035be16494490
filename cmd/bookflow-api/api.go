// Package main provides the Bookflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/eunits/bookflow/pkg/persistence"
	"github.com/eunits/bookflow/pkg/services"
	"github.com/eunits/bookflow/pkg/signature"
	"github.com/eunits/bookflow/pkg/web"
	"github.com/eunits/bookflow/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	runner      *workflow.Runner
	signer      *signature.Signer
	catalog     services.Catalog
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	runner *workflow.Runner,
	signer *signature.Signer,
	catalog services.Catalog,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		runner:      runner,
		signer:      signer,
		catalog:     catalog,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(
		services.NewWorkflow(a.persistence, a.catalog),
		services.NewScheduler(a.persistence),
		services.NewLedger(a.persistence),
		a.runner,
		a.signer,
		a.validate,
		a.logger,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Bookflow API")
	})

	app.Post("/webhooks/event-created", handlers.EventCreated)
	app.Post("/run", handlers.RunScheduled)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	app.Get("/scheduled", handlers.GetScheduledTasks)
	app.Delete("/scheduled/:id", handlers.CancelScheduledTask)
	app.Get("/sent", handlers.GetDeliveries)
	app.Get("/logs", handlers.GetActionLog)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
