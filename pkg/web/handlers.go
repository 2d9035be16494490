package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/services"
	"github.com/eunits/bookflow/pkg/signature"
	"github.com/eunits/bookflow/pkg/workflow"
)

// PollPayload is the literal the poll endpoint's signature is computed over.
// The endpoint carries no body, so the signature covers a fixed string.
const PollPayload = "bookflow"

type APIHandlers struct {
	workflowService  *services.Workflow
	schedulerService *services.Scheduler
	ledgerService    *services.Ledger
	runner           *workflow.Runner
	signer           *signature.Signer
	validator        *validator.Validate
	logger           *slog.Logger
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	schedulerService *services.Scheduler,
	ledgerService *services.Ledger,
	runner *workflow.Runner,
	signer *signature.Signer,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		schedulerService: schedulerService,
		ledgerService:    ledgerService,
		runner:           runner,
		signer:           signer,
		validator:        validator,
		logger:           logger.With("module", "web"),
	}
}

// EventCreated ingests a booking-created webhook from the provider. The
// signature covers the company id inside the payload, so the body is parsed
// before authentication.
func (h *APIHandlers) EventCreated(c fiber.Ctx) error {
	var req EventCreatedRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if !h.signer.Verify(req.Data.CompanyID, c.Get(signature.Header)) {
		h.logger.Warn("Rejected webhook with bad signature", "company_id", req.Data.CompanyID)

		return unauthorized(c)
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	summary, err := h.runner.ProcessBookingEvent(c.Context(), req.Data.ToModel())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(summary)
}

// RunScheduled executes every due scheduled task. External cron hits this
// endpoint; the signature covers a fixed literal since there is no body.
func (h *APIHandlers) RunScheduled(c fiber.Ctx) error {
	if !h.signer.Verify(PollPayload, c.Get(signature.Header)) {
		h.logger.Warn("Rejected poll request with bad signature")

		return unauthorized(c)
	}

	summary, err := h.runner.RunDue(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(summary)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	workflows, err := h.workflowService.List(c.Context(), companyID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.workflowService.FetchByID(c.Context(), id, companyID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), &models.Workflow{
		CompanyID: companyID,
		Trigger:   req.Trigger,
		Action:    req.Action,
		Settings:  req.Settings,
		Name:      req.Name,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.workflowService.UpdateSettings(c.Context(), id, companyID, req.Settings)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.Delete(c.Context(), id, companyID); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetScheduledTasks(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	tasks, err := h.schedulerService.Tasks(c.Context(), companyID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(tasks)
}

func (h *APIHandlers) CancelScheduledTask(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Task ID is required")
	}

	if err := h.schedulerService.Cancel(c.Context(), id, companyID); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetDeliveries(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	records, err := h.ledgerService.Deliveries(c.Context(), companyID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(records)
}

func (h *APIHandlers) GetActionLog(c fiber.Ctx) error {
	companyID := c.Get(CompanyHeader)
	if companyID == "" {
		return badRequest(c, "Company ID header is required")
	}

	entries, err := h.ledgerService.ActionLog(c.Context(), companyID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(entries)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeCheck, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Bookflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Bookflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"store": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
