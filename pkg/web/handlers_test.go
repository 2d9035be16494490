package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunits/bookflow/pkg/dispatch"
	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence/file"
	"github.com/eunits/bookflow/pkg/protocol"
	"github.com/eunits/bookflow/pkg/services"
	"github.com/eunits/bookflow/pkg/signature"
	"github.com/eunits/bookflow/pkg/web"
	"github.com/eunits/bookflow/pkg/workflow"
)

type stubEmailSender struct{ sent []string }

func (s *stubEmailSender) Send(_ context.Context, to, _, _, _ string) (protocol.SendResult, error) {
	s.sent = append(s.sent, to)

	return protocol.SendResult{Status: models.StatusSuccess}, nil
}

type stubSMSSender struct{}

func (stubSMSSender) Send(_ context.Context, _, _ string) (protocol.SendResult, error) {
	return protocol.SendResult{Status: models.StatusSuccess}, nil
}

type stubWebhookSender struct{}

func (stubWebhookSender) Send(_ context.Context, _ any) (protocol.SendResult, error) {
	return protocol.SendResult{Status: models.StatusSuccess}, nil
}

type testApp struct {
	app    *fiber.App
	store  *file.Persistence
	signer *signature.Signer
	email  *stubEmailSender
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := file.NewPersistence(t.TempDir())
	signer := signature.NewSigner("test-secret", "test-salt")
	emailSender := &stubEmailSender{}

	dispatcher := dispatch.NewDispatcher(
		emailSender, stubSMSSender{}, stubWebhookSender{}, store,
		"noreply@example.com", dispatch.IntegrationMeta{}, logger)
	runner := workflow.NewRunner(store, dispatcher, workflow.NewMatcher(logger), nil, logger)

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(store, nil),
		services.NewScheduler(store),
		services.NewLedger(store),
		runner,
		signer,
		validator.New(validator.WithRequiredStructEnabled()),
		logger,
	)

	app := fiber.New()

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

	return &testApp{app: app, store: store, signer: signer, email: emailSender}
}

func jsonRequest(t *testing.T, method, path string, payload any) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func createWorkflowRequest() web.CreateWorkflowRequest {
	return web.CreateWorkflowRequest{
		Name:    "Confirmation email",
		Trigger: models.TriggerBookingCreated,
		Action:  models.ActionEmail,
		Settings: models.Settings{
			ServiceTypes: []string{"svc1"},
			Email: &models.EmailTemplate{
				Subject:    "Your booking",
				Body:       "<p>Hi {{customerName}}</p>",
				Recipients: "{{customerEmail}}",
			},
		},
	}
}

func TestCreateWorkflow(t *testing.T) {
	ta := setupTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/workflows", createWorkflowRequest())
	req.Header.Set(web.CompanyHeader, "company-1")

	resp, err := ta.app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "company-1", created.CompanyID)
}

func TestCreateWorkflow_RequiresCompanyHeader(t *testing.T) {
	ta := setupTestApp(t)

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/workflows", createWorkflowRequest()))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWorkflow_InvalidSettings(t *testing.T) {
	ta := setupTestApp(t)

	payload := createWorkflowRequest()
	payload.Settings.Email = nil

	req := jsonRequest(t, http.MethodPost, "/workflows", payload)
	req.Header.Set(web.CompanyHeader, "company-1")

	resp, err := ta.app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflow_WrongCompanyIsNotFound(t *testing.T) {
	ta := setupTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/workflows", createWorkflowRequest())
	req.Header.Set(web.CompanyHeader, "company-1")

	resp, err := ta.app.Test(req)
	require.NoError(t, err)

	var created models.Workflow

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &created))
	_ = resp.Body.Close()

	get := httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil)
	get.Header.Set(web.CompanyHeader, "company-2")

	resp, err = ta.app.Test(get)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func eventCreatedPayload() web.EventCreatedRequest {
	return web.EventCreatedRequest{
		Data: web.InboundEvent{
			ID:           "ev-1",
			CompanyID:    "company-1",
			CustomerID:   "cust-1",
			CustomerName: "Alice",
			EventTypes: []web.InboundEventType{
				{ID: "svc1", Title: "Golf hour", Description: "One hour"},
			},
			CreatedAt: time.Now().UTC(),
			StartsAt:  time.Now().UTC().Add(24 * time.Hour),
			EndsAt:    time.Now().UTC().Add(25 * time.Hour),
			Confirmed: true,
		},
	}
}

func TestEventCreated_RejectsBadSignature(t *testing.T) {
	ta := setupTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/webhooks/event-created", eventCreatedPayload())
	req.Header.Set(signature.Header, "not-a-signature")

	resp, err := ta.app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, ta.email.sent)
}

func TestEventCreated_DispatchesMatchingWorkflow(t *testing.T) {
	ta := setupTestApp(t)

	create := jsonRequest(t, http.MethodPost, "/workflows", createWorkflowRequest())
	create.Header.Set(web.CompanyHeader, "company-1")

	resp, err := ta.app.Test(create)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	payload := eventCreatedPayload()
	req := jsonRequest(t, http.MethodPost, "/webhooks/event-created", payload)
	req.Header.Set(signature.Header, ta.signer.Sign(payload.Data.CompanyID))

	resp, err = ta.app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary workflow.ProcessSummary

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 1, summary.Dispatched)
}

func TestRunScheduled_RequiresSignature(t *testing.T) {
	ta := setupTestApp(t)

	resp, err := ta.app.Test(httptest.NewRequest(http.MethodPost, "/run", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRunScheduled_ReturnsRanAt(t *testing.T) {
	ta := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/run", nil)
	req.Header.Set(signature.Header, ta.signer.Sign(web.PollPayload))

	resp, err := ta.app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]any

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Contains(t, result, "ranAt")
}

func TestCancelScheduledTask_NotFound(t *testing.T) {
	ta := setupTestApp(t)

	req := httptest.NewRequest(http.MethodDelete, "/scheduled/no-such-task", nil)
	req.Header.Set(web.CompanyHeader, "company-1")

	resp, err := ta.app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	ta := setupTestApp(t)

	resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
