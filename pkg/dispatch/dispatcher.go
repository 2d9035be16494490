// Package dispatch routes a matched workflow action to the right outbound
// channel, renders its templates and records every attempt in the delivery
// ledger.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence"
	"github.com/eunits/bookflow/pkg/phone"
	"github.com/eunits/bookflow/pkg/protocol"
	"github.com/eunits/bookflow/pkg/template"
)

const (
	// Fallbacks for events that arrive without a title or description.
	defaultEventTitle       = "Your booking"
	defaultEventDescription = "We look forward to seeing you!"

	// ReasonNoValidRecipients marks an SMS action where every recipient was
	// dropped during phone normalization. Distinct from a send-time failure.
	ReasonNoValidRecipients = "no valid recipients"

	// ReasonActionNotImplemented marks a workflow with an unknown action type.
	ReasonActionNotImplemented = "action not implemented"

	// ReasonMissingTemplate marks settings without the template the action needs.
	ReasonMissingTemplate = "settings are missing the channel template"
)

// RecipientResult is the outcome of one per-recipient send attempt.
type RecipientResult struct {
	Recipient string              `json:"recipient"`
	Result    protocol.SendResult `json:"result"`
}

// Result summarizes one workflow dispatch.
type Result struct {
	Status     models.DispatchStatus `json:"status"`
	Reason     string                `json:"reason,omitempty"`
	Recipients []RecipientResult     `json:"recipients,omitempty"`
}

// Dispatcher resolves placeholder values, renders channel templates and hands
// the result to the channel providers. Every attempted per-recipient send
// writes one action log entry and one delivery record before Dispatch returns.
type Dispatcher struct {
	email     protocol.EmailSender
	sms       protocol.SMSSender
	webhook   protocol.WebhookSender
	store     persistence.Persistence
	fromEmail string
	meta      IntegrationMeta
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher creates a dispatcher wired to the given providers and store.
func NewDispatcher(
	email protocol.EmailSender,
	sms protocol.SMSSender,
	webhook protocol.WebhookSender,
	store persistence.Persistence,
	fromEmail string,
	meta IntegrationMeta,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		email:     email,
		sms:       sms,
		webhook:   webhook,
		store:     store,
		fromEmail: fromEmail,
		meta:      meta,
		logger:    logger.With("module", "dispatcher"),
		now:       time.Now,
	}
}

// Dispatch executes the workflow's action against the event. A failure of one
// recipient never blocks the others; a store failure aborts with an error.
func (d *Dispatcher) Dispatch(ctx context.Context, wf *models.Workflow, event *models.Event) (*Result, error) {
	values := placeholderValues(event)

	switch wf.Action {
	case models.ActionEmail:
		return d.dispatchEmail(ctx, wf, event, values)
	case models.ActionSMS:
		return d.dispatchSMS(ctx, wf, event, values)
	case models.ActionWebhook:
		return d.dispatchWebhook(ctx, wf, event)
	default:
		d.logger.Warn("Unknown workflow action", "workflow_id", wf.ID, "action", wf.Action)

		return &Result{Status: models.StatusFailure, Reason: ReasonActionNotImplemented}, nil
	}
}

// placeholderValues builds the substitution set shared by all channels.
func placeholderValues(event *models.Event) map[string]string {
	title := event.Title
	if title == "" {
		title = defaultEventTitle
	}

	description := event.Description
	if description == "" {
		description = defaultEventDescription
	}

	return map[string]string{
		"customerCode":     event.CustomerCode,
		"customerEmail":    event.CustomerEmail,
		"customerName":     event.CustomerName,
		"customerPhone":    event.CustomerPhone,
		"eventTitle":       title,
		"eventDescription": description,
	}
}

func (d *Dispatcher) dispatchEmail(ctx context.Context, wf *models.Workflow, event *models.Event, values map[string]string) (*Result, error) {
	tmpl := wf.Settings.Email
	if tmpl == nil {
		d.logger.Warn("Email workflow without email template", "workflow_id", wf.ID)

		return &Result{Status: models.StatusFailure, Reason: ReasonMissingTemplate}, nil
	}

	subject := template.Render(tmpl.Subject, values)
	body := template.Render(tmpl.Body, values)

	result := &Result{Status: models.StatusSuccess}

	for _, recipient := range splitRecipients(tmpl.Recipients, values) {
		sendResult, err := d.email.Send(ctx, recipient, d.fromEmail, subject, body)
		if err != nil {
			sendResult = protocol.SendResult{Status: models.StatusFailure, Detail: err.Error()}
		}

		details := map[string]any{
			"recipient": recipient,
			"subject":   subject,
			"body":      body,
		}
		if !sendResult.Success() {
			details["error"] = sendResult.Detail
			result.Status = models.StatusFailure
		}

		if err := d.record(ctx, wf, event, sendResult.Status, details); err != nil {
			return nil, err
		}

		result.Recipients = append(result.Recipients, RecipientResult{Recipient: recipient, Result: sendResult})
	}

	return result, nil
}

func (d *Dispatcher) dispatchSMS(ctx context.Context, wf *models.Workflow, event *models.Event, values map[string]string) (*Result, error) {
	tmpl := wf.Settings.SMS
	if tmpl == nil {
		d.logger.Warn("SMS workflow without sms template", "workflow_id", wf.ID)

		return &Result{Status: models.StatusFailure, Reason: ReasonMissingTemplate}, nil
	}

	body := template.StripTags(template.Render(tmpl.Body, values))

	recipients := make([]string, 0)

	for _, raw := range splitRecipients(tmpl.Recipients, values) {
		formatted := phone.Format(raw)
		if !phone.Valid(formatted) {
			d.logger.Warn("Dropping recipient that failed phone normalization",
				"workflow_id", wf.ID, "recipient", raw)

			continue
		}

		recipients = append(recipients, formatted)
	}

	// Zero valid recipients is an action-level failure, not a send failure,
	// and produces no ledger rows.
	if len(recipients) == 0 {
		return &Result{Status: models.StatusFailure, Reason: ReasonNoValidRecipients}, nil
	}

	result := &Result{Status: models.StatusSuccess}

	for _, recipient := range recipients {
		sendResult, err := d.sms.Send(ctx, recipient, body)
		if err != nil {
			sendResult = protocol.SendResult{Status: models.StatusFailure, Detail: err.Error()}
		}

		details := map[string]any{
			"recipient": recipient,
			"body":      body,
		}
		if !sendResult.Success() {
			details["error"] = sendResult.Detail
			result.Status = models.StatusFailure
		}

		if err := d.record(ctx, wf, event, sendResult.Status, details); err != nil {
			return nil, err
		}

		result.Recipients = append(result.Recipients, RecipientResult{Recipient: recipient, Result: sendResult})
	}

	return result, nil
}

func (d *Dispatcher) dispatchWebhook(ctx context.Context, wf *models.Workflow, event *models.Event) (*Result, error) {
	payload := d.webhookPayload(event)

	sendResult, err := d.webhook.Send(ctx, payload)
	if err != nil {
		sendResult = protocol.SendResult{Status: models.StatusFailure, Detail: err.Error()}
	}

	details := parseWebhookResponse(sendResult)

	if err := d.record(ctx, wf, event, sendResult.Status, details); err != nil {
		return nil, err
	}

	return &Result{
		Status:     sendResult.Status,
		Reason:     sendResult.Detail,
		Recipients: []RecipientResult{{Recipient: "webhook", Result: sendResult}},
	}, nil
}

// record writes one action log entry and one delivery record for a single
// attempt. A store failure here is fatal for the dispatch.
func (d *Dispatcher) record(ctx context.Context, wf *models.Workflow, event *models.Event, status models.DispatchStatus, details map[string]any) error {
	now := d.now().UTC()

	encodedDetails, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode action log details: %w", err)
	}

	entry := &models.ActionLogEntry{
		EventID:    event.ID,
		WorkflowID: wf.ID,
		CompanyID:  event.CompanyID,
		ActionType: wf.Action,
		Status:     status,
		Details:    encodedDetails,
		LoggedAt:   now,
	}
	if err := d.store.LogAction(ctx, entry); err != nil {
		return fmt.Errorf("failed to log action for workflow %s: %w", wf.ID, err)
	}

	wfRaw, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("failed to snapshot workflow %s: %w", wf.ID, err)
	}

	eventRaw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to snapshot event %s: %w", event.ID, err)
	}

	record := &models.DeliveryRecord{
		Workflow:  wfRaw,
		Event:     eventRaw,
		SentAt:    now,
		CompanyID: event.CompanyID,
	}
	if err := d.store.AddDeliveryRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to add delivery record for workflow %s: %w", wf.ID, err)
	}

	return nil
}

// splitRecipients splits the configured recipient list on commas and renders
// each entry, so a recipient can itself be a placeholder.
func splitRecipients(raw string, values map[string]string) []string {
	parts := strings.Split(raw, ",")
	recipients := make([]string, 0, len(parts))

	for _, part := range parts {
		rendered := template.Render(strings.TrimSpace(part), values)
		if rendered == "" {
			continue
		}

		recipients = append(recipients, rendered)
	}

	return recipients
}
