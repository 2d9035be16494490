// Package protocol defines the contracts between the workflow engine and the
// outbound channel providers. Providers are black boxes: a send either
// succeeds or fails with a detail, and transport-level problems are returned
// as errors.
package protocol

import (
	"context"
	"encoding/json"

	"github.com/eunits/bookflow/pkg/models"
)

// SendResult is the normalized outcome of one provider call.
type SendResult struct {
	Status models.DispatchStatus `json:"status"`
	// Detail is a short human-readable description of a failure.
	Detail string `json:"detail,omitempty"`
	// Response carries the provider's raw response body when available.
	Response json.RawMessage `json:"response,omitempty"`
}

// Success reports whether the provider accepted the send.
func (r SendResult) Success() bool {
	return r.Status == models.StatusSuccess
}

// EmailSender delivers a rendered email to one recipient.
type EmailSender interface {
	Send(ctx context.Context, to, from, subject, htmlBody string) (SendResult, error)
}

// SMSSender delivers a rendered text message to one phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, body string) (SendResult, error)
}

// WebhookSender posts a JSON payload to the configured endpoint.
type WebhookSender interface {
	Send(ctx context.Context, payload any) (SendResult, error)
}
