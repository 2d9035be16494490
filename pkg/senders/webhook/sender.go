// Package webhook provides the outbound webhook sender.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/protocol"
)

const sendTimeout = 30 * time.Second

// Sender posts JSON payloads to a single externally configured endpoint.
type Sender struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewSender creates a webhook sender for the given endpoint.
func NewSender(endpoint string, logger *slog.Logger) *Sender {
	return &Sender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: sendTimeout},
		logger:   logger.With("module", "webhook_sender"),
	}
}

// Send posts the payload. Non-2xx responses come back as a failure result
// with the response body attached for the action log.
func (s *Sender) Send(ctx context.Context, payload any) (protocol.SendResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("webhook request failed: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to read webhook response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		s.logger.Warn("Webhook endpoint returned error", "status", resp.StatusCode)

		return protocol.SendResult{
			Status:   models.StatusFailure,
			Detail:   fmt.Sprintf("webhook endpoint returned status %d", resp.StatusCode),
			Response: respBody,
		}, nil
	}

	return protocol.SendResult{Status: models.StatusSuccess, Response: respBody}, nil
}
