// Package sms provides the HTTP SMS-gateway sender.
package sms

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

// Sender posts messages to an HTTP SMS gateway.
type Sender struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// NewSender creates an SMS sender for the given gateway endpoint.
func NewSender(endpoint, apiKey string, logger *slog.Logger) *Sender {
	return &Sender{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: sendTimeout},
		logger:   logger.With("module", "sms_sender"),
	}
}

type message struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Send delivers one text message. The recipient is expected to be normalized
// already; the gateway gets it as-is.
func (s *Sender) Send(ctx context.Context, phone, body string) (protocol.SendResult, error) {
	encoded, err := json.Marshal(message{Phone: phone, Message: body})
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to encode sms message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to create sms request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("sms gateway request failed: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to read sms gateway response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Warn("SMS gateway rejected message", "status", resp.StatusCode, "phone", phone)

		return protocol.SendResult{
			Status:   models.StatusFailure,
			Detail:   fmt.Sprintf("sms gateway returned status %d", resp.StatusCode),
			Response: respBody,
		}, nil
	}

	return protocol.SendResult{Status: models.StatusSuccess, Response: respBody}, nil
}
