// Package email provides the HTTP mail-gateway sender.
package email

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

// Sender posts messages to an HTTP mail gateway.
type Sender struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// NewSender creates a mail sender for the given gateway endpoint.
func NewSender(endpoint, apiKey string, logger *slog.Logger) *Sender {
	return &Sender{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: sendTimeout},
		logger:   logger.With("module", "email_sender"),
	}
}

type message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Send delivers one email. Gateway rejections come back as a failure result,
// transport problems as an error.
func (s *Sender) Send(ctx context.Context, to, from, subject, htmlBody string) (protocol.SendResult, error) {
	body, err := json.Marshal(message{
		To:      to,
		From:    from,
		Subject: subject,
		HTML:    htmlBody,
		Text:    htmlBody,
	})
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to encode email message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to create email request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("email gateway request failed: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return protocol.SendResult{}, fmt.Errorf("failed to read email gateway response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		s.logger.Warn("Email gateway rejected message", "status", resp.StatusCode, "to", to)

		return protocol.SendResult{
			Status:   models.StatusFailure,
			Detail:   fmt.Sprintf("email gateway returned status %d", resp.StatusCode),
			Response: respBody,
		}, nil
	}

	return protocol.SendResult{Status: models.StatusSuccess, Response: respBody}, nil
}
