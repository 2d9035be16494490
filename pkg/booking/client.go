// Package booking provides the client for the booking provider's HQ API. The
// engine consumes three operations: customer lookup, event updates and the
// company's event-type catalog.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const requestTimeout = 30 * time.Second

// Customer is the subset of provider customer fields the engine needs.
type Customer struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	PhoneCountryCode string `json:"phone_country_code"`
	PhoneNumber      string `json:"phone_number"`
}

// Phone returns the customer's full international phone number.
func (c Customer) Phone() string {
	return c.PhoneCountryCode + c.PhoneNumber
}

// EventType is one entry of a company's bookable service catalog.
type EventType struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// EventPatch is the partial event update pushed back to the provider.
type EventPatch struct {
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	SuccessMessage string `json:"booking_success_message,omitempty"`
	Confirmed      *bool  `json:"confirmed,omitempty"`
	Unconfirmed    *bool  `json:"unconfirmed,omitempty"`
}

// Client talks to the booking provider API with a bearer token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a provider client for the given base URL and API token.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger.With("module", "booking_client"),
	}
}

// Customer fetches customer details by id.
func (c *Client) Customer(ctx context.Context, id string) (*Customer, error) {
	var customer Customer
	if err := c.get(ctx, "/customers/"+id, &customer); err != nil {
		return nil, err
	}

	return &customer, nil
}

// EventTypesByCompany returns the company's bookable service catalog.
func (c *Client) EventTypesByCompany(ctx context.Context, companyID string) ([]EventType, error) {
	var eventTypes []EventType
	if err := c.get(ctx, "/companies/"+companyID+"/event_types", &eventTypes); err != nil {
		return nil, err
	}

	return eventTypes, nil
}

// UpdateEvent pushes a partial event update back to the provider.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, patch EventPatch) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode event patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/events/"+eventID, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create event update request: %w", err)
	}

	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("booking provider request failed: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read booking provider response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("booking provider returned status %d for %s", resp.StatusCode, req.URL.Path)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode booking provider response: %w", err)
		}
	}

	return nil
}
