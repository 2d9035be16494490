// Package web provides HTTP request and response types for the automation API.
package web

import (
	"time"

	"github.com/eunits/bookflow/pkg/models"
)

// CompanyHeader carries the tenant on every company-scoped route.
const CompanyHeader = "X-Company-ID"

// InboundEventType is one entry of the provider's event_types array. Only the
// first entry is used; it identifies the booked service.
type InboundEventType struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// InboundEvent is the provider's booking payload as delivered to the webhook.
type InboundEvent struct {
	ID           string             `json:"id"            validate:"required"`
	CompanyID    string             `json:"company"       validate:"required"`
	CustomerID   string             `json:"customer"      validate:"required"`
	CustomerName string             `json:"customer_name"`
	EventTypes   []InboundEventType `json:"event_types"`
	CreatedAt    time.Time          `json:"created_at"`
	StartsAt     time.Time          `json:"starts_at"`
	EndsAt       time.Time          `json:"ends_at"`
	Confirmed    bool               `json:"confirmed"`
	Unconfirmed  bool               `json:"unconfirmed"`
}

// EventCreatedRequest is the webhook envelope; the provider nests the event
// under "data".
type EventCreatedRequest struct {
	Data InboundEvent `json:"data" validate:"required"`
}

// ToModel converts the wire payload into the engine's event model.
func (e InboundEvent) ToModel() *models.Event {
	event := &models.Event{
		ID:           e.ID,
		CompanyID:    e.CompanyID,
		CustomerID:   e.CustomerID,
		CustomerName: e.CustomerName,
		CreatedAt:    e.CreatedAt,
		StartsAt:     e.StartsAt,
		EndsAt:       e.EndsAt,
		Confirmed:    e.Confirmed,
		Unconfirmed:  e.Unconfirmed,
	}

	if len(e.EventTypes) > 0 {
		event.ServiceTypeID = e.EventTypes[0].ID
		event.Title = e.EventTypes[0].Title
		event.Description = e.EventTypes[0].Description
	}

	return event
}

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name     string             `json:"name"     validate:"required,min=3"`
	Trigger  models.TriggerType `json:"trigger"  validate:"required"`
	Action   models.ActionType  `json:"action"   validate:"required"`
	Settings models.Settings    `json:"settings"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. Trigger and action are immutable; only settings can change.
type UpdateWorkflowRequest struct {
	Settings models.Settings `json:"settings"`
}
