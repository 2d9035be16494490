// Package models defines the core domain models for booking workflow automation.
package models

import "time"

// TriggerType identifies the booking/customer event category that activates a workflow.
type TriggerType string

const (
	TriggerBookingCreated     TriggerType = "BOOKING_CREATED"
	TriggerTimeBeforeBooking  TriggerType = "TIME_BEFORE_BOOKING"
	TriggerTimeAfterBooking   TriggerType = "TIME_AFTER_BOOKING"
	TriggerCustomerCreated    TriggerType = "CUSTOMER_CREATED"
	TriggerTransactionCreated TriggerType = "TRANSACTION_CREATED"
)

// TriggerTypes lists every known trigger type.
func TriggerTypes() []TriggerType {
	return []TriggerType{
		TriggerBookingCreated,
		TriggerTimeBeforeBooking,
		TriggerTimeAfterBooking,
		TriggerCustomerCreated,
		TriggerTransactionCreated,
	}
}

// Deferred reports whether the trigger fires at a computed future time
// rather than immediately on event arrival.
func (t TriggerType) Deferred() bool {
	return t == TriggerTimeBeforeBooking || t == TriggerTimeAfterBooking
}

// ActionType identifies the outbound channel a workflow uses.
type ActionType string

const (
	ActionEmail   ActionType = "email"
	ActionSMS     ActionType = "sms"
	ActionWebhook ActionType = "webhook"
)

// ActionTypes lists every known action type.
func ActionTypes() []ActionType {
	return []ActionType{ActionEmail, ActionSMS, ActionWebhook}
}

// Workflow ties a trigger condition to an outbound action for one company.
// Trigger and Action are immutable after creation; updates replace Settings only.
type Workflow struct {
	ID        string      `json:"id"`
	CompanyID string      `json:"company_id"`
	Trigger   TriggerType `json:"trigger"    validate:"required"`
	Action    ActionType  `json:"action"     validate:"required"`
	Settings  Settings    `json:"settings"`
	Name      string      `json:"name"       validate:"required,min=3"`
	CreatedAt time.Time   `json:"created_at"`
}
