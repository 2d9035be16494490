package models

import (
	"encoding/json"
	"time"
)

// DispatchStatus is the outcome of a single dispatch attempt.
type DispatchStatus string

const (
	StatusSuccess DispatchStatus = "success"
	StatusFailure DispatchStatus = "failure"
)

// DeliveryRecord is one row of "sent" history: a workflow/event snapshot per
// recipient per dispatch attempt, regardless of outcome. Append-only.
type DeliveryRecord struct {
	ID        string          `json:"id"`
	Workflow  json.RawMessage `json:"wf"`
	Event     json.RawMessage `json:"event"`
	SentAt    time.Time       `json:"sent_at"`
	CompanyID string          `json:"company_id"`
}

// ActionLogEntry is one row of the troubleshooting audit trail, independent of
// the delivery history. Details carries the channel-specific response or error.
type ActionLogEntry struct {
	ID         string          `json:"id"`
	EventID    string          `json:"event_id"`
	WorkflowID string          `json:"workflow_id"`
	CompanyID  string          `json:"company_id"`
	ActionType ActionType      `json:"action_type"`
	Status     DispatchStatus  `json:"status"`
	Details    json.RawMessage `json:"details"`
	LoggedAt   time.Time       `json:"logged_at"`
}
