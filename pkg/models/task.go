package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScheduledTask is a pending deferred action. The workflow and event are
// frozen as opaque JSON snapshots at enqueue time, so later edits of the live
// records never affect a pending task. The store never interprets the blobs.
type ScheduledTask struct {
	ID        string          `json:"id"`
	Workflow  json.RawMessage `json:"wf"`
	Event     json.RawMessage `json:"event"`
	FireAt    time.Time       `json:"fire_at"`
	CompanyID string          `json:"company_id"`
}

// NewScheduledTask freezes the given workflow and event into a task firing at
// the given time.
func NewScheduledTask(wf *Workflow, event *Event, fireAt time.Time) (*ScheduledTask, error) {
	wfRaw, err := json.Marshal(wf)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot workflow %s: %w", wf.ID, err)
	}

	eventRaw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot event %s: %w", event.ID, err)
	}

	return &ScheduledTask{
		Workflow:  wfRaw,
		Event:     eventRaw,
		FireAt:    fireAt,
		CompanyID: event.CompanyID,
	}, nil
}

// Snapshots thaws the frozen workflow and event for execution.
func (t *ScheduledTask) Snapshots() (*Workflow, *Event, error) {
	var wf Workflow
	if err := json.Unmarshal(t.Workflow, &wf); err != nil {
		return nil, nil, fmt.Errorf("failed to decode workflow snapshot of task %s: %w", t.ID, err)
	}

	var event Event
	if err := json.Unmarshal(t.Event, &event); err != nil {
		return nil, nil, fmt.Errorf("failed to decode event snapshot of task %s: %w", t.ID, err)
	}

	return &wf, &event, nil
}
