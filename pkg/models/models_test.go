package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerTypeDeferred(t *testing.T) {
	assert.True(t, TriggerTimeBeforeBooking.Deferred())
	assert.True(t, TriggerTimeAfterBooking.Deferred())
	assert.False(t, TriggerBookingCreated.Deferred())
	assert.False(t, TriggerCustomerCreated.Deferred())
}

func TestIntervalOffset(t *testing.T) {
	interval := Interval{Days: 1, Hours: 2, Minutes: 30}
	assert.Equal(t, 26*time.Hour+30*time.Minute, interval.Offset())

	assert.Zero(t, Interval{}.Offset())
}

func TestSettingsHasServiceType(t *testing.T) {
	settings := Settings{ServiceTypes: []string{"svc1", "svc2"}}

	assert.True(t, settings.HasServiceType("svc1"))
	assert.False(t, settings.HasServiceType("svc3"))
	assert.False(t, Settings{}.HasServiceType("svc1"))
}

func TestScheduledTaskSnapshotsSurviveLiveEdits(t *testing.T) {
	wf := &Workflow{
		ID:        "wf-1",
		CompanyID: "company-1",
		Trigger:   TriggerTimeBeforeBooking,
		Action:    ActionSMS,
		Settings: Settings{
			ServiceTypes: []string{"svc1"},
			SMS:          &SMSTemplate{Body: "original", Recipients: "{{customerPhone}}"},
		},
		Name: "Reminder",
	}
	event := &Event{ID: "ev-1", CompanyID: "company-1"}

	task, err := NewScheduledTask(wf, event, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "company-1", task.CompanyID)

	// Editing the live workflow must not leak into the frozen snapshot.
	wf.Settings.SMS.Body = "edited"

	thawedWf, thawedEvent, err := task.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, "original", thawedWf.Settings.SMS.Body)
	assert.Equal(t, "ev-1", thawedEvent.ID)
}
