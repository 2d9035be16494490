package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eunits/bookflow/pkg/booking"
	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/persistence/file"
)

type fakeCatalog struct {
	eventTypes []booking.EventType
	err        error
}

func (f *fakeCatalog) EventTypesByCompany(_ context.Context, _ string) ([]booking.EventType, error) {
	return f.eventTypes, f.err
}

func validEmailWorkflow() *models.Workflow {
	return &models.Workflow{
		CompanyID: "company-1",
		Trigger:   models.TriggerBookingCreated,
		Action:    models.ActionEmail,
		Settings: models.Settings{
			ServiceTypes: []string{"svc1"},
			Email: &models.EmailTemplate{
				Subject:    "Your booking",
				Body:       "<p>Hi {{customerName}}</p>",
				Recipients: "{{customerEmail}}",
			},
		},
		Name: "Confirmation email",
	}
}

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)

	created, err := svc.Create(context.Background(), validEmailWorkflow())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := svc.FetchByID(context.Background(), created.ID, "company-1")
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
}

func TestCreate_RejectsShortName(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)

	wf := validEmailWorkflow()
	wf.Name = "ab"

	_, err := svc.Create(context.Background(), wf)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestCreate_RejectsUnknownTrigger(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)

	wf := validEmailWorkflow()
	wf.Trigger = models.TriggerType("ON_FULL_MOON")

	_, err := svc.Create(context.Background(), wf)
	require.ErrorIs(t, err, ErrUnknownTrigger)
	assert.True(t, IsValidationError(err))
}

func TestCreate_RejectsMissingChannelTemplate(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)

	wf := validEmailWorkflow()
	wf.Settings.Email = nil

	_, err := svc.Create(context.Background(), wf)
	require.ErrorIs(t, err, ErrInvalidSettings)
}

func TestCreate_RejectsEmptyServiceTypeFilter(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)

	wf := validEmailWorkflow()
	wf.Settings.ServiceTypes = nil

	_, err := svc.Create(context.Background(), wf)
	require.ErrorIs(t, err, ErrInvalidSettings)
}

func TestCreate_DeferredTriggerRequiresInterval(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)

	wf := validEmailWorkflow()
	wf.Trigger = models.TriggerTimeBeforeBooking

	_, err := svc.Create(context.Background(), wf)
	require.ErrorIs(t, err, ErrIntervalRequired)

	wf.Settings.Interval = &models.Interval{Hours: 2}
	_, err = svc.Create(context.Background(), wf)
	require.NoError(t, err)
}

func TestCreate_RejectsServiceTypeOutsideCatalog(t *testing.T) {
	catalog := &fakeCatalog{eventTypes: []booking.EventType{{ID: "svc1", Title: "Golf hour"}}}
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), catalog)
	ctx := context.Background()

	_, err := svc.Create(ctx, validEmailWorkflow())
	require.NoError(t, err)

	wf := validEmailWorkflow()
	wf.Settings.ServiceTypes = []string{"svc1", "svc-unknown"}

	_, err = svc.Create(ctx, wf)
	require.ErrorIs(t, err, ErrInvalidSettings)
	assert.True(t, IsValidationError(err))
}

func TestUpdateSettings_ChecksCatalog(t *testing.T) {
	catalog := &fakeCatalog{eventTypes: []booking.EventType{{ID: "svc1"}, {ID: "svc2"}}}
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), catalog)
	ctx := context.Background()

	created, err := svc.Create(ctx, validEmailWorkflow())
	require.NoError(t, err)

	updated := validEmailWorkflow().Settings
	updated.ServiceTypes = []string{"svc-retired"}

	_, err = svc.UpdateSettings(ctx, created.ID, "company-1", updated)
	require.ErrorIs(t, err, ErrInvalidSettings)

	updated.ServiceTypes = []string{"svc2"}
	result, err := svc.UpdateSettings(ctx, created.ID, "company-1", updated)
	require.NoError(t, err)
	assert.Equal(t, []string{"svc2"}, result.Settings.ServiceTypes)
}

func TestUpdateSettings_ValidatesAgainstStoredAction(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validEmailWorkflow())
	require.NoError(t, err)

	// Settings shaped for the SMS channel do not fit an email workflow.
	smsSettings := models.Settings{
		ServiceTypes: []string{"svc1"},
		SMS:          &models.SMSTemplate{Body: "hi", Recipients: "{{customerPhone}}"},
	}
	_, err = svc.UpdateSettings(ctx, created.ID, "company-1", smsSettings)
	require.ErrorIs(t, err, ErrInvalidSettings)

	updated := validEmailWorkflow().Settings
	updated.Email.Subject = "Updated subject"

	result, err := svc.UpdateSettings(ctx, created.ID, "company-1", updated)
	require.NoError(t, err)
	assert.Equal(t, "Updated subject", result.Settings.Email.Subject)
}

func TestUpdateSettings_WrongCompanyIsNotFound(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validEmailWorkflow())
	require.NoError(t, err)

	_, err = svc.UpdateSettings(ctx, created.ID, "company-2", created.Settings)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestDelete_RemovesWorkflow(t *testing.T) {
	svc := NewWorkflow(file.NewPersistence(t.TempDir()), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validEmailWorkflow())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID, "company-1"))

	_, err = svc.FetchByID(ctx, created.ID, "company-1")
	require.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestScheduler_CancelScopedByCompany(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	svc := NewScheduler(store)
	ctx := context.Background()

	wf := validEmailWorkflow()
	wf.ID = "wf-1"
	event := &models.Event{ID: "ev-1", CompanyID: "company-1"}

	task, err := models.NewScheduledTask(wf, event, event.CreatedAt)
	require.NoError(t, err)
	task.CompanyID = "company-1"

	taskID, err := store.EnqueueTask(ctx, task)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Cancel(ctx, taskID, "company-2"), ErrTaskNotFound)

	require.NoError(t, svc.Cancel(ctx, taskID, "company-1"))

	tasks, err := svc.Tasks(ctx, "company-1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
