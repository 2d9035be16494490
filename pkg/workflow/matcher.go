// Package workflow implements the automation engine: matching inbound events
// against registered workflows, dispatching immediate actions and scheduling
// deferred ones.
package workflow

import (
	"log/slog"

	"github.com/eunits/bookflow/pkg/models"
)

// Matcher selects the workflows an inbound event activates.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher creates a new trigger matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{logger: logger.With("module", "trigger_matcher")}
}

// MatchResult buckets matched workflows by when their action runs. Workflows
// within a bucket carry no ordering guarantee; they are processed independently.
type MatchResult struct {
	Immediate      []*models.Workflow
	DeferredBefore []*models.Workflow
	DeferredAfter  []*models.Workflow
}

// Total returns the number of matched workflows across all buckets.
func (r *MatchResult) Total() int {
	return len(r.Immediate) + len(r.DeferredBefore) + len(r.DeferredAfter)
}

// Match filters the given workflows down to those activated by the event:
// same company, service-type filter containing the event's service type. A
// workflow with an empty filter never matches; that is a skip with a warning,
// not an error.
func (m *Matcher) Match(event *models.Event, workflows []*models.Workflow) *MatchResult {
	result := &MatchResult{}

	for _, wf := range workflows {
		if wf.CompanyID != event.CompanyID {
			continue
		}

		if !m.matchesServiceType(wf, event) {
			continue
		}

		switch wf.Trigger {
		case models.TriggerTimeBeforeBooking:
			result.DeferredBefore = append(result.DeferredBefore, wf)
		case models.TriggerTimeAfterBooking:
			result.DeferredAfter = append(result.DeferredAfter, wf)
		default:
			result.Immediate = append(result.Immediate, wf)
		}
	}

	m.logger.Info("Completed trigger matching",
		"event_id", event.ID,
		"company_id", event.CompanyID,
		"matches_found", result.Total())

	return result
}

func (m *Matcher) matchesServiceType(wf *models.Workflow, event *models.Event) bool {
	if event.ServiceTypeID == "" {
		m.logger.Warn("Event has no service type", "event_id", event.ID)

		return false
	}

	// Fail closed: a workflow without a service-type filter never matches.
	if len(wf.Settings.ServiceTypes) == 0 {
		m.logger.Warn("Workflow has no service-type filter, skipping",
			"workflow_id", wf.ID, "workflow_name", wf.Name)

		return false
	}

	return wf.Settings.HasServiceType(event.ServiceTypeID)
}
