package models

import "time"

// Settings is the per-workflow configuration blob. It is a tagged union keyed
// by the workflow's action: exactly one of Email, SMS or Webhook is expected
// to be set. The shape is validated on create/update, not on every access.
type Settings struct {
	// ServiceTypes filters which bookable service categories the workflow
	// cares about. A workflow with an empty filter never matches.
	ServiceTypes []string `json:"serviceType,omitempty"`

	// Interval is the time offset for deferred triggers.
	Interval *Interval `json:"interval,omitempty"`

	Email   *EmailTemplate   `json:"emailTemplate,omitempty"`
	SMS     *SMSTemplate     `json:"smsTemplate,omitempty"`
	Webhook *WebhookTemplate `json:"webhookTemplate,omitempty"`
}

// HasServiceType reports whether the given service type id is part of the
// workflow's filter.
func (s Settings) HasServiceType(id string) bool {
	for _, st := range s.ServiceTypes {
		if st == id {
			return true
		}
	}

	return false
}

// Interval is a day/hour/minute offset applied to a trigger anchor time.
type Interval struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Offset returns the interval as a duration.
func (i Interval) Offset() time.Duration {
	return time.Duration(i.Days)*24*time.Hour +
		time.Duration(i.Hours)*time.Hour +
		time.Duration(i.Minutes)*time.Minute
}

// EmailTemplate configures the email channel. Recipients is a comma-separated
// list; each entry may itself be a placeholder such as {{customerEmail}}.
type EmailTemplate struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Recipients string `json:"recipients"`
}

// SMSTemplate configures the SMS channel. The body is rendered and stripped of
// HTML markup before sending.
type SMSTemplate struct {
	Body       string `json:"body"`
	Recipients string `json:"recipients"`
}

// WebhookTemplate configures the webhook channel. The payload shape is fixed;
// nothing is configurable per workflow yet.
type WebhookTemplate struct{}
