package dispatch

import (
	"encoding/json"
	"strconv"

	"github.com/eunits/bookflow/pkg/models"
	"github.com/eunits/bookflow/pkg/protocol"
)

// IntegrationMeta is the fixed metadata stamped onto every outbound webhook
// payload. The receiving system uses it to route the booking.
type IntegrationMeta struct {
	Connection  string
	Company     string
	Integration string
	CompanyID   string
}

// webhookPayload builds the fixed-shape booking payload the downstream access
// system expects. Field names are part of the wire contract.
func (d *Dispatcher) webhookPayload(event *models.Event) map[string]any {
	return map[string]any{
		"bookingStartsAtTime":       strconv.FormatInt(event.StartsAt.Unix(), 10),
		"bookingEndsAtTime":         strconv.FormatInt(event.EndsAt.Unix(), 10),
		"bookingStartDate":          event.StartsAt.UTC().Format("2006/01/02"),
		"bookingEndDate":            event.EndsAt.UTC().Format("2006/01/02"),
		"bookingCode":               event.CustomerCode,
		"bookingCustomerName":       event.CustomerName,
		"bookingCustomerPhone":      event.CustomerPhone,
		"bookingCompanyEmail":       event.CustomerEmail,
		"Connection":                d.meta.Connection,
		"status":                    "notdone",
		"company":                   d.meta.Company,
		"timestamp":                 d.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"Integration":               d.meta.Integration,
		"company_ID":                d.meta.CompanyID,
		"eConformationText":         "false",
		"bookingCustomerPhoneLocal": nil,
	}
}

// webhookResult is the nested result object expected in the endpoint's response.
type webhookResult struct {
	BookingCode          string `json:"bookingCode"`
	BookingCustomerName  string `json:"bookingCustomerName"`
	BookingCustomerPhone string `json:"bookingCustomerPhone"`
	BookingCompanyEmail  string `json:"bookingCompanyEmail"`
	Timestamp            string `json:"timestamp"`
}

// parseWebhookResponse extracts the loggable fields from the endpoint's
// response, falling back to an error marker when the shape is unexpected.
func parseWebhookResponse(sendResult protocol.SendResult) map[string]any {
	var envelope struct {
		Result *webhookResult `json:"result"`
	}

	if err := json.Unmarshal(sendResult.Response, &envelope); err != nil || envelope.Result == nil {
		details := map[string]any{
			"error": "invalid response format or missing result in the webhook response",
		}
		if sendResult.Detail != "" {
			details["detail"] = sendResult.Detail
		}

		return details
	}

	return map[string]any{
		"bookingCode":          envelope.Result.BookingCode,
		"bookingCustomerName":  envelope.Result.BookingCustomerName,
		"bookingCustomerPhone": envelope.Result.BookingCustomerPhone,
		"bookingCompanyEmail":  envelope.Result.BookingCompanyEmail,
		"timestamp":            envelope.Result.Timestamp,
	}
}
