package models

import "time"

// Event is an inbound booking/customer event after enrichment. It is transient:
// nothing beyond what the scheduler store and ledger snapshot is persisted.
type Event struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	ServiceTypeID string    `json:"service_type_id"`
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerCode  string    `json:"customer_code"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	Confirmed     bool      `json:"confirmed"`
	Unconfirmed   bool      `json:"unconfirmed"`
}
