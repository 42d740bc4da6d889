package model

import (
	"time"
)

// CustomerStatus represents the lifecycle state of a customer account.
type CustomerStatus string

const (
	CustomerStatusLead      CustomerStatus = "lead"
	CustomerStatusContacted CustomerStatus = "contacted"
	CustomerStatusCustomer  CustomerStatus = "customer"
	CustomerStatusInactive  CustomerStatus = "inactive"
)

// ChangeOrigin describes what produced a DataChange entry.
type ChangeOrigin string

const (
	ChangeOriginManual ChangeOrigin = "manual"
	ChangeOriginImport ChangeOrigin = "import"
	ChangeOriginSync   ChangeOrigin = "sync"
	ChangeOriginSystem ChangeOrigin = "system"
)

// DataChange is a single append-only audit entry on a customer.
// Entries are never mutated or removed once recorded.
type DataChange struct {
	Field     string       `json:"field"`
	OldValue  string       `json:"old_value"`
	NewValue  string       `json:"new_value"`
	ChangedAt time.Time    `json:"changed_at"`
	Origin    ChangeOrigin `json:"origin"`
}

// SheetLink points a customer at their external spreadsheet.
type SheetLink struct {
	SheetID string `json:"sheet_id"`
	URL     string `json:"url,omitempty"`
}

// Customer is the identity unit for a business account. Email is the
// primary lookup key and is unique across all customers. The customer
// exclusively owns its leads, orders and open invoices.
type Customer struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Company      string         `json:"company,omitempty"`
	Status       CustomerStatus `json:"status"`
	Sheet        *SheetLink     `json:"sheet,omitempty"`
	Leads        []Lead         `json:"leads,omitempty"`
	Orders       []Order        `json:"orders,omitempty"`
	OpenInvoices []OpenInvoice  `json:"open_invoices,omitempty"`
	DataHistory  []DataChange   `json:"data_history,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
}

// Touch advances LastActivity, keeping it monotonically non-decreasing.
func (c *Customer) Touch(at time.Time) {
	if at.After(c.LastActivity) {
		c.LastActivity = at
	}
}

// LeadByID returns the lead with the given id, or nil.
func (c *Customer) LeadByID(id string) *Lead {
	for i := range c.Leads {
		if c.Leads[i].ID == id {
			return &c.Leads[i]
		}
	}
	return nil
}

// LeadBySheetRow returns the lead correlated with the given external
// sheet row, or nil. Manual leads carry no row number and never match.
func (c *Customer) LeadBySheetRow(rowNum int) *Lead {
	for i := range c.Leads {
		if c.Leads[i].SheetRowNumber != 0 && c.Leads[i].SheetRowNumber == rowNum {
			return &c.Leads[i]
		}
	}
	return nil
}
