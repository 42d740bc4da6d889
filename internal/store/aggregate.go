package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/voltlead/leadsync-cli/internal/model"
)

// This file holds the aggregate mutation logic shared by the SQLite
// and Postgres backends. Each helper mutates a loaded snapshot; the
// backend then persists the whole aggregate in one write, so a failed
// write never leaves a half-applied customer behind.

// applyUpsert diffs the upsert fields against the customer and records
// every change in DataHistory before applying it. Returns true when
// anything changed.
func applyUpsert(c *model.Customer, up CustomerUpsert, now time.Time) bool {
	origin := up.Origin
	if origin == "" {
		origin = model.ChangeOriginManual
	}

	changed := false
	record := func(field, oldVal, newVal string) {
		c.DataHistory = append(c.DataHistory, model.DataChange{
			Field:     field,
			OldValue:  oldVal,
			NewValue:  newVal,
			ChangedAt: now,
			Origin:    origin,
		})
		changed = true
	}

	if up.Email != "" && up.Email != c.Email {
		record("email", c.Email, up.Email)
		c.Email = up.Email
	}
	if up.Name != "" && up.Name != c.Name {
		record("name", c.Name, up.Name)
		c.Name = up.Name
	}
	if up.Phone != "" && up.Phone != c.Phone {
		record("phone", c.Phone, up.Phone)
		c.Phone = up.Phone
	}
	if up.Company != "" && up.Company != c.Company {
		record("company", c.Company, up.Company)
		c.Company = up.Company
	}
	if up.Status != "" && up.Status != c.Status {
		record("status", string(c.Status), string(up.Status))
		c.Status = up.Status
	}
	if up.Sheet != nil {
		oldID := ""
		if c.Sheet != nil {
			oldID = c.Sheet.SheetID
		}
		if up.Sheet.SheetID != oldID {
			record("sheet", oldID, up.Sheet.SheetID)
		}
		c.Sheet = up.Sheet
		changed = true
	}

	if changed {
		c.Touch(now)
	}
	return changed
}

// newCustomer builds a fresh aggregate for a create-by-email upsert.
func newCustomer(up CustomerUpsert, now time.Time) model.Customer {
	status := up.Status
	if status == "" {
		status = model.CustomerStatusLead
	}
	return model.Customer{
		ID:           uuid.New().String(),
		Email:        up.Email,
		Name:         up.Name,
		Phone:        up.Phone,
		Company:      up.Company,
		Status:       status,
		Sheet:        up.Sheet,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// addLead appends a lead to the aggregate, enforcing sheet-row
// uniqueness and stamping timestamps.
func addLead(c *model.Customer, lead model.Lead, now time.Time) (*model.Lead, error) {
	if lead.SheetRowNumber != 0 && c.LeadBySheetRow(lead.SheetRowNumber) != nil {
		return nil, eris.Wrapf(ErrDuplicateRow, "lead row %d on customer %s", lead.SheetRowNumber, c.ID)
	}

	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.Status == "" {
		lead.Status = model.StatusNew
	}
	if lead.Source == "" {
		lead.Source = model.SourceManual
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	c.Leads = append(c.Leads, lead)
	c.Touch(now)
	return &c.Leads[len(c.Leads)-1], nil
}

// updateLead applies a patch to the lead with the given id.
func updateLead(c *model.Customer, leadID string, patch model.LeadPatch, now time.Time) (*model.Lead, error) {
	lead := c.LeadByID(leadID)
	if lead == nil {
		return nil, eris.Wrapf(ErrNotFound, "lead %s on customer %s", leadID, c.ID)
	}
	patch.Apply(lead)
	lead.UpdatedAt = now
	c.Touch(now)
	return lead, nil
}

// removeLead deletes the lead with the given id.
func removeLead(c *model.Customer, leadID string, now time.Time) error {
	for i := range c.Leads {
		if c.Leads[i].ID == leadID {
			c.Leads = append(c.Leads[:i], c.Leads[i+1:]...)
			c.Touch(now)
			return nil
		}
	}
	return eris.Wrapf(ErrNotFound, "lead %s on customer %s", leadID, c.ID)
}

// replaceLeads swaps the entire lead collection for a fresh one. Used
// by full resync: the replacement set must already be in hand, so the
// aggregate is never observable in a cleared-but-not-refilled state.
func replaceLeads(c *model.Customer, leads []model.Lead, now time.Time) []model.Lead {
	fresh := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.ID == "" {
			lead.ID = uuid.New().String()
		}
		if lead.Status == "" {
			lead.Status = model.StatusNew
		}
		if lead.Source == "" {
			lead.Source = model.SourceImport
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = now
		}
		lead.UpdatedAt = now
		fresh = append(fresh, lead)
	}
	c.Leads = fresh
	c.Touch(now)

	out := make([]model.Lead, len(fresh))
	copy(out, fresh)
	return out
}

// addOpenInvoice appends an open invoice.
func addOpenInvoice(c *model.Customer, inv model.OpenInvoice, now time.Time) *model.OpenInvoice {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	c.OpenInvoices = append(c.OpenInvoices, inv)
	c.Touch(now)
	return &c.OpenInvoices[len(c.OpenInvoices)-1]
}

// convertInvoice removes the open invoice and appends the derived
// order in the same aggregate mutation. Persisted as one write, the
// invoice and order can never be observed to coexist or both vanish.
func convertInvoice(c *model.Customer, invoiceID, paymentRef string, now time.Time) (*model.Order, error) {
	for i := range c.OpenInvoices {
		if c.OpenInvoices[i].ID != invoiceID {
			continue
		}
		order := c.OpenInvoices[i].ToOrder(uuid.New().String(), paymentRef, now)
		c.OpenInvoices = append(c.OpenInvoices[:i], c.OpenInvoices[i+1:]...)
		c.Orders = append(c.Orders, order)
		c.Touch(now)
		return &c.Orders[len(c.Orders)-1], nil
	}
	return nil, eris.Wrapf(ErrNotFound, "invoice %s on customer %s", invoiceID, c.ID)
}
