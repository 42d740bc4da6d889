package model

import "time"

// Order is a completed purchase derived from a paid invoice.
type Order struct {
	ID          string    `json:"id"`
	InvoiceID   string    `json:"invoice_id,omitempty"`
	Description string    `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	PaymentRef  string    `json:"payment_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// OpenInvoice is a pre-payment commercial record. It converts to an
// Order exactly once; an invoice must never exist simultaneously as
// both an open invoice and an order.
type OpenInvoice struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	DueDate     time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToOrder derives the order that replaces this invoice on conversion.
func (inv *OpenInvoice) ToOrder(orderID, paymentRef string, at time.Time) Order {
	return Order{
		ID:          orderID,
		InvoiceID:   inv.ID,
		Description: inv.Description,
		AmountCents: inv.AmountCents,
		PaymentRef:  paymentRef,
		CreatedAt:   at,
	}
}
