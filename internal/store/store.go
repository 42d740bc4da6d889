package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/voltlead/leadsync-cli/internal/model"
)

// Sentinel errors. Backends wrap these with context; callers check
// them with eris.Is.
var (
	// ErrNotFound is returned when a customer, lead or invoice id does
	// not resolve.
	ErrNotFound = eris.New("not found")

	// ErrDuplicateRow is returned when adding a lead whose sheet row
	// number is already taken within the customer's lead collection.
	ErrDuplicateRow = eris.New("duplicate sheet row")

	// ErrDuplicateEmail is returned when an email change would leave
	// two customers sharing one address.
	ErrDuplicateEmail = eris.New("duplicate email")
)

// CustomerUpsert holds the identity and fields for UpsertCustomer.
// When ID is set the customer is located by id (and Email may change);
// otherwise the customer is found or created by Email.
type CustomerUpsert struct {
	ID      string               `json:"id,omitempty"`
	Email   string               `json:"email"`
	Name    string               `json:"name,omitempty"`
	Phone   string               `json:"phone,omitempty"`
	Company string               `json:"company,omitempty"`
	Status  model.CustomerStatus `json:"status,omitempty"`
	Sheet   *model.SheetLink     `json:"sheet,omitempty"`
	Origin  model.ChangeOrigin   `json:"origin,omitempty"`
}

// SyncMode tags a sync-log entry with the reconciliation mode used.
type SyncMode string

const (
	SyncModeSmart SyncMode = "smart"
	SyncModeFull  SyncMode = "full"
)

// SyncEntry is a row of the sync log.
type SyncEntry struct {
	ID          int64      `json:"id"`
	CustomerID  string     `json:"customer_id"`
	Mode        SyncMode   `json:"mode"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Added       int        `json:"added"`
	Removed     int        `json:"removed"`
	Error       string     `json:"error,omitempty"`
}

// SyncOutcome holds the counters recorded when a sync completes.
type SyncOutcome struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Store is the persistence interface for customer aggregates. All
// reads return value-semantics snapshots: mutating a returned customer
// has no effect until it goes back through a store call. Every
// mutating operation persists the full aggregate before returning, and
// a failed write leaves the prior state unchanged.
type Store interface {
	// Customers
	UpsertCustomer(ctx context.Context, up CustomerUpsert) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	// Leads
	AddLead(ctx context.Context, customerID string, lead model.Lead) (*model.Lead, error)
	UpdateLead(ctx context.Context, customerID, leadID string, patch model.LeadPatch) (*model.Lead, error)
	RemoveLead(ctx context.Context, customerID, leadID string) error
	ReplaceLeads(ctx context.Context, customerID string, leads []model.Lead) ([]model.Lead, error)

	// Commercial records
	AddOpenInvoice(ctx context.Context, customerID string, inv model.OpenInvoice) (*model.OpenInvoice, error)
	ConvertInvoiceToOrder(ctx context.Context, customerID, invoiceID, paymentRef string) (*model.Order, error)

	// Sync log
	StartSync(ctx context.Context, customerID string, mode SyncMode) (int64, error)
	CompleteSync(ctx context.Context, syncID int64, outcome SyncOutcome) error
	FailSync(ctx context.Context, syncID int64, errMsg string) error
	LastSyncSuccess(ctx context.Context, customerID string) (*time.Time, error)
	ListSyncLog(ctx context.Context, customerID string) ([]SyncEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
