package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/voltlead/leadsync-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Customer
// aggregates are stored as one JSON document per row, so every
// mutation is a single-row write.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS customers (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	aggregate     TEXT NOT NULL,
	created_at    DATETIME NOT NULL,
	last_activity DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_id  TEXT NOT NULL,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	added        INTEGER NOT NULL DEFAULT 0,
	removed      INTEGER NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_customers_email ON customers(email);
CREATE INDEX IF NOT EXISTS idx_sync_log_customer ON sync_log(customer_id, started_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCustomer(ctx context.Context, up CustomerUpsert) (*model.Customer, error) {
	now := time.Now().UTC()

	if up.ID != "" {
		c, err := s.loadByID(ctx, up.ID)
		if err != nil {
			return nil, err
		}
		applyUpsert(c, up, now)
		if err := s.save(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	}

	if up.Email == "" {
		return nil, eris.New("sqlite: upsert requires an email or id")
	}

	c, err := s.loadByEmail(ctx, up.Email)
	if eris.Is(err, ErrNotFound) {
		fresh := newCustomer(up, now)
		if err := s.insert(ctx, &fresh); err != nil {
			return nil, err
		}
		return &fresh, nil
	}
	if err != nil {
		return nil, err
	}

	applyUpsert(c, up, now)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SQLiteStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return s.loadByID(ctx, id)
}

func (s *SQLiteStore) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return s.loadByEmail(ctx, email)
}

func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT aggregate FROM customers ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list customers")
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan customer")
		}
		var c model.Customer
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal customer")
		}
		customers = append(customers, c)
	}
	return customers, eris.Wrap(rows.Err(), "sqlite: list customers iterate")
}

func (s *SQLiteStore) DeleteCustomer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete customer %s", id)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "customer %s", id)
	}
	return nil
}

func (s *SQLiteStore) AddLead(ctx context.Context, customerID string, lead model.Lead) (*model.Lead, error) {
	var added *model.Lead
	err := s.mutate(ctx, customerID, func(c *model.Customer, now time.Time) error {
		var err error
		added, err = addLead(c, lead, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := *added
	return &out, nil
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, customerID, leadID string, patch model.LeadPatch) (*model.Lead, error) {
	var updated *model.Lead
	err := s.mutate(ctx, customerID, func(c *model.Customer, now time.Time) error {
		var err error
		updated, err = updateLead(c, leadID, patch, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := *updated
	return &out, nil
}

func (s *SQLiteStore) RemoveLead(ctx context.Context, customerID, leadID string) error {
	return s.mutate(ctx, customerID, func(c *model.Customer, now time.Time) error {
		return removeLead(c, leadID, now)
	})
}

func (s *SQLiteStore) ReplaceLeads(ctx context.Context, customerID string, leads []model.Lead) ([]model.Lead, error) {
	var out []model.Lead
	err := s.mutate(ctx, customerID, func(c *model.Customer, now time.Time) error {
		out = replaceLeads(c, leads, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) AddOpenInvoice(ctx context.Context, customerID string, inv model.OpenInvoice) (*model.OpenInvoice, error) {
	var added *model.OpenInvoice
	err := s.mutate(ctx, customerID, func(c *model.Customer, now time.Time) error {
		added = addOpenInvoice(c, inv, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := *added
	return &out, nil
}

func (s *SQLiteStore) ConvertInvoiceToOrder(ctx context.Context, customerID, invoiceID, paymentRef string) (*model.Order, error) {
	var order *model.Order
	err := s.mutate(ctx, customerID, func(c *model.Customer, now time.Time) error {
		var err error
		order, err = convertInvoice(c, invoiceID, paymentRef, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := *order
	return &out, nil
}

func (s *SQLiteStore) StartSync(ctx context.Context, customerID string, mode SyncMode) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_log (customer_id, mode, status, started_at) VALUES (?, ?, 'running', ?)`,
		customerID, string(mode), time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: start sync for %s", customerID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: sync id")
	}
	return id, nil
}

func (s *SQLiteStore) CompleteSync(ctx context.Context, syncID int64, outcome SyncOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_log SET status = 'complete', completed_at = ?, added = ?, removed = ? WHERE id = ?`,
		time.Now().UTC(), outcome.Added, outcome.Removed, syncID,
	)
	return eris.Wrapf(err, "sqlite: complete sync %d", syncID)
}

func (s *SQLiteStore) FailSync(ctx context.Context, syncID int64, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sync_log SET status = 'failed', completed_at = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), errMsg, syncID,
	)
	return eris.Wrapf(err, "sqlite: fail sync %d", syncID)
}

func (s *SQLiteStore) LastSyncSuccess(ctx context.Context, customerID string) (*time.Time, error) {
	var t time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at FROM sync_log
		 WHERE customer_id = ? AND status = 'complete'
		 ORDER BY started_at DESC LIMIT 1`,
		customerID,
	).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: last sync success for %s", customerID)
	}
	return &t, nil
}

func (s *SQLiteStore) ListSyncLog(ctx context.Context, customerID string) ([]SyncEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, mode, status, started_at, completed_at, added, removed, error
		 FROM sync_log WHERE customer_id = ? ORDER BY started_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sync log")
	}
	defer rows.Close()

	var entries []SyncEntry
	for rows.Next() {
		var e SyncEntry
		var completedAt *time.Time
		var errStr *string
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Mode, &e.Status, &e.StartedAt, &completedAt, &e.Added, &e.Removed, &errStr); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sync entry")
		}
		e.CompletedAt = completedAt
		if errStr != nil {
			e.Error = *errStr
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list sync log iterate")
}

// mutate loads the aggregate, applies fn, and persists the result.
// Any error leaves the stored aggregate untouched.
func (s *SQLiteStore) mutate(ctx context.Context, customerID string, fn func(c *model.Customer, now time.Time) error) error {
	c, err := s.loadByID(ctx, customerID)
	if err != nil {
		return err
	}
	if err := fn(c, time.Now().UTC()); err != nil {
		return err
	}
	return s.save(ctx, c)
}

func (s *SQLiteStore) loadByID(ctx context.Context, id string) (*model.Customer, error) {
	return s.loadWhere(ctx, `id = ?`, id)
}

func (s *SQLiteStore) loadByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return s.loadWhere(ctx, `email = ?`, email)
}

func (s *SQLiteStore) loadWhere(ctx context.Context, where string, arg any) (*model.Customer, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT aggregate FROM customers WHERE `+where, arg,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "customer %v", arg)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load customer %v", arg)
	}

	var c model.Customer
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal customer")
	}
	return &c, nil
}

func (s *SQLiteStore) insert(ctx context.Context, c *model.Customer) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal customer")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO customers (id, email, aggregate, created_at, last_activity) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Email, string(raw), c.CreatedAt, c.LastActivity,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicateEmail, "email %s", c.Email)
		}
		return eris.Wrap(err, "sqlite: insert customer")
	}
	return nil
}

func (s *SQLiteStore) save(ctx context.Context, c *model.Customer) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal customer")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET email = ?, aggregate = ?, last_activity = ? WHERE id = ?`,
		c.Email, string(raw), c.LastActivity, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicateEmail, "email %s", c.Email)
		}
		return eris.Wrapf(err, "sqlite: save customer %s", c.ID)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "customer %s", c.ID)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
