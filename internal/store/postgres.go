package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/voltlead/leadsync-cli/internal/db"
	"github.com/voltlead/leadsync-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS customers (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	aggregate     JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_activity TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sync_log (
	id           BIGSERIAL PRIMARY KEY,
	customer_id  TEXT NOT NULL,
	mode         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ,
	added        INT NOT NULL DEFAULT 0,
	removed      INT NOT NULL DEFAULT 0,
	error        TEXT
);

CREATE INDEX IF NOT EXISTS idx_customers_email ON customers(email);
CREATE INDEX IF NOT EXISTS idx_sync_log_customer ON sync_log(customer_id, started_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) UpsertCustomer(ctx context.Context, up CustomerUpsert) (*model.Customer, error) {
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
		return nil, eris.New("postgres: upsert requires an email or id")
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

func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	return s.loadByID(ctx, id)
}

func (s *PostgresStore) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return s.loadByEmail(ctx, email)
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT aggregate FROM customers ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list customers")
	}
	defer rows.Close()

	var customers []model.Customer
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "postgres: scan customer")
		}
		var c model.Customer
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal customer")
		}
		customers = append(customers, c)
	}
	return customers, eris.Wrap(rows.Err(), "postgres: list customers iterate")
}

func (s *PostgresStore) DeleteCustomer(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete customer %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "customer %s", id)
	}
	return nil
}

func (s *PostgresStore) AddLead(ctx context.Context, customerID string, lead model.Lead) (*model.Lead, error) {
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

func (s *PostgresStore) UpdateLead(ctx context.Context, customerID, leadID string, patch model.LeadPatch) (*model.Lead, error) {
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

func (s *PostgresStore) RemoveLead(ctx context.Context, customerID, leadID string) error {
	return s.mutate(ctx, customerID, func(c *model.Customer, now time.Time) error {
		return removeLead(c, leadID, now)
	})
}

func (s *PostgresStore) ReplaceLeads(ctx context.Context, customerID string, leads []model.Lead) ([]model.Lead, error) {
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

func (s *PostgresStore) AddOpenInvoice(ctx context.Context, customerID string, inv model.OpenInvoice) (*model.OpenInvoice, error) {
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

func (s *PostgresStore) ConvertInvoiceToOrder(ctx context.Context, customerID, invoiceID, paymentRef string) (*model.Order, error) {
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

func (s *PostgresStore) StartSync(ctx context.Context, customerID string, mode SyncMode) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sync_log (customer_id, mode, status, started_at) VALUES ($1, $2, 'running', $3) RETURNING id`,
		customerID, string(mode), time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: start sync for %s", customerID)
	}
	return id, nil
}

func (s *PostgresStore) CompleteSync(ctx context.Context, syncID int64, outcome SyncOutcome) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sync_log SET status = 'complete', completed_at = $1, added = $2, removed = $3 WHERE id = $4`,
		time.Now().UTC(), outcome.Added, outcome.Removed, syncID,
	)
	return eris.Wrapf(err, "postgres: complete sync %d", syncID)
}

func (s *PostgresStore) FailSync(ctx context.Context, syncID int64, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sync_log SET status = 'failed', completed_at = $1, error = $2 WHERE id = $3`,
		time.Now().UTC(), errMsg, syncID,
	)
	return eris.Wrapf(err, "postgres: fail sync %d", syncID)
}

func (s *PostgresStore) LastSyncSuccess(ctx context.Context, customerID string) (*time.Time, error) {
	var t time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT started_at FROM sync_log
		 WHERE customer_id = $1 AND status = 'complete'
		 ORDER BY started_at DESC LIMIT 1`,
		customerID,
	).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: last sync success for %s", customerID)
	}
	return &t, nil
}

func (s *PostgresStore) ListSyncLog(ctx context.Context, customerID string) ([]SyncEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, customer_id, mode, status, started_at, completed_at, added, removed, error
		 FROM sync_log WHERE customer_id = $1 ORDER BY started_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sync log")
	}
	defer rows.Close()

	var entries []SyncEntry
	for rows.Next() {
		var e SyncEntry
		var completedAt *time.Time
		var errStr *string
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Mode, &e.Status, &e.StartedAt, &completedAt, &e.Added, &e.Removed, &errStr); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sync entry")
		}
		e.CompletedAt = completedAt
		if errStr != nil {
			e.Error = *errStr
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list sync log iterate")
}

func (s *PostgresStore) mutate(ctx context.Context, customerID string, fn func(c *model.Customer, now time.Time) error) error {
	c, err := s.loadByID(ctx, customerID)
	if err != nil {
		return err
	}
	if err := fn(c, time.Now().UTC()); err != nil {
		return err
	}
	return s.save(ctx, c)
}

func (s *PostgresStore) loadByID(ctx context.Context, id string) (*model.Customer, error) {
	return s.loadWhere(ctx, `id = $1`, id)
}

func (s *PostgresStore) loadByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return s.loadWhere(ctx, `email = $1`, email)
}

func (s *PostgresStore) loadWhere(ctx context.Context, where string, arg any) (*model.Customer, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT aggregate FROM customers WHERE `+where, arg,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "customer %v", arg)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load customer %v", arg)
	}

	var c model.Customer
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal customer")
	}
	return &c, nil
}

func (s *PostgresStore) insert(ctx context.Context, c *model.Customer) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal customer")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO customers (id, email, aggregate, created_at, last_activity) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Email, raw, c.CreatedAt, c.LastActivity,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicateEmail, "email %s", c.Email)
		}
		return eris.Wrap(err, "postgres: insert customer")
	}
	return nil
}

func (s *PostgresStore) save(ctx context.Context, c *model.Customer) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal customer")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE customers SET email = $1, aggregate = $2, last_activity = $3 WHERE id = $4`,
		c.Email, raw, c.LastActivity, c.ID,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicateEmail, "email %s", c.Email)
		}
		return eris.Wrapf(err, "postgres: save customer %s", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "customer %s", c.ID)
	}
	return nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
