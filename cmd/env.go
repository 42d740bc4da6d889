package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/voltlead/leadsync-cli/internal/model"
	"github.com/voltlead/leadsync-cli/internal/resilience"
	"github.com/voltlead/leadsync-cli/internal/source"
	"github.com/voltlead/leadsync-cli/internal/store"
	syncpkg "github.com/voltlead/leadsync-cli/internal/sync"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadsync.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSource() source.Source {
	var src source.Source = source.NewFileSource(cfg.Sheet.SheetName)

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("sheet read")
	src = source.NewRetrying(src, retryCfg)

	if cfg.Sheet.RateLimit > 0 {
		src = source.NewRateLimited(src, cfg.Sheet.RateLimit)
	}
	return src
}

func initEngine(st store.Store) *syncpkg.Engine {
	return syncpkg.New(initSource(), st, cfg.Sheet.HeaderRow)
}

// resolveCustomer accepts either a customer id or an email address.
func resolveCustomer(ctx context.Context, st store.Store, key string) (*model.Customer, error) {
	if strings.Contains(key, "@") {
		return st.GetCustomerByEmail(ctx, key)
	}
	return st.GetCustomer(ctx, key)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
