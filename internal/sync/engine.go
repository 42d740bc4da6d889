// Package sync reconciles a customer's stored leads with the rows of
// their linked spreadsheet.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voltlead/leadsync-cli/internal/model"
	"github.com/voltlead/leadsync-cli/internal/sheet"
	"github.com/voltlead/leadsync-cli/internal/source"
	"github.com/voltlead/leadsync-cli/internal/store"
)

// OpFailure records a single lead operation that failed during a sync.
// Failures never abort the run; the rest of the diff still applies.
type OpFailure struct {
	SheetRowNumber int    `json:"sheet_row_number"`
	Op             string `json:"op"`
	Err            string `json:"error"`
}

// Result summarizes one sync run.
type Result struct {
	CustomerID string         `json:"customer_id"`
	Mode       store.SyncMode `json:"mode"`
	Added      int            `json:"added"`
	Removed    int            `json:"removed"`
	Skipped    int            `json:"skipped"`
	Failures   []OpFailure    `json:"failures,omitempty"`
	Duration   time.Duration  `json:"duration"`
}

// Engine runs lead reconciliation between a Source and a Store.
type Engine struct {
	source    source.Source
	store     store.Store
	headerRow int
}

// New creates an Engine. headerRow is the 0-based index of the header
// row in source sheets.
func New(src source.Source, st store.Store, headerRow int) *Engine {
	return &Engine{source: src, store: st, headerRow: headerRow}
}

// Smart diffs the sheet against the stored leads and applies only the
// difference: rows present in the sheet but not in the store are added,
// stored sheet-linked leads whose row vanished are removed. Leads
// without a sheet row number were created by hand and are never
// touched. Running Smart twice against an unchanged sheet is a no-op.
func (e *Engine) Smart(ctx context.Context, customerID, ref string) (*Result, error) {
	return e.run(ctx, customerID, ref, store.SyncModeSmart, e.smartDiff)
}

// Full rebuilds the sheet-linked lead collection from scratch. The
// sheet is read and parsed first; only once the full replacement set is
// in hand does the store swap collections, so a failed read can never
// leave the customer with fewer leads than before.
func (e *Engine) Full(ctx context.Context, customerID, ref string) (*Result, error) {
	return e.run(ctx, customerID, ref, store.SyncModeFull, e.fullSwap)
}

type applyFunc func(ctx context.Context, c *model.Customer, parsed []model.Lead, res *Result) error

func (e *Engine) run(ctx context.Context, customerID, ref string, mode store.SyncMode, apply applyFunc) (*Result, error) {
	log := zap.L().With(
		zap.String("component", "sync"),
		zap.String("customer_id", customerID),
		zap.String("mode", string(mode)),
	)
	start := time.Now()

	c, err := e.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	syncID, err := e.store.StartSync(ctx, customerID, mode)
	if err != nil {
		return nil, err
	}

	rows, err := e.source.ReadRows(ctx, ref)
	if err != nil {
		e.fail(ctx, log, syncID, err)
		return nil, eris.Wrapf(err, "sync: read sheet for customer %s", customerID)
	}

	parsed := sheet.ParseRows(rows, e.headerRow)

	res := &Result{CustomerID: customerID, Mode: mode}
	if err := apply(ctx, c, parsed, res); err != nil {
		e.fail(ctx, log, syncID, err)
		return nil, err
	}
	res.Duration = time.Since(start)

	outcome := store.SyncOutcome{Added: res.Added, Removed: res.Removed}
	if err := e.store.CompleteSync(ctx, syncID, outcome); err != nil {
		return nil, err
	}

	log.Info("sync complete",
		zap.Int("added", res.Added),
		zap.Int("removed", res.Removed),
		zap.Int("skipped", res.Skipped),
		zap.Int("failures", len(res.Failures)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (e *Engine) fail(ctx context.Context, log *zap.Logger, syncID int64, cause error) {
	if err := e.store.FailSync(ctx, syncID, cause.Error()); err != nil {
		log.Warn("could not record sync failure", zap.Error(err))
	}
}

// smartDiff applies the set difference between sheet rows and stored
// sheet-linked leads.
func (e *Engine) smartDiff(ctx context.Context, c *model.Customer, parsed []model.Lead, res *Result) error {
	external := make(map[int]model.Lead, len(parsed))
	for _, lead := range parsed {
		external[lead.SheetRowNumber] = lead
	}

	internal := make(map[int]model.Lead)
	for _, lead := range c.Leads {
		if lead.SheetRowNumber != 0 {
			internal[lead.SheetRowNumber] = lead
		}
	}

	for rowNum, lead := range external {
		if _, ok := internal[rowNum]; ok {
			res.Skipped++
			continue
		}
		if _, err := e.store.AddLead(ctx, c.ID, lead); err != nil {
			if eris.Is(err, store.ErrDuplicateRow) {
				res.Skipped++
				continue
			}
			res.Failures = append(res.Failures, OpFailure{
				SheetRowNumber: rowNum, Op: "add", Err: err.Error(),
			})
			continue
		}
		res.Added++
	}

	for rowNum, lead := range internal {
		if _, ok := external[rowNum]; ok {
			continue
		}
		if err := e.store.RemoveLead(ctx, c.ID, lead.ID); err != nil {
			if eris.Is(err, store.ErrNotFound) {
				continue
			}
			res.Failures = append(res.Failures, OpFailure{
				SheetRowNumber: rowNum, Op: "remove", Err: err.Error(),
			})
			continue
		}
		res.Removed++
	}

	return nil
}

// fullSwap replaces the sheet-linked lead collection wholesale while
// carrying hand-entered leads over untouched.
func (e *Engine) fullSwap(ctx context.Context, c *model.Customer, parsed []model.Lead, res *Result) error {
	fresh := make([]model.Lead, 0, len(parsed)+len(c.Leads))
	previous := 0
	for _, lead := range c.Leads {
		if lead.SheetRowNumber == 0 {
			fresh = append(fresh, lead)
			res.Skipped++
			continue
		}
		previous++
	}
	fresh = append(fresh, parsed...)

	if _, err := e.store.ReplaceLeads(ctx, c.ID, fresh); err != nil {
		return eris.Wrapf(err, "sync: replace leads for customer %s", c.ID)
	}
	res.Added = len(parsed)
	res.Removed = previous
	return nil
}

// PushLead writes a stored lead back to its sheet row, using the fixed
// write-back column order. Manual leads have no row to write to.
func (e *Engine) PushLead(ctx context.Context, customerID, leadID, ref string) error {
	c, err := e.store.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	lead := c.LeadByID(leadID)
	if lead == nil {
		return eris.Wrapf(store.ErrNotFound, "lead %s on customer %s", leadID, customerID)
	}
	if lead.SheetRowNumber == 0 {
		return eris.Errorf("sync: lead %s was entered by hand and has no sheet row", leadID)
	}
	if err := e.source.WriteRow(ctx, ref, lead.SheetRowNumber, sheet.LeadToRow(lead)); err != nil {
		return eris.Wrapf(err, "sync: push lead %s", leadID)
	}
	return nil
}

// All syncs every customer with a linked sheet, at most maxConcurrent
// at a time. Per-customer failures are reported in the returned
// results; a customer with no usable sheet link is skipped.
func (e *Engine) All(ctx context.Context, full bool, maxConcurrent int) ([]Result, error) {
	customers, err := e.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	results := make([]Result, 0, len(customers))
	collect := make(chan Result, len(customers))

	for _, c := range customers {
		if c.Sheet == nil || c.Sheet.SheetID == "" {
			continue
		}
		g.Go(func() error {
			var (
				res *Result
				err error
			)
			if full {
				res, err = e.Full(ctx, c.ID, c.Sheet.SheetID)
			} else {
				res, err = e.Smart(ctx, c.ID, c.Sheet.SheetID)
			}
			if err != nil {
				collect <- Result{
					CustomerID: c.ID,
					Failures: []OpFailure{{
						Op:  "sync",
						Err: fmt.Sprintf("customer %s: %v", c.ID, err),
					}},
				}
				return nil
			}
			collect <- *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(collect)
	for res := range collect {
		results = append(results, res)
	}
	return results, nil
}
