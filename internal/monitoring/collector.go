// Package monitoring watches sync health across all customers and
// raises webhook alerts when reconciliation starts failing.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/voltlead/leadsync-cli/internal/model"
	"github.com/voltlead/leadsync-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of sync and lead health.
type MetricsSnapshot struct {
	Customers      int `json:"customers"`
	LinkedSheets   int `json:"linked_sheets"`
	LeadsTotal     int `json:"leads_total"`
	LeadsConverted int `json:"leads_converted"`

	// Sync runs within the lookback window.
	SyncTotal    int     `json:"sync_total"`
	SyncComplete int     `json:"sync_complete"`
	SyncFailed   int     `json:"sync_failed"`
	SyncRunning  int     `json:"sync_running"`
	SyncFailRate float64 `json:"sync_fail_rate"`

	// Customers with a linked sheet but no successful sync within the
	// window.
	StaleCustomers int `json:"stale_customers"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}
	cutoff := snap.CollectedAt.Add(-time.Duration(lookbackHours) * time.Hour)

	customers, err := c.store.ListCustomers(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list customers")
	}
	snap.Customers = len(customers)

	for _, cust := range customers {
		snap.LeadsTotal += len(cust.Leads)
		for _, lead := range cust.Leads {
			if lead.Status == model.StatusConverted {
				snap.LeadsConverted++
			}
		}

		if cust.Sheet == nil || cust.Sheet.SheetID == "" {
			continue
		}
		snap.LinkedSheets++

		entries, err := c.store.ListSyncLog(ctx, cust.ID)
		if err != nil {
			return nil, eris.Wrapf(err, "monitoring: sync log for %s", cust.ID)
		}

		fresh := false
		for _, e := range entries {
			if e.StartedAt.Before(cutoff) {
				continue
			}
			snap.SyncTotal++
			switch e.Status {
			case "complete":
				snap.SyncComplete++
				fresh = true
			case "failed":
				snap.SyncFailed++
			case "running":
				snap.SyncRunning++
			}
		}
		if !fresh {
			snap.StaleCustomers++
		}
	}

	if finished := snap.SyncComplete + snap.SyncFailed; finished > 0 {
		snap.SyncFailRate = float64(snap.SyncFailed) / float64(finished)
	}

	return snap, nil
}
