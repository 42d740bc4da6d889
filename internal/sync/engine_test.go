package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlead/leadsync-cli/internal/model"
	"github.com/voltlead/leadsync-cli/internal/source"
	"github.com/voltlead/leadsync-cli/internal/store"
)

// memSource serves in-memory grids keyed by reference.
type memSource struct {
	grids  map[string][][]string
	reads  int
	writes map[int][]string
}

func (m *memSource) ReadRows(ctx context.Context, ref string) ([][]string, error) {
	m.reads++
	grid, ok := m.grids[ref]
	if !ok {
		return nil, eris.Wrapf(source.ErrNotFound, "%s", ref)
	}
	return grid, nil
}

func (m *memSource) WriteRow(ctx context.Context, ref string, rowNum int, cells []string) error {
	if m.writes == nil {
		m.writes = make(map[int][]string)
	}
	m.writes[rowNum] = cells
	return nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestEngine(t *testing.T, grids map[string][][]string) (*Engine, store.Store, *memSource) {
	t.Helper()
	st := newTestStore(t)
	src := &memSource{grids: grids}
	return New(src, st, 0), st, src
}

func linkedCustomer(t *testing.T, st store.Store, ref string) *model.Customer {
	t.Helper()
	c, err := st.UpsertCustomer(context.Background(), store.CustomerUpsert{
		Email: "jan@voorbeeld.nl",
		Name:  "Jan de Vries",
		Sheet: &model.SheetLink{SheetID: ref},
	})
	require.NoError(t, err)
	return c
}

func header() []string {
	return []string{"naam", "email", "interesse", "notities"}
}

func dataRow(name, email string) []string {
	return []string{name, email, "thuisbatterij", ""}
}

func sheetRows(leads map[int]*model.Lead) map[int]bool {
	rows := make(map[int]bool)
	for _, l := range leads {
		if l.SheetRowNumber != 0 {
			rows[l.SheetRowNumber] = true
		}
	}
	return rows
}

func leadsByRow(c *model.Customer) map[int]*model.Lead {
	out := make(map[int]*model.Lead)
	for i := range c.Leads {
		if c.Leads[i].SheetRowNumber != 0 {
			out[c.Leads[i].SheetRowNumber] = &c.Leads[i]
		}
	}
	return out
}

func TestSmartAddsNewRows(t *testing.T) {
	// Sheet holds rows 2, 3, 4; store holds 2 and 3. Exactly row 4 is
	// added, nothing removed.
	grid := [][]string{
		header(),
		dataRow("Jan de Vries", "jan@lead.nl"),
		dataRow("Piet Bakker", "piet@lead.nl"),
		dataRow("Kees Visser", "kees@lead.nl"),
	}
	eng, st, _ := newTestEngine(t, map[string][][]string{"sheet-1": grid})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-1")

	for rowNum, name := range map[int]string{2: "Jan de Vries", 3: "Piet Bakker"} {
		_, err := st.AddLead(ctx, c.ID, model.Lead{
			Name: name, Email: "x@lead.nl", Source: model.SourceImport, SheetRowNumber: rowNum,
		})
		require.NoError(t, err)
	}

	res, err := eng.Smart(ctx, c.ID, "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 0, res.Removed)
	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, res.Failures)

	got, err := st.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	byRow := leadsByRow(got)
	require.Len(t, byRow, 3)
	assert.Equal(t, "Kees Visser", byRow[4].Name)
}

func TestSmartRemovesStaleRows(t *testing.T) {
	// A row deleted from the sheet removes exactly that lead.
	grid := [][]string{
		header(),
		dataRow("Jan de Vries", "jan@lead.nl"),
		dataRow("Kees Visser", "kees@lead.nl"),
	}
	eng, st, _ := newTestEngine(t, map[string][][]string{"sheet-1": grid})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-1")

	for rowNum, name := range map[int]string{2: "Jan de Vries", 3: "Weg Hiermee", 4: "Kees Visser"} {
		_, err := st.AddLead(ctx, c.ID, model.Lead{
			Name: name, Email: "x@lead.nl", Source: model.SourceImport, SheetRowNumber: rowNum,
		})
		require.NoError(t, err)
	}

	res, err := eng.Smart(ctx, c.ID, "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 1, res.Removed)

	got, err := st.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	rows := sheetRows(leadsByRow(got))
	assert.Equal(t, map[int]bool{2: true, 3: true}, rows)
}

func TestSmartIsIdempotent(t *testing.T) {
	grid := [][]string{
		header(),
		dataRow("Jan de Vries", "jan@lead.nl"),
		dataRow("Piet Bakker", "piet@lead.nl"),
	}
	eng, st, _ := newTestEngine(t, map[string][][]string{"sheet-1": grid})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-1")

	first, err := eng.Smart(ctx, c.ID, "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	second, err := eng.Smart(ctx, c.ID, "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 0, second.Removed)
	assert.Equal(t, 2, second.Skipped)

	got, err := st.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Leads, 2)
}

func TestSmartNeverTouchesManualLeads(t *testing.T) {
	grid := [][]string{
		header(),
		dataRow("Jan de Vries", "jan@lead.nl"),
	}
	eng, st, _ := newTestEngine(t, map[string][][]string{"sheet-1": grid})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-1")

	manual, err := st.AddLead(ctx, c.ID, model.Lead{
		Name: "Handmatig", Email: "hand@lead.nl", Source: model.SourceManual,
	})
	require.NoError(t, err)

	res, err := eng.Smart(ctx, c.ID, "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 0, res.Removed)

	got, err := st.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LeadByID(manual.ID))
	assert.Len(t, got.Leads, 2)
}

func TestFullSwapsCollection(t *testing.T) {
	grid := [][]string{
		header(),
		dataRow("Nieuw A", "a@lead.nl"),
		dataRow("Nieuw B", "b@lead.nl"),
	}
	eng, st, _ := newTestEngine(t, map[string][][]string{"sheet-1": grid})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-1")

	_, err := st.AddLead(ctx, c.ID, model.Lead{
		Name: "Oud", Email: "oud@lead.nl", Source: model.SourceImport, SheetRowNumber: 9,
	})
	require.NoError(t, err)
	manual, err := st.AddLead(ctx, c.ID, model.Lead{
		Name: "Handmatig", Email: "hand@lead.nl", Source: model.SourceManual,
	})
	require.NoError(t, err)

	res, err := eng.Full(ctx, c.ID, "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 1, res.Removed)

	got, err := st.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Leads, 3)
	require.NotNil(t, got.LeadByID(manual.ID))
	assert.Nil(t, got.LeadBySheetRow(9))
	assert.NotNil(t, got.LeadBySheetRow(2))
	assert.NotNil(t, got.LeadBySheetRow(3))
}

func TestFullKeepsLeadsWhenReadFails(t *testing.T) {
	// The swap happens only after a successful read; an unreachable
	// sheet must never empty the collection.
	eng, st, _ := newTestEngine(t, map[string][][]string{})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-gone")

	_, err := st.AddLead(ctx, c.ID, model.Lead{
		Name: "Blijft", Email: "blijft@lead.nl", Source: model.SourceImport, SheetRowNumber: 2,
	})
	require.NoError(t, err)

	_, err = eng.Full(ctx, c.ID, "sheet-gone")
	require.Error(t, err)
	assert.True(t, eris.Is(err, source.ErrNotFound))

	got, err := st.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Leads, 1)

	entries, err := st.ListSyncLog(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
}

func TestSyncRecordsLog(t *testing.T) {
	grid := [][]string{
		header(),
		dataRow("Jan de Vries", "jan@lead.nl"),
	}
	eng, st, _ := newTestEngine(t, map[string][][]string{"sheet-1": grid})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-1")

	_, err := eng.Smart(ctx, c.ID, "sheet-1")
	require.NoError(t, err)

	entries, err := st.ListSyncLog(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.SyncModeSmart, entries[0].Mode)
	assert.Equal(t, "complete", entries[0].Status)
	assert.Equal(t, 1, entries[0].Added)

	last, err := st.LastSyncSuccess(ctx, c.ID)
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestSmartUnknownCustomer(t *testing.T) {
	eng, _, src := newTestEngine(t, map[string][][]string{})

	_, err := eng.Smart(context.Background(), "nonexistent", "sheet-1")
	require.Error(t, err)
	assert.True(t, eris.Is(err, store.ErrNotFound))
	assert.Zero(t, src.reads)
}

func TestPushLeadWritesSheetRow(t *testing.T) {
	eng, st, src := newTestEngine(t, map[string][][]string{})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-1")

	lead, err := st.AddLead(ctx, c.ID, model.Lead{
		Name: "Kees Visser", Email: "kees@lead.nl",
		Source: model.SourceImport, SheetRowNumber: 3,
	})
	require.NoError(t, err)

	require.NoError(t, eng.PushLead(ctx, c.ID, lead.ID, "sheet-1"))

	cells, ok := src.writes[3]
	require.True(t, ok)
	assert.Equal(t, "Kees Visser", cells[0])
	assert.Equal(t, "kees@lead.nl", cells[1])
}

func TestPushLeadRejectsManualLead(t *testing.T) {
	eng, st, src := newTestEngine(t, map[string][][]string{})
	ctx := context.Background()
	c := linkedCustomer(t, st, "sheet-1")

	lead, err := st.AddLead(ctx, c.ID, model.Lead{
		Name: "Handmatig", Email: "hand@lead.nl", Source: model.SourceManual,
	})
	require.NoError(t, err)

	err = eng.PushLead(ctx, c.ID, lead.ID, "sheet-1")
	require.Error(t, err)
	assert.Empty(t, src.writes)
}

func TestAllSyncsLinkedCustomers(t *testing.T) {
	grids := map[string][][]string{
		"sheet-1": {header(), dataRow("Jan de Vries", "jan@lead.nl")},
		"sheet-2": {header(), dataRow("Piet Bakker", "piet@lead.nl"), dataRow("Kees Visser", "kees@lead.nl")},
	}
	eng, st, _ := newTestEngine(t, grids)
	ctx := context.Background()

	_, err := st.UpsertCustomer(ctx, store.CustomerUpsert{
		Email: "a@voorbeeld.nl", Sheet: &model.SheetLink{SheetID: "sheet-1"},
	})
	require.NoError(t, err)
	_, err = st.UpsertCustomer(ctx, store.CustomerUpsert{
		Email: "b@voorbeeld.nl", Sheet: &model.SheetLink{SheetID: "sheet-2"},
	})
	require.NoError(t, err)
	// No sheet link, skipped entirely.
	_, err = st.UpsertCustomer(ctx, store.CustomerUpsert{Email: "c@voorbeeld.nl"})
	require.NoError(t, err)

	results, err := eng.All(ctx, false, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	total := 0
	for _, res := range results {
		assert.Empty(t, res.Failures)
		total += res.Added
	}
	assert.Equal(t, 3, total)
}

func TestAllReportsPerCustomerFailures(t *testing.T) {
	grids := map[string][][]string{
		"sheet-1": {header(), dataRow("Jan de Vries", "jan@lead.nl")},
	}
	eng, st, _ := newTestEngine(t, grids)
	ctx := context.Background()

	_, err := st.UpsertCustomer(ctx, store.CustomerUpsert{
		Email: "a@voorbeeld.nl", Sheet: &model.SheetLink{SheetID: "sheet-1"},
	})
	require.NoError(t, err)
	_, err = st.UpsertCustomer(ctx, store.CustomerUpsert{
		Email: "b@voorbeeld.nl", Sheet: &model.SheetLink{SheetID: "sheet-gone"},
	})
	require.NoError(t, err)

	results, err := eng.All(ctx, false, 4)
	require.NoError(t, err)
	require.Len(t, results, 2)

	failures := 0
	for _, res := range results {
		failures += len(res.Failures)
	}
	assert.Equal(t, 1, failures)
}
