package sheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlead/leadsync-cli/internal/model"
)

func testGrid() [][]string {
	return [][]string{
		{"Naam", "Email", "Telefoon", "Status", "Interesse", "Postcode", "Zonnepanelen", "Datum"},
		{"Jan Jansen", "jan@example.nl", "0612345678", "Nieuw", "thuisbatterij", "1234AB", "Ja", "15-03-2026"},
		{"", "leeg@example.nl", "", "", "", "", "", ""},                   // no name: skipped
		{"Piet Peters", "", "0687654321", "", "", "", "", ""},            // no email: skipped
		{"Kees Klant", "kees@example.nl", "", "gewonnen", "", "", "", ""},
	}
}

func TestParseRowsBasics(t *testing.T) {
	leads := ParseRows(testGrid(), 0)
	require.Len(t, leads, 2)

	jan := leads[0]
	assert.Equal(t, "Jan Jansen", jan.Name)
	assert.Equal(t, "jan@example.nl", jan.Email)
	assert.Equal(t, "0612345678", jan.Phone)
	assert.Equal(t, model.StatusNew, jan.Status)
	assert.Equal(t, model.SourceImport, jan.Source)
	assert.Equal(t, "thuisbatterij", jan.Interest)
	assert.Equal(t, "1234AB", jan.BranchData["postcode"])
	assert.Equal(t, "Ja", jan.BranchData["zonnepanelen"])
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), jan.CreatedAt)

	kees := leads[1]
	assert.Equal(t, model.StatusConverted, kees.Status)
	assert.Empty(t, kees.BranchData)
}

func TestParseRowsRowNumbers(t *testing.T) {
	leads := ParseRows(testGrid(), 0)
	require.Len(t, leads, 2)

	// Header is physical row 1 in external 1-based numbering, so the
	// first data row is row 2. Skipped rows still consume a position.
	assert.Equal(t, 2, leads[0].SheetRowNumber)
	assert.Equal(t, 5, leads[1].SheetRowNumber)
}

func TestParseRowsDeterministic(t *testing.T) {
	a := ParseRows(testGrid(), 0)
	b := ParseRows(testGrid(), 0)
	require.Len(t, a, len(b))
	for i := range a {
		assert.Equal(t, a[i].SheetRowNumber, b[i].SheetRowNumber)
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].Email, b[i].Email)
		assert.Equal(t, a[i].BranchData, b[i].BranchData)
	}
}

func TestParseRowsPlaceholderName(t *testing.T) {
	rows := [][]string{
		{"naam", "email"},
		{"n/a", "x@example.nl"},
		{"-", "y@example.nl"},
		{"Onbekend", "z@example.nl"},
	}
	assert.Empty(t, ParseRows(rows, 0))
}

func TestParseRowsHeaderRowOffset(t *testing.T) {
	rows := [][]string{
		{"Campagne export maart", "", ""},
		{"naam", "email", "plaats"},
		{"Jan", "jan@example.nl", "Utrecht"},
	}
	leads := ParseRows(rows, 1)
	require.Len(t, leads, 1)
	assert.Equal(t, "Utrecht", leads[0].City)
	assert.Equal(t, 3, leads[0].SheetRowNumber)
}

func TestParseRowsOutOfRangeHeader(t *testing.T) {
	assert.Nil(t, ParseRows(testGrid(), 99))
	assert.Nil(t, ParseRows(nil, 0))
}

func TestParseRowsBadDateFallsBackToNow(t *testing.T) {
	rows := [][]string{
		{"naam", "email", "datum"},
		{"Jan", "jan@example.nl", "ooit in maart"},
	}
	before := time.Now().UTC()
	leads := ParseRows(rows, 0)
	require.Len(t, leads, 1)
	assert.False(t, leads[0].CreatedAt.Before(before.Add(-time.Second)))
}

func TestRoundTripWriteParse(t *testing.T) {
	orig := model.Lead{
		Name:     "Jan Jansen",
		Email:    "jan@example.nl",
		Phone:    "0612345678",
		Interest: "thuisbatterij",
		Status:   model.StatusQualified,
		BranchData: map[string]string{
			"postcode":          "1234AB",
			"zonnepanelen":      "Ja",
			"dynamischContract": "Nee",
		},
		SheetRowNumber: 2,
		CreatedAt:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	grid := [][]string{WriteHeader(), LeadToRow(&orig)}
	leads := ParseRows(grid, 0)
	require.Len(t, leads, 1)

	got := leads[0]
	assert.Equal(t, orig.Name, got.Name)
	assert.Equal(t, orig.Email, got.Email)
	assert.Equal(t, orig.Phone, got.Phone)
	assert.Equal(t, orig.Interest, got.Interest)
	assert.Equal(t, orig.Status, got.Status)
	assert.Equal(t, orig.BranchData, got.BranchData)
	assert.Equal(t, orig.SheetRowNumber, got.SheetRowNumber)
}
