package sheet

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voltlead/leadsync-cli/internal/model"
)

// namePlaceholders are values that mean "no name was entered".
var namePlaceholders = map[string]bool{
	"-":        true,
	"n/a":      true,
	"nvt":      true,
	"n.v.t.":   true,
	"onbekend": true,
	"unknown":  true,
	"test":     true,
}

// dateLayouts are tried in order when parsing the interest date.
// The last entries cover the DD-MM-YYYY style common in Dutch sheets.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	"2-1-2006",
}

// ParseRows converts a raw cell grid into leads. Row headerRow holds the
// column labels; every later row is one candidate lead. Malformed rows
// are skipped, never an error: a row must resolve a usable name and a
// non-empty email to produce a lead. Parsing is pure and deterministic,
// so repeated parses of an unchanged grid yield identical leads with
// identical sheet row numbers.
func ParseRows(rows [][]string, headerRow int) []model.Lead {
	if headerRow < 0 || headerRow >= len(rows) {
		return nil
	}
	idx := buildHeaderIndex(rows[headerRow])

	var leads []model.Lead
	for offset, row := range rows[headerRow+1:] {
		lead, ok := parseRow(idx, row, headerRow, offset)
		if !ok {
			continue
		}
		leads = append(leads, lead)
	}

	zap.L().Debug("sheet: parsed rows",
		zap.Int("total_rows", len(rows)-headerRow-1),
		zap.Int("leads", len(leads)),
	)
	return leads
}

// parseRow converts one data row. The second return value is false when
// the row is rejected (missing name or email).
func parseRow(idx headerIndex, row []string, headerRow, offset int) (model.Lead, bool) {
	name := idx.get(row, FieldName)
	email := idx.get(row, FieldEmail)
	if !usableName(name) || email == "" {
		return model.Lead{}, false
	}

	created := parseDate(idx.get(row, FieldInterestDate))

	lead := model.Lead{
		Name:       name,
		Email:      email,
		Phone:      idx.get(row, FieldPhone),
		Company:    idx.get(row, FieldCompany),
		Address:    idx.get(row, FieldAddress),
		City:       idx.get(row, FieldCity),
		Interest:   idx.get(row, FieldInterest),
		Budget:     idx.get(row, FieldBudget),
		Timeline:   idx.get(row, FieldTimeline),
		Notes:      idx.get(row, FieldNotes),
		AssignedTo: idx.get(row, FieldAssignedTo),
		Status:     model.ParseLeadStatus(idx.get(row, FieldStatus)),
		Source:     model.SourceImport,
		// +2 accounts for 1-based external numbering plus the header row.
		SheetRowNumber: headerRow + offset + 2,
		CreatedAt:      created,
		UpdatedAt:      created,
	}

	branchData := make(map[string]string)
	for _, f := range BranchFields() {
		if v := idx.get(row, f); v != "" {
			branchData[string(f)] = v
		}
	}
	if len(branchData) > 0 {
		lead.BranchData = branchData
	}

	return lead, true
}

func usableName(name string) bool {
	if name == "" {
		return false
	}
	return !namePlaceholders[strings.ToLower(name)]
}

// parseDate parses the interest date permissively. Absent or
// unparseable dates fall back to now, never to an error.
func parseDate(text string) time.Time {
	text = strings.TrimSpace(text)
	if text != "" {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t
			}
		}
	}
	return time.Now().UTC()
}
