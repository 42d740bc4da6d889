package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildHeaderIndexExactMatch(t *testing.T) {
	idx := buildHeaderIndex([]string{"Naam", "E-mail", "Telefoon", "Plaats"})

	assert.Equal(t, 0, idx[FieldName])
	assert.Equal(t, 1, idx[FieldEmail])
	assert.Equal(t, 2, idx[FieldPhone])
	assert.Equal(t, 3, idx[FieldCity])

	_, ok := idx[FieldBudget]
	assert.False(t, ok, "budget column should not resolve")
}

func TestBuildHeaderIndexSubstringFallback(t *testing.T) {
	idx := buildHeaderIndex([]string{"Volledige naam klant", "Emailadres (werk)"})

	assert.Equal(t, 0, idx[FieldName])
	assert.Equal(t, 1, idx[FieldEmail])
}

func TestBuildHeaderIndexExactBeatsSubstring(t *testing.T) {
	// "naam" appears as a substring in column 0, but column 2 is an
	// exact synonym match and must win.
	idx := buildHeaderIndex([]string{"bedrijfsnaam", "email", "naam"})

	assert.Equal(t, 2, idx[FieldName])
	assert.Equal(t, 0, idx[FieldCompany])
}

func TestBuildHeaderIndexSynonymPriority(t *testing.T) {
	// Both "telefoon" and "mobiel" are phone synonyms; "telefoon" comes
	// first in the list so its column wins.
	idx := buildHeaderIndex([]string{"mobiel", "telefoon"})
	assert.Equal(t, 1, idx[FieldPhone])
}

func TestBuildHeaderIndexBranchColumns(t *testing.T) {
	idx := buildHeaderIndex([]string{
		"naam", "email", "Postcode", "Huisnummer",
		"Heeft zonnepanelen", "Dynamisch contract", "Stroomverbruik (kWh)",
	})

	assert.Equal(t, 2, idx[FieldPostcode])
	assert.Equal(t, 3, idx[FieldHuisnummer])
	assert.Equal(t, 4, idx[FieldZonnepanelen])
	assert.Equal(t, 5, idx[FieldDynamischContract])
	assert.Equal(t, 6, idx[FieldStroomverbruik])
}

func TestHeaderIndexGetShortRow(t *testing.T) {
	idx := buildHeaderIndex([]string{"naam", "email", "plaats"})
	// Row shorter than the resolved column.
	assert.Equal(t, "", idx.get([]string{"Jan", "jan@x.nl"}, FieldCity))
	assert.Equal(t, "Jan", idx.get([]string{"Jan", "jan@x.nl"}, FieldName))
}
