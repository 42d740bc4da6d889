package sheet

import "strings"

// Field is a semantic column of the lead row schema.
type Field string

const (
	FieldName         Field = "name"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phone"
	FieldCompany      Field = "company"
	FieldAddress      Field = "address"
	FieldCity         Field = "city"
	FieldInterest     Field = "interest"
	FieldBudget       Field = "budget"
	FieldTimeline     Field = "timeline"
	FieldNotes        Field = "notes"
	FieldStatus       Field = "status"
	FieldAssignedTo   Field = "assigned_to"
	FieldInterestDate Field = "interest_date"

	// Vertical-specific columns, extracted into BranchData regardless of
	// which vertical the lead ends up classified into.
	FieldPostcode          Field = "postcode"
	FieldHuisnummer        Field = "huisnummer"
	FieldZonnepanelen      Field = "zonnepanelen"
	FieldDynamischContract Field = "dynamischContract"
	FieldStroomverbruik    Field = "stroomverbruik"
	FieldNieuwsbrief       Field = "nieuwsbrief"
	FieldReden             Field = "reden"
	FieldKoopintentie      Field = "koopintentie"
)

// BranchFields lists the vertical-specific columns in write-back order.
func BranchFields() []Field {
	return []Field{
		FieldPostcode, FieldHuisnummer, FieldZonnepanelen,
		FieldDynamischContract, FieldStroomverbruik, FieldNieuwsbrief,
		FieldReden, FieldKoopintentie,
	}
}

// fieldSynonyms maps each semantic field to its accepted header
// spellings, in priority order. Sheets come from several campaign
// tools, so the lists carry both Dutch and English labels.
var fieldSynonyms = map[Field][]string{
	FieldName:         {"naam", "name", "volledige naam", "full name", "contactpersoon"},
	FieldEmail:        {"email", "e-mail", "emailadres", "e-mailadres", "mail"},
	FieldPhone:        {"telefoon", "telefoonnummer", "phone", "tel", "mobiel", "gsm"},
	FieldCompany:      {"bedrijf", "bedrijfsnaam", "company", "organisatie"},
	FieldAddress:      {"adres", "address", "straat"},
	FieldCity:         {"plaats", "stad", "city", "woonplaats", "gemeente"},
	FieldInterest:     {"interesse", "interest", "product", "dienst"},
	FieldBudget:       {"budget", "prijsindicatie"},
	FieldTimeline:     {"termijn", "timeline", "planning", "wanneer"},
	FieldNotes:        {"notities", "notes", "opmerkingen", "opmerking", "toelichting"},
	FieldStatus:       {"status", "fase", "stage"},
	FieldAssignedTo:   {"toegewezen aan", "toegewezen", "assigned to", "eigenaar", "owner"},
	FieldInterestDate: {"datum interesse", "interessedatum", "datum", "date", "aanvraagdatum"},

	FieldPostcode:          {"postcode", "postal code", "zip"},
	FieldHuisnummer:        {"huisnummer", "huisnr", "house number", "nr"},
	FieldZonnepanelen:      {"zonnepanelen", "heeft zonnepanelen", "solar panels", "solar"},
	FieldDynamischContract: {"dynamisch contract", "dynamischcontract", "dynamic contract", "dynamisch"},
	FieldStroomverbruik:    {"stroomverbruik", "verbruik", "electricity usage", "kwh"},
	FieldNieuwsbrief:       {"nieuwsbrief", "newsletter", "opt-in", "optin"},
	FieldReden:             {"reden", "reason", "motivatie", "waarom"},
	FieldKoopintentie:      {"koopintentie", "purchase intent", "intentie", "kooptermijn"},
}

// headerIndex maps each semantic field to its resolved column index.
type headerIndex map[Field]int

// buildHeaderIndex resolves every semantic field against a header row.
// Matching is case-insensitive: each field's synonym list is tried for
// an exact match first, then for substring containment, in list order;
// the first hit wins. Unresolved fields are simply absent.
func buildHeaderIndex(header []string) headerIndex {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	idx := make(headerIndex, len(fieldSynonyms))
	for field, synonyms := range fieldSynonyms {
		if col, ok := resolveColumn(normalized, synonyms); ok {
			idx[field] = col
		}
	}
	return idx
}

// resolveColumn finds the column matching one of the synonyms.
func resolveColumn(normalized []string, synonyms []string) (int, bool) {
	for _, syn := range synonyms {
		for col, h := range normalized {
			if h == syn {
				return col, true
			}
		}
	}
	for _, syn := range synonyms {
		for col, h := range normalized {
			if h != "" && strings.Contains(h, syn) {
				return col, true
			}
		}
	}
	return 0, false
}

// get returns the trimmed cell value for a field, or "" when the field
// did not resolve or the row is too short.
func (idx headerIndex) get(row []string, field Field) string {
	col, ok := idx[field]
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
