package sheet

import "github.com/voltlead/leadsync-cli/internal/model"

// WriteColumns is the fixed column order used when writing a lead back
// to its sheet row. Readers of the written row resolve these labels
// through the same synonym tables that ParseRows uses.
var WriteColumns = []Field{
	FieldName, FieldEmail, FieldPhone, FieldCompany, FieldAddress,
	FieldCity, FieldInterest, FieldBudget, FieldTimeline, FieldNotes,
	FieldStatus, FieldAssignedTo, FieldInterestDate,
	FieldPostcode, FieldHuisnummer, FieldZonnepanelen,
	FieldDynamischContract, FieldStroomverbruik, FieldNieuwsbrief,
	FieldReden, FieldKoopintentie,
}

// WriteHeader returns the header row matching WriteColumns, using each
// field's primary synonym.
func WriteHeader() []string {
	header := make([]string, len(WriteColumns))
	for i, f := range WriteColumns {
		header[i] = fieldSynonyms[f][0]
	}
	return header
}

// LeadToRow renders a lead as a row in WriteColumns order. The physical
// row to write it to is the lead's SheetRowNumber.
func LeadToRow(lead *model.Lead) []string {
	row := make([]string, len(WriteColumns))
	for i, f := range WriteColumns {
		row[i] = leadField(lead, f)
	}
	return row
}

func leadField(lead *model.Lead, f Field) string {
	switch f {
	case FieldName:
		return lead.Name
	case FieldEmail:
		return lead.Email
	case FieldPhone:
		return lead.Phone
	case FieldCompany:
		return lead.Company
	case FieldAddress:
		return lead.Address
	case FieldCity:
		return lead.City
	case FieldInterest:
		return lead.Interest
	case FieldBudget:
		return lead.Budget
	case FieldTimeline:
		return lead.Timeline
	case FieldNotes:
		return lead.Notes
	case FieldStatus:
		return string(lead.Status)
	case FieldAssignedTo:
		return lead.AssignedTo
	case FieldInterestDate:
		if lead.CreatedAt.IsZero() {
			return ""
		}
		return lead.CreatedAt.Format("02-01-2006")
	default:
		return lead.BranchData[string(f)]
	}
}
