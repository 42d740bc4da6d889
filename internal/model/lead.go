package model

import (
	"strings"
	"time"
)

// LeadStatus is the pipeline stage of a lead. The zero-value ordering of
// the constants below mirrors the funnel: new through negotiation, then
// the two terminal states.
type LeadStatus string

const (
	StatusNew         LeadStatus = "new"
	StatusContacted   LeadStatus = "contacted"
	StatusQualified   LeadStatus = "qualified"
	StatusProposal    LeadStatus = "proposal"
	StatusNegotiation LeadStatus = "negotiation"
	StatusConverted   LeadStatus = "converted"
	StatusLost        LeadStatus = "lost"
)

// AllLeadStatuses lists every status in funnel order.
func AllLeadStatuses() []LeadStatus {
	return []LeadStatus{
		StatusNew, StatusContacted, StatusQualified,
		StatusProposal, StatusNegotiation, StatusConverted, StatusLost,
	}
}

// statusKeywords maps containment keywords to a status. Ordered: first
// hit wins, so the more specific terms come before the generic ones.
var statusKeywords = []struct {
	keyword string
	status  LeadStatus
}{
	{"nieuw", StatusNew},
	{"new", StatusNew},
	{"gecontacteerd", StatusContacted},
	{"contact", StatusContacted},
	{"gekwalificeerd", StatusQualified},
	{"qualified", StatusQualified},
	{"offerte", StatusProposal},
	{"proposal", StatusProposal},
	{"onderhandeling", StatusNegotiation},
	{"negotiation", StatusNegotiation},
	{"gewonnen", StatusConverted},
	{"converted", StatusConverted},
	{"klant", StatusConverted},
	{"verloren", StatusLost},
	{"lost", StatusLost},
	{"afgewezen", StatusLost},
}

// ParseLeadStatus normalizes free status text into a LeadStatus by
// keyword containment. Unmatched or empty text defaults to StatusNew.
func ParseLeadStatus(text string) LeadStatus {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return StatusNew
	}
	for _, sk := range statusKeywords {
		if strings.Contains(t, sk.keyword) {
			return sk.status
		}
	}
	return StatusNew
}

// LeadSource tags where a lead came from.
type LeadSource string

const (
	SourceCampaign LeadSource = "campaign"
	SourceManual   LeadSource = "manual"
	SourceImport   LeadSource = "import"
)

// Lead is a single prospect captured for a customer.
//
// SheetRowNumber is the stable external row identity correlating this
// record with a row in the customer's spreadsheet; it is the
// reconciliation key and must be unique within the owning customer's
// lead collection. A manually entered lead has SheetRowNumber 0.
type Lead struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	Company        string            `json:"company,omitempty"`
	Address        string            `json:"address,omitempty"`
	City           string            `json:"city,omitempty"`
	Interest       string            `json:"interest,omitempty"`
	Budget         string            `json:"budget,omitempty"`
	Timeline       string            `json:"timeline,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	AssignedTo     string            `json:"assigned_to,omitempty"`
	Status         LeadStatus        `json:"status"`
	Source         LeadSource        `json:"source"`
	SheetRowNumber int               `json:"sheet_row_number,omitempty"`
	BranchData     map[string]string `json:"branch_data,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// LeadPatch holds the updatable fields of a lead. Nil pointers leave
// the corresponding field untouched.
type LeadPatch struct {
	Name       *string           `json:"name,omitempty"`
	Email      *string           `json:"email,omitempty"`
	Phone      *string           `json:"phone,omitempty"`
	Company    *string           `json:"company,omitempty"`
	Address    *string           `json:"address,omitempty"`
	City       *string           `json:"city,omitempty"`
	Interest   *string           `json:"interest,omitempty"`
	Budget     *string           `json:"budget,omitempty"`
	Timeline   *string           `json:"timeline,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	AssignedTo *string           `json:"assigned_to,omitempty"`
	Status     *LeadStatus       `json:"status,omitempty"`
	BranchData map[string]string `json:"branch_data,omitempty"`
}

// Apply copies the non-nil patch fields onto the lead.
func (p *LeadPatch) Apply(l *Lead) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Company != nil {
		l.Company = *p.Company
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.City != nil {
		l.City = *p.City
	}
	if p.Interest != nil {
		l.Interest = *p.Interest
	}
	if p.Budget != nil {
		l.Budget = *p.Budget
	}
	if p.Timeline != nil {
		l.Timeline = *p.Timeline
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	if p.AssignedTo != nil {
		l.AssignedTo = *p.AssignedTo
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.BranchData != nil {
		if l.BranchData == nil {
			l.BranchData = make(map[string]string, len(p.BranchData))
		}
		for k, v := range p.BranchData {
			l.BranchData[k] = v
		}
	}
}
