package model

// Branch is a business vertical a lead can be classified into. It is a
// closed set: adding a vertical means adding a constant here and
// extending AllBranches, which every lookup table is checked against.
type Branch string

const (
	BranchThuisbatterijen   Branch = "Thuisbatterijen"
	BranchZonnepanelen      Branch = "Zonnepanelen"
	BranchEnergieContracten Branch = "EnergieContracten"
	BranchLaadpalen         Branch = "Laadpalen"
	BranchWarmtepompen      Branch = "Warmtepompen"
	BranchVerzekeringen     Branch = "Verzekeringen"

	// BranchCustom is the synthetic multi-vertical result produced when
	// several energy verticals match without a single dominant one.
	BranchCustom Branch = "Custom"

	// BranchUnknown means no vertical cleared the minimum score.
	BranchUnknown Branch = "Unknown"
)

// AllBranches lists every concrete vertical (excluding Custom and
// Unknown, which are classifier outcomes rather than candidates).
func AllBranches() []Branch {
	return []Branch{
		BranchThuisbatterijen,
		BranchZonnepanelen,
		BranchEnergieContracten,
		BranchLaadpalen,
		BranchWarmtepompen,
		BranchVerzekeringen,
	}
}

// BranchIntelligence is the classifier's verdict for a single lead.
// It is derived on demand from the lead's current field values and is
// never persisted.
type BranchIntelligence struct {
	DetectedBranch Branch   `json:"detected_branch"`
	Confidence     int      `json:"confidence"` // 0-100
	MatchedFields  []string `json:"matched_fields,omitempty"`
	NextActions    []string `json:"next_actions,omitempty"`
}
