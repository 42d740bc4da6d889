package branch

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/voltlead/leadsync-cli/internal/config"
)

// DefaultConfig returns the stock scoring table: 25 points per matched
// vertical attribute capped at 100, a 20-point signature bonus, 15
// points per keyword hit, a minimum winning score of 30, and the
// multi-vertical override firing above a combined 60.
func DefaultConfig() config.ClassifierConfig {
	return config.ClassifierConfig{
		FieldPoints:           25,
		SignatureBonus:        20,
		KeywordPoints:         15,
		FieldScoreCap:         100,
		MinScore:              30,
		StrongScore:           45,
		StrongFields:          2,
		MultiBranchMin:        60,
		MultiBranchConfidence: 75,
	}
}

// ValidateConfig checks that a ClassifierConfig is internally consistent.
func ValidateConfig(c config.ClassifierConfig) error {
	var errs []string

	points := map[string]int{
		"field_points":    c.FieldPoints,
		"signature_bonus": c.SignatureBonus,
		"keyword_points":  c.KeywordPoints,
		"field_score_cap": c.FieldScoreCap,
	}
	for name, p := range points {
		if p < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if c.MinScore < 0 || c.MinScore > 100 {
		errs = append(errs, "min_score must be between 0 and 100")
	}
	if c.StrongScore < c.MinScore {
		errs = append(errs, "strong_score must be >= min_score")
	}
	if c.MultiBranchConfidence < 0 || c.MultiBranchConfidence > 100 {
		errs = append(errs, "multi_branch_confidence must be between 0 and 100")
	}

	if len(errs) > 0 {
		return eris.Errorf("branch: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
