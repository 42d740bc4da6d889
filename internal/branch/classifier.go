// Package branch implements heuristic vertical classification of leads.
package branch

import (
	"sort"
	"strings"

	"github.com/voltlead/leadsync-cli/internal/config"
	"github.com/voltlead/leadsync-cli/internal/model"
)

// Classifier scores leads against the closed set of business verticals.
// Classification is a pure function of the lead's current field values:
// identical input always yields an identical verdict.
type Classifier struct {
	cfg config.ClassifierConfig
}

// New creates a Classifier. Zero-valued config fields fall back to the
// defaults, so New(config.ClassifierConfig{}) uses the stock scoring
// table.
func New(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{cfg: withDefaults(cfg)}
}

// branchScore is the per-vertical tally built during classification.
type branchScore struct {
	branch model.Branch
	score  int
	fields []string
}

// Classify estimates which vertical a lead belongs to.
func (c *Classifier) Classify(lead *model.Lead) model.BranchIntelligence {
	haystack := buildHaystack(lead)

	scores := make([]branchScore, 0, len(profiles))
	for _, b := range model.AllBranches() {
		scores = append(scores, c.scoreBranch(b, lead, haystack))
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.score > best.score {
			best = s
		}
	}

	// Multi-vertical override: several energy verticals matching
	// weakly is a stronger signal than any one of them alone.
	if override, ok := c.multiBranch(scores, best); ok {
		return override
	}

	if best.score < c.cfg.MinScore {
		return model.BranchIntelligence{
			DetectedBranch: model.BranchUnknown,
			Confidence:     0,
			NextActions:    unknownActions,
		}
	}

	return model.BranchIntelligence{
		DetectedBranch: best.branch,
		Confidence:     clamp(best.score, 0, 100),
		MatchedFields:  best.fields,
		NextActions:    profiles[best.branch].Actions,
	}
}

// scoreBranch computes one vertical's field-match and keyword scores.
func (c *Classifier) scoreBranch(b model.Branch, lead *model.Lead, haystack string) branchScore {
	p := profiles[b]
	bs := branchScore{branch: b}

	fieldScore := 0
	for _, attr := range p.Attrs {
		if lead.BranchData[attr] == "" {
			continue
		}
		fieldScore += c.cfg.FieldPoints
		bs.fields = append(bs.fields, attr)
	}
	if fieldScore > c.cfg.FieldScoreCap {
		fieldScore = c.cfg.FieldScoreCap
	}
	if p.Signature != "" && lead.BranchData[p.Signature] != "" {
		fieldScore += c.cfg.SignatureBonus
	}
	bs.score = fieldScore

	for _, kw := range p.Keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			bs.score += c.cfg.KeywordPoints
			bs.fields = append(bs.fields, "keyword:"+kw)
		}
	}

	return bs
}

// multiBranch applies the Custom override: when no single vertical is a
// strong match but the energy verticals together are, the lead spans
// multiple verticals.
func (c *Classifier) multiBranch(scores []branchScore, best branchScore) (model.BranchIntelligence, bool) {
	if best.score > c.cfg.StrongScore && len(best.fields) > c.cfg.StrongFields {
		return model.BranchIntelligence{}, false
	}

	sum := 0
	var fields []string
	for _, s := range scores {
		for _, eb := range energyBranches {
			if s.branch == eb {
				sum += s.score
				fields = append(fields, s.fields...)
			}
		}
	}
	if sum <= c.cfg.MultiBranchMin {
		return model.BranchIntelligence{}, false
	}

	return model.BranchIntelligence{
		DetectedBranch: model.BranchCustom,
		Confidence:     c.cfg.MultiBranchConfidence,
		MatchedFields:  dedupe(fields),
		NextActions:    customActions,
	}, true
}

// buildHaystack concatenates the lead's free-text fields: interest,
// notes, company, and the vertical free-text "reden" attribute.
func buildHaystack(lead *model.Lead) string {
	parts := []string{lead.Interest, lead.Notes, lead.Company, lead.BranchData["reden"]}
	return strings.ToLower(strings.Join(parts, " "))
}

func withDefaults(cfg config.ClassifierConfig) config.ClassifierConfig {
	def := DefaultConfig()
	if cfg.FieldPoints == 0 {
		cfg.FieldPoints = def.FieldPoints
	}
	if cfg.SignatureBonus == 0 {
		cfg.SignatureBonus = def.SignatureBonus
	}
	if cfg.KeywordPoints == 0 {
		cfg.KeywordPoints = def.KeywordPoints
	}
	if cfg.FieldScoreCap == 0 {
		cfg.FieldScoreCap = def.FieldScoreCap
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = def.MinScore
	}
	if cfg.StrongScore == 0 {
		cfg.StrongScore = def.StrongScore
	}
	if cfg.StrongFields == 0 {
		cfg.StrongFields = def.StrongFields
	}
	if cfg.MultiBranchMin == 0 {
		cfg.MultiBranchMin = def.MultiBranchMin
	}
	if cfg.MultiBranchConfidence == 0 {
		cfg.MultiBranchConfidence = def.MultiBranchConfidence
	}
	return cfg
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
