package branch

import (
	"sort"

	"go.uber.org/zap"

	"github.com/voltlead/leadsync-cli/internal/model"
)

// BranchStats aggregates one vertical's leads.
type BranchStats struct {
	Branch              model.Branch `json:"branch"`
	LeadCount           int          `json:"lead_count"`
	Converted           int          `json:"converted"`
	ConversionRate      float64      `json:"conversion_rate"` // 0.0-1.0
	EstimatedValueCents int64        `json:"estimated_value_cents"`
	GrowthPct           float64      `json:"growth_pct"`
}

// Report is the full analytics aggregation over a lead collection.
type Report struct {
	TotalLeads          int           `json:"total_leads"`
	EstimatedValueCents int64         `json:"estimated_value_cents"`
	Branches            []BranchStats `json:"branches"`
}

// Aggregate classifies every lead and rolls the results up per
// vertical: lead counts, estimated pipeline value (base value weighted
// by funnel stage), conversion rate, and a naive growth trend.
func (c *Classifier) Aggregate(leads []model.Lead) *Report {
	groups := make(map[model.Branch][]model.Lead)
	for _, lead := range leads {
		intel := c.Classify(&lead)
		groups[intel.DetectedBranch] = append(groups[intel.DetectedBranch], lead)
	}

	report := &Report{TotalLeads: len(leads)}
	for b, group := range groups {
		stats := aggregateBranch(b, group)
		report.EstimatedValueCents += stats.EstimatedValueCents
		report.Branches = append(report.Branches, stats)
	}

	sort.Slice(report.Branches, func(i, j int) bool {
		return report.Branches[i].LeadCount > report.Branches[j].LeadCount
	})

	zap.L().Debug("branch: aggregated leads",
		zap.Int("leads", report.TotalLeads),
		zap.Int("branches", len(report.Branches)),
	)
	return report
}

func aggregateBranch(b model.Branch, leads []model.Lead) BranchStats {
	stats := BranchStats{Branch: b, LeadCount: len(leads)}

	base := baseValueCents[b]
	for _, lead := range leads {
		if lead.Status == model.StatusConverted {
			stats.Converted++
		}
		stats.EstimatedValueCents += int64(float64(base) * statusValueFactor[lead.Status])
	}
	if stats.LeadCount > 0 {
		stats.ConversionRate = float64(stats.Converted) / float64(stats.LeadCount)
	}
	stats.GrowthPct = growthTrend(leads)

	return stats
}

// growthTrend compares the conversion rate of the most recent 30% of
// leads against the earliest 70%, ordered by creation time. An empty
// earlier cohort (or a zero earlier rate) yields 0.
func growthTrend(leads []model.Lead) float64 {
	if len(leads) < 2 {
		return 0
	}

	ordered := make([]model.Lead, len(leads))
	copy(ordered, leads)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	split := int(float64(len(ordered)) * 0.7)
	earlier, recent := ordered[:split], ordered[split:]
	if len(earlier) == 0 || len(recent) == 0 {
		return 0
	}

	earlierRate := conversionRate(earlier)
	recentRate := conversionRate(recent)
	if earlierRate == 0 {
		return 0
	}
	return (recentRate - earlierRate) / earlierRate * 100
}

func conversionRate(leads []model.Lead) float64 {
	converted := 0
	for _, l := range leads {
		if l.Status == model.StatusConverted {
			converted++
		}
	}
	return float64(converted) / float64(len(leads))
}
