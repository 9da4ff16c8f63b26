package insight

import (
	"math"
	"sort"
)

// Category tags identifying which heuristic produced part of a score.
const (
	CategoryCTROptimization        = "ctr_optimization"
	CategoryConversionOptimization = "conversion_optimization"
	CategoryContentRefresh         = "content_refresh"
	CategoryScaleWinner            = "scale_winner"
)

const declineTrigger = -0.2

// Thresholds holds the tunable limits read by scoring and the report
// builders. Values are fixed at construction; nothing mutates them.
type Thresholds struct {
	MinImpressions       int
	MinSessions          int
	TargetCTR            float64
	TargetConversionRate float64
	MaxActionItems       int
}

// DefaultThresholds returns the calibration used when nothing overrides it.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinImpressions:       200,
		MinSessions:          50,
		TargetCTR:            0.03,
		TargetConversionRate: 0.02,
		MaxActionItems:       30,
	}
}

// ScorePage evaluates one merged page record against the configured
// thresholds. Five independent heuristics each contribute an additive,
// individually capped score component plus a category, reasons, and
// recommended actions. Pure and deterministic: identical inputs always
// produce identical results.
func ScorePage(page PageRecord, limits Thresholds) ScoreResult {
	var score float64
	var categories, reasons, recommendations []string

	impressions := page.Search.Impressions
	clicks := page.Search.Clicks
	ctr := page.Search.CTR
	position := page.Search.Position

	sessions := page.Traffic.Sessions
	conversionRate := page.Traffic.ConversionRate

	minImpressions := float64(limits.MinImpressions)
	minSessions := float64(limits.MinSessions)

	if impressions >= minImpressions && ctr < limits.TargetCTR {
		gap := (limits.TargetCTR - ctr) / math.Max(limits.TargetCTR, 1e-6)
		score += math.Min(45, gap*45+logScale(impressions, 6))
		categories = append(categories, CategoryCTROptimization)
		reasons = append(reasons, "High impressions with below-target CTR indicate snippet/title opportunity.")
		recommendations = append(recommendations,
			"Rewrite title and meta description to better match dominant queries.",
			"Test stronger value proposition in the first 60 title characters.",
		)
	}

	if sessions >= minSessions && conversionRate < limits.TargetConversionRate {
		gap := (limits.TargetConversionRate - conversionRate) / math.Max(limits.TargetConversionRate, 1e-6)
		score += math.Min(45, gap*42+logScale(sessions, 6))
		categories = append(categories, CategoryConversionOptimization)
		reasons = append(reasons, "Strong traffic with weak conversion efficiency suggests on-page UX/content friction.")
		recommendations = append(recommendations,
			"Strengthen above-the-fold CTA and internal next-step links.",
			"Add trust proof and tighten informational-to-commercial transition sections.",
		)
	}

	if delta := page.ClicksDeltaPct; delta != nil && *delta <= declineTrigger {
		score += math.Min(30, math.Abs(*delta)*60)
		categories = append(categories, CategoryContentRefresh)
		reasons = append(reasons, "Organic clicks are declining versus the previous period.")
		recommendations = append(recommendations, "Refresh outdated sections and compare SERP competitors for intent drift.")
	}

	if delta := page.SessionsDeltaPct; delta != nil && *delta <= declineTrigger {
		score += math.Min(30, math.Abs(*delta)*55)
		categories = append(categories, CategoryContentRefresh)
		reasons = append(reasons, "On-site sessions are declining versus the previous period.")
		recommendations = append(recommendations, "Audit UX changes, page speed, and content relevance for recent traffic loss.")
	}

	if impressions >= minImpressions && sessions >= minSessions &&
		ctr >= limits.TargetCTR && conversionRate >= limits.TargetConversionRate {
		score += math.Min(35, logScale(clicks+sessions, 7)+10)
		categories = append(categories, CategoryScaleWinner)
		reasons = append(reasons, "Page performs well in both acquisition and conversion.")
		recommendations = append(recommendations,
			"Expand topic cluster around this page's highest-performing query themes.",
			"Promote this page via internal links from adjacent intent pages.",
		)
	}

	if position > 8 && impressions > 0 {
		score += math.Min(12, (position-8)*1.5)
		reasons = append(reasons, "Average position indicates page may be near page-one threshold.")
	}

	if len(categories) == 0 && score <= 0 {
		return ScoreResult{Priority: "low", ExpectedImpact: "low", Effort: "low"}
	}

	uniqueCategories := sortedUnique(categories)

	return ScoreResult{
		Score:           roundTo(score, 2),
		Categories:      uniqueCategories,
		Reasons:         firstSeenUnique(reasons),
		Recommendations: firstSeenUnique(recommendations),
		Priority:        priorityTier(score),
		ExpectedImpact:  impactTier(score),
		Effort:          effortTier(uniqueCategories),
		Confidence:      roundTo(confidence(impressions, sessions), 2),
	}
}

// logScale dampens raw volume into a bounded bonus.
func logScale(value, multiplier float64) float64 {
	if value <= 0 {
		return 0
	}
	return math.Min(20, math.Log10(value+1)*multiplier)
}

func priorityTier(score float64) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

// impactTier uses a 45 medium boundary where priorityTier uses 40.
func impactTier(score float64) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 45:
		return "medium"
	default:
		return "low"
	}
}

func effortTier(categories []string) string {
	for _, c := range categories {
		if c == CategoryConversionOptimization {
			return "medium"
		}
	}
	return "low"
}

// confidence estimates the statistical weight of evidence behind a
// score in [0,1]. It counts which sources reported data and adds a
// volume factor per source; it is independent of score magnitude.
func confidence(impressions, sessions float64) float64 {
	sources := 0
	var volume float64
	if impressions > 0 {
		sources++
		volume += math.Min(0.25, math.Log10(impressions+1)/10)
	}
	if sessions > 0 {
		sources++
		volume += math.Min(0.25, math.Log10(sessions+1)/10)
	}
	return math.Min(1, 0.35+0.2*float64(sources)+volume)
}

func sortedUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func firstSeenUnique(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func roundTo(v float64, prec int) float64 {
	p := math.Pow10(prec)
	return math.Round(v*p) / p
}
