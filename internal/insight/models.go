package insight

// SearchRow is one raw search-performance row as returned by the search
// connector: an ordered dimension key tuple plus the standard metrics.
type SearchRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

// TrafficRow is one raw traffic-analytics row: named dimension values and
// named metric values. Missing metrics read as zero.
type TrafficRow struct {
	Dimensions map[string]string  `json:"dimensions"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Metric reads a named metric from the row, defaulting to zero.
func (r TrafficRow) Metric(name string) float64 {
	if r.Metrics == nil {
		return 0
	}
	return r.Metrics[name]
}

// SearchAggregate accumulates search metrics for one normalized URL.
// CTR and Position are impression-weighted averages.
type SearchAggregate struct {
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
	Rows        int     `json:"rows"`
}

// TrafficAggregate accumulates traffic metrics for one normalized URL.
// EngagementRate and ConversionRate are session-weighted.
type TrafficAggregate struct {
	Sessions           float64 `json:"sessions"`
	EngagedSessions    float64 `json:"engaged_sessions"`
	Conversions        float64 `json:"conversions"`
	TotalUsers         float64 `json:"total_users"`
	PageViews          float64 `json:"page_views"`
	EngagementDuration float64 `json:"engagement_duration"`
	EngagementRate     float64 `json:"engagement_rate"`
	ConversionRate     float64 `json:"conversion_rate"`
	Rows               int     `json:"rows"`
}

// PreviousPeriod carries the prior-period values of the delta-bearing
// metrics. Nil pointers mean the source had no data for the URL in the
// previous window, which is not the same thing as reporting zero.
type PreviousPeriod struct {
	Clicks      *float64 `json:"clicks,omitempty"`
	Impressions *float64 `json:"impressions,omitempty"`
	Sessions    *float64 `json:"sessions,omitempty"`
	Conversions *float64 `json:"conversions,omitempty"`
}

// PageRecord is one merged row per normalized URL combining both sources'
// current-period aggregates, optional previous-period values, and
// period-over-period delta percentages (nil when no usable baseline).
type PageRecord struct {
	URL     string           `json:"url"`
	Search  SearchAggregate  `json:"search"`
	Traffic TrafficAggregate `json:"traffic"`

	Previous PreviousPeriod `json:"previous"`

	ClicksDeltaPct      *float64 `json:"clicks_delta_pct"`
	ImpressionsDeltaPct *float64 `json:"impressions_delta_pct"`
	SessionsDeltaPct    *float64 `json:"sessions_delta_pct"`
	ConversionsDeltaPct *float64 `json:"conversions_delta_pct"`
}

// ScoreResult is the outcome of scoring a single merged page record.
type ScoreResult struct {
	Score           float64  `json:"score"`
	Categories      []string `json:"categories"`
	Reasons         []string `json:"reasons"`
	Recommendations []string `json:"recommendations"`
	Priority        string   `json:"priority"`
	ExpectedImpact  string   `json:"expected_impact"`
	Effort          string   `json:"effort"`
	Confidence      float64  `json:"confidence"`
}

// Evidence is the rounded metric snapshot attached to an action item.
type Evidence struct {
	Impressions      float64  `json:"impressions"`
	Clicks           float64  `json:"clicks"`
	CTR              float64  `json:"ctr"`
	Position         float64  `json:"position"`
	Sessions         float64  `json:"sessions"`
	EngagementRate   float64  `json:"engagement_rate"`
	ConversionRate   float64  `json:"conversion_rate"`
	ClicksDeltaPct   *float64 `json:"clicks_delta_pct"`
	SessionsDeltaPct *float64 `json:"sessions_delta_pct"`
}

// ActionItem is one prioritized improvement recommendation for a URL.
type ActionItem struct {
	URL                string   `json:"url"`
	Score              float64  `json:"score"`
	Priority           string   `json:"priority"`
	Category           string   `json:"category"`
	Categories         []string `json:"categories"`
	ExpectedImpact     string   `json:"expected_impact"`
	Effort             string   `json:"effort"`
	Confidence         float64  `json:"confidence"`
	Reasons            []string `json:"reasons"`
	RecommendedActions []string `json:"recommended_actions"`
	Evidence           Evidence `json:"evidence"`
}

// PortfolioSummary aggregates the merged dataset into site-wide totals
// with blended rates.
type PortfolioSummary struct {
	TotalPages              int     `json:"total_pages"`
	TotalClicks             float64 `json:"total_clicks"`
	TotalImpressions        float64 `json:"total_impressions"`
	TotalSessions           float64 `json:"total_sessions"`
	TotalConversions        float64 `json:"total_conversions"`
	PortfolioCTR            float64 `json:"portfolio_ctr"`
	PortfolioConversionRate float64 `json:"portfolio_conversion_rate"`
}

// PageStat is a compact per-URL line used by snapshot reports.
type PageStat struct {
	URL         string  `json:"url"`
	Value       float64 `json:"value"`
	Clicks      float64 `json:"clicks"`
	Sessions    float64 `json:"sessions"`
	Conversions float64 `json:"conversions"`
}

// PopularitySnapshot lists the top pages per headline metric.
type PopularitySnapshot struct {
	TopByClicks      []PageStat `json:"top_by_clicks"`
	TopByImpressions []PageStat `json:"top_by_impressions"`
	TopBySessions    []PageStat `json:"top_by_sessions"`
	TopByConversions []PageStat `json:"top_by_conversions"`
}

// TrendEntry is one gainer or decliner row.
type TrendEntry struct {
	URL      string  `json:"url"`
	DeltaPct float64 `json:"delta_pct"`
	Clicks   float64 `json:"clicks"`
	Sessions float64 `json:"sessions"`
}

// TrendReport lists period-over-period gainers and decliners for clicks
// and sessions. Only records with a numeric delta participate.
type TrendReport struct {
	ClickGainers     []TrendEntry `json:"click_gainers"`
	ClickDecliners   []TrendEntry `json:"click_decliners"`
	SessionGainers   []TrendEntry `json:"session_gainers"`
	SessionDecliners []TrendEntry `json:"session_decliners"`
}

// CoverageCounts partitions the URL universe by source presence.
type CoverageCounts struct {
	TotalPages       int `json:"total_pages"`
	PagesWithSearch  int `json:"pages_with_search"`
	PagesWithTraffic int `json:"pages_with_traffic"`
	PagesWithBoth    int `json:"pages_with_both"`
	SearchOnlyPages  int `json:"search_only_pages"`
	TrafficOnlyPages int `json:"traffic_only_pages"`
}

// CoverageExample is one URL seen by only one of the two sources.
type CoverageExample struct {
	URL         string  `json:"url"`
	Impressions float64 `json:"impressions,omitempty"`
	Clicks      float64 `json:"clicks,omitempty"`
	Sessions    float64 `json:"sessions,omitempty"`
	Conversions float64 `json:"conversions,omitempty"`
}

// CoverageReport shows merge coverage and the largest mismatches
// between the two sources.
type CoverageReport struct {
	Counts         CoverageCounts    `json:"counts"`
	TopSearchOnly  []CoverageExample `json:"top_search_only"`
	TopTrafficOnly []CoverageExample `json:"top_traffic_only"`
}

// QueryOpportunity is a query/page pair with high impressions and weak CTR.
type QueryOpportunity struct {
	Query              string   `json:"query"`
	Page               string   `json:"page"`
	Score              float64  `json:"score"`
	Clicks             float64  `json:"clicks"`
	Impressions        float64  `json:"impressions"`
	CTR                float64  `json:"ctr"`
	Position           float64  `json:"position"`
	Sessions           float64  `json:"sessions"`
	ConversionRate     float64  `json:"conversion_rate"`
	RecommendedActions []string `json:"recommended_actions"`
}

// Topic is a query token cluster with accumulated demand metrics.
type Topic struct {
	Topic       string  `json:"topic"`
	QueryCount  int     `json:"query_count"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	CTR         float64 `json:"ctr"`
}
