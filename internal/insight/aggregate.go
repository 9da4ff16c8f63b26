package insight

// PageDimension is the search dimension carrying the page URL.
const PageDimension = "page"

// DefaultTrafficURLDimensions lists the traffic dimension names probed,
// in order, for a page URL. Multiple candidates keep the aggregator
// compatible with differently configured source queries.
var DefaultTrafficURLDimensions = []string{
	"landingPagePlusQueryString",
	"landingPage",
	"fullPageUrl",
	"pageLocation",
	"pagePath",
}

// AggregateSearchRows folds raw search rows into one aggregate per
// normalized URL. The URL is taken from the dimension named "page" in
// dims, falling back to the first key. Clicks and impressions are
// summed; CTR and position are impression-weighted averages. Rows with
// no resolvable URL are skipped.
func AggregateSearchRows(rows []SearchRow, dims []string, opts NormalizeOptions) map[string]SearchAggregate {
	if len(dims) == 0 {
		dims = []string{PageDimension}
	}
	pageIndex := 0
	for i, dim := range dims {
		if dim == PageDimension {
			pageIndex = i
			break
		}
	}

	type weighted struct {
		agg         SearchAggregate
		ctrSum      float64
		positionSum float64
	}
	bucket := make(map[string]*weighted)

	for _, row := range rows {
		if pageIndex >= len(row.Keys) {
			continue
		}
		url := NormalizeURL(row.Keys[pageIndex], opts)
		if url == "" {
			continue
		}

		item, ok := bucket[url]
		if !ok {
			item = &weighted{}
			bucket[url] = item
		}
		item.agg.Clicks += row.Clicks
		item.agg.Impressions += row.Impressions
		item.ctrSum += row.CTR * row.Impressions
		item.positionSum += row.Position * row.Impressions
		item.agg.Rows++
	}

	out := make(map[string]SearchAggregate, len(bucket))
	for url, item := range bucket {
		item.agg.CTR = weightedAverage(item.ctrSum, item.agg.Impressions)
		item.agg.Position = weightedAverage(item.positionSum, item.agg.Impressions)
		out[url] = item.agg
	}
	return out
}

// AggregateTrafficRows folds raw traffic rows into one aggregate per
// normalized URL. The URL comes from the first non-empty dimension among
// urlDims (DefaultTrafficURLDimensions when nil). Counts are summed;
// engagement and conversion rates are derived against total sessions.
func AggregateTrafficRows(rows []TrafficRow, urlDims []string, opts NormalizeOptions) map[string]TrafficAggregate {
	if len(urlDims) == 0 {
		urlDims = DefaultTrafficURLDimensions
	}

	bucket := make(map[string]*TrafficAggregate)

	for _, row := range rows {
		var raw string
		for _, dim := range urlDims {
			if v := row.Dimensions[dim]; v != "" {
				raw = v
				break
			}
		}
		if raw == "" {
			continue
		}
		url := NormalizeURL(raw, opts)
		if url == "" {
			continue
		}

		item, ok := bucket[url]
		if !ok {
			item = &TrafficAggregate{}
			bucket[url] = item
		}
		item.Sessions += row.Metric("sessions")
		item.EngagedSessions += row.Metric("engagedSessions")
		item.Conversions += row.Metric("conversions")
		item.TotalUsers += row.Metric("totalUsers")
		item.PageViews += row.Metric("screenPageViews")
		item.EngagementDuration += row.Metric("userEngagementDuration")
		item.Rows++
	}

	out := make(map[string]TrafficAggregate, len(bucket))
	for url, item := range bucket {
		item.EngagementRate = weightedAverage(item.EngagedSessions, item.Sessions)
		item.ConversionRate = weightedAverage(item.Conversions, item.Sessions)
		out[url] = *item
	}
	return out
}

// weightedAverage divides a weighted sum by its total weight, falling
// back to zero when the weight is non-positive.
func weightedAverage(sum, weight float64) float64 {
	if weight <= 0 {
		return 0
	}
	return sum / weight
}
