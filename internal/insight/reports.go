package insight

import "sort"

// SummarizePortfolio computes site-wide totals over the merged dataset.
// Blended rates divide totals by totals, never averaging per-page rates,
// and fall back to zero under a zero denominator.
func SummarizePortfolio(pages []PageRecord) PortfolioSummary {
	summary := PortfolioSummary{TotalPages: len(pages)}
	for _, page := range pages {
		summary.TotalClicks += page.Search.Clicks
		summary.TotalImpressions += page.Search.Impressions
		summary.TotalSessions += page.Traffic.Sessions
		summary.TotalConversions += page.Traffic.Conversions
	}

	summary.PortfolioCTR = roundTo(weightedAverage(summary.TotalClicks, summary.TotalImpressions), 4)
	summary.PortfolioConversionRate = roundTo(weightedAverage(summary.TotalConversions, summary.TotalSessions), 4)
	summary.TotalClicks = roundTo(summary.TotalClicks, 2)
	summary.TotalImpressions = roundTo(summary.TotalImpressions, 2)
	summary.TotalSessions = roundTo(summary.TotalSessions, 2)
	summary.TotalConversions = roundTo(summary.TotalConversions, 2)
	return summary
}

// BuildPopularitySnapshot returns the top pages per headline metric.
func BuildPopularitySnapshot(pages []PageRecord, topN int) PopularitySnapshot {
	if topN < 1 {
		topN = 1
	}
	return PopularitySnapshot{
		TopByClicks:      topPages(pages, topN, func(p PageRecord) float64 { return p.Search.Clicks }),
		TopByImpressions: topPages(pages, topN, func(p PageRecord) float64 { return p.Search.Impressions }),
		TopBySessions:    topPages(pages, topN, func(p PageRecord) float64 { return p.Traffic.Sessions }),
		TopByConversions: topPages(pages, topN, func(p PageRecord) float64 { return p.Traffic.Conversions }),
	}
}

func topPages(pages []PageRecord, topN int, metric func(PageRecord) float64) []PageStat {
	rows := make([]PageRecord, len(pages))
	copy(rows, pages)
	sort.SliceStable(rows, func(i, j int) bool {
		return metric(rows[i]) > metric(rows[j])
	})

	if len(rows) > topN {
		rows = rows[:topN]
	}

	out := make([]PageStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, PageStat{
			URL:         row.URL,
			Value:       roundTo(metric(row), 4),
			Clicks:      roundTo(row.Search.Clicks, 2),
			Sessions:    roundTo(row.Traffic.Sessions, 2),
			Conversions: roundTo(row.Traffic.Conversions, 2),
		})
	}
	return out
}

// BuildTrendReport surfaces the strongest gainers and decliners for
// clicks and sessions. Records without a numeric delta carry no trend
// signal and are excluded rather than treated as flat.
func BuildTrendReport(pages []PageRecord, topN int) TrendReport {
	if topN < 1 {
		topN = 1
	}

	clickDelta := func(p PageRecord) *float64 { return p.ClicksDeltaPct }
	sessionDelta := func(p PageRecord) *float64 { return p.SessionsDeltaPct }

	return TrendReport{
		ClickGainers:     trendEntries(pages, topN, clickDelta, true),
		ClickDecliners:   trendEntries(pages, topN, clickDelta, false),
		SessionGainers:   trendEntries(pages, topN, sessionDelta, true),
		SessionDecliners: trendEntries(pages, topN, sessionDelta, false),
	}
}

func trendEntries(pages []PageRecord, topN int, delta func(PageRecord) *float64, descending bool) []TrendEntry {
	var rows []PageRecord
	for _, page := range pages {
		if delta(page) != nil {
			rows = append(rows, page)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return *delta(rows[i]) > *delta(rows[j])
		}
		return *delta(rows[i]) < *delta(rows[j])
	})

	if len(rows) > topN {
		rows = rows[:topN]
	}

	out := make([]TrendEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, TrendEntry{
			URL:      row.URL,
			DeltaPct: roundTo(*delta(row), 4),
			Clicks:   roundTo(row.Search.Clicks, 2),
			Sessions: roundTo(row.Traffic.Sessions, 2),
		})
	}
	return out
}

// BuildCoverageReport partitions the URL universe by which sources saw
// each page and lists the largest single-source mismatches, ranked by
// whichever metric is present.
func BuildCoverageReport(pages []PageRecord, topN int) CoverageReport {
	if topN < 1 {
		topN = 1
	}

	var searchOnly, trafficOnly []PageRecord
	counts := CoverageCounts{TotalPages: len(pages)}

	for _, page := range pages {
		hasSearch := page.Search.Impressions > 0
		hasTraffic := page.Traffic.Sessions > 0
		if hasSearch {
			counts.PagesWithSearch++
		}
		if hasTraffic {
			counts.PagesWithTraffic++
		}
		switch {
		case hasSearch && hasTraffic:
			counts.PagesWithBoth++
		case hasSearch:
			counts.SearchOnlyPages++
			searchOnly = append(searchOnly, page)
		case hasTraffic:
			counts.TrafficOnlyPages++
			trafficOnly = append(trafficOnly, page)
		}
	}

	sort.SliceStable(searchOnly, func(i, j int) bool {
		return searchOnly[i].Search.Impressions > searchOnly[j].Search.Impressions
	})
	sort.SliceStable(trafficOnly, func(i, j int) bool {
		return trafficOnly[i].Traffic.Sessions > trafficOnly[j].Traffic.Sessions
	})

	if len(searchOnly) > topN {
		searchOnly = searchOnly[:topN]
	}
	if len(trafficOnly) > topN {
		trafficOnly = trafficOnly[:topN]
	}

	report := CoverageReport{Counts: counts}
	for _, page := range searchOnly {
		report.TopSearchOnly = append(report.TopSearchOnly, CoverageExample{
			URL:         page.URL,
			Impressions: roundTo(page.Search.Impressions, 2),
			Clicks:      roundTo(page.Search.Clicks, 2),
		})
	}
	for _, page := range trafficOnly {
		report.TopTrafficOnly = append(report.TopTrafficOnly, CoverageExample{
			URL:         page.URL,
			Sessions:    roundTo(page.Traffic.Sessions, 2),
			Conversions: roundTo(page.Traffic.Conversions, 2),
		})
	}
	return report
}
