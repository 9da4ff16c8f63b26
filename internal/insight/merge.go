package insight

import "sort"

// DeltaPct returns the relative change of current versus previous, or
// nil when the previous value is non-positive. A zero baseline carries
// no signal and must not masquerade as a 0% change.
func DeltaPct(current, previous float64) *float64 {
	if previous <= 0 {
		return nil
	}
	delta := (current - previous) / previous
	return &delta
}

// MergePageMetrics joins current- and previous-period aggregates from
// both sources into one record per URL. The URL universe is the union of
// all four key sets and the result is ordered lexicographically so that
// downstream ranking is reproducible for equal scores. A URL missing
// from a source keeps that source's zero-value aggregate; previous
// values stay nil when the URL has no prior-period data.
func MergePageMetrics(searchCur map[string]SearchAggregate, trafficCur map[string]TrafficAggregate, searchPrev map[string]SearchAggregate, trafficPrev map[string]TrafficAggregate) []PageRecord {
	universe := make(map[string]struct{}, len(searchCur)+len(trafficCur))
	for url := range searchCur {
		universe[url] = struct{}{}
	}
	for url := range trafficCur {
		universe[url] = struct{}{}
	}
	for url := range searchPrev {
		universe[url] = struct{}{}
	}
	for url := range trafficPrev {
		universe[url] = struct{}{}
	}

	urls := make([]string, 0, len(universe))
	for url := range universe {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	merged := make([]PageRecord, 0, len(urls))
	for _, url := range urls {
		record := PageRecord{
			URL:     url,
			Search:  searchCur[url],
			Traffic: trafficCur[url],
		}

		if prev, ok := searchPrev[url]; ok {
			clicks := prev.Clicks
			impressions := prev.Impressions
			record.Previous.Clicks = &clicks
			record.Previous.Impressions = &impressions
		}
		if prev, ok := trafficPrev[url]; ok {
			sessions := prev.Sessions
			conversions := prev.Conversions
			record.Previous.Sessions = &sessions
			record.Previous.Conversions = &conversions
		}

		if record.Previous.Clicks != nil {
			record.ClicksDeltaPct = DeltaPct(record.Search.Clicks, *record.Previous.Clicks)
		}
		if record.Previous.Impressions != nil {
			record.ImpressionsDeltaPct = DeltaPct(record.Search.Impressions, *record.Previous.Impressions)
		}
		if record.Previous.Sessions != nil {
			record.SessionsDeltaPct = DeltaPct(record.Traffic.Sessions, *record.Previous.Sessions)
		}
		if record.Previous.Conversions != nil {
			record.ConversionsDeltaPct = DeltaPct(record.Traffic.Conversions, *record.Previous.Conversions)
		}

		merged = append(merged, record)
	}

	return merged
}
