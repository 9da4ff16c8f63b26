package insight

import (
	"math"
	"sort"
	"strings"
)

var queryStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "to": {}, "of": {}, "for": {},
	"in": {}, "on": {}, "with": {}, "and": {}, "or": {}, "is": {},
	"are": {}, "what": {}, "how": {}, "why": {}, "when": {},
}

// FindQueryOpportunities scans query+page rows for high-impression pairs
// with below-target CTR. Each surviving pair gets a 0-100 opportunity
// score from the CTR gap and impression volume, boosted when the page's
// traffic shows sessions but weak conversion. Rows with fewer than two
// keys are skipped.
func FindQueryOpportunities(rows []SearchRow, trafficPages map[string]TrafficAggregate, limits Thresholds, opts NormalizeOptions, minImpressions float64, topN int) []QueryOpportunity {
	if topN < 1 {
		topN = 1
	}

	var opportunities []QueryOpportunity
	for _, row := range rows {
		if len(row.Keys) < 2 {
			continue
		}
		query, page := row.Keys[0], row.Keys[1]
		if row.Impressions < minImpressions {
			continue
		}
		if row.CTR >= limits.TargetCTR {
			continue
		}

		normalized := NormalizeURL(page, opts)
		traffic, ok := trafficPages[normalized]
		if !ok {
			traffic = trafficPages[page]
		}

		gap := (limits.TargetCTR - row.CTR) / math.Max(limits.TargetCTR, 1e-6)
		if gap < 0 {
			gap = 0
		}
		score := math.Min(100, gap*60+(row.Impressions/1000)*4)
		if traffic.Sessions > 0 && traffic.ConversionRate < limits.TargetConversionRate {
			score += 15
		}

		opportunities = append(opportunities, QueryOpportunity{
			Query:          query,
			Page:           page,
			Score:          roundTo(score, 2),
			Clicks:         roundTo(row.Clicks, 2),
			Impressions:    roundTo(row.Impressions, 2),
			CTR:            roundTo(row.CTR, 4),
			Position:       roundTo(row.Position, 2),
			Sessions:       roundTo(traffic.Sessions, 2),
			ConversionRate: roundTo(traffic.ConversionRate, 4),
			RecommendedActions: []string{
				"Align title/H1 with the query intent and expected SERP promise.",
				"Add/strengthen content section directly answering this query.",
				"Improve internal links from related pages using intent-matching anchor text.",
			},
		})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Score > opportunities[j].Score
	})
	if len(opportunities) > topN {
		opportunities = opportunities[:topN]
	}
	return opportunities
}

// BuildTopicClusters tokenizes query rows into topic tokens and
// accumulates demand per token. CTR per topic is impression-weighted.
// Topics rank by impressions then query count.
func BuildTopicClusters(rows []SearchRow, minQueryImpressions float64, topN int) []Topic {
	if topN < 1 {
		topN = 1
	}

	type tokenStats struct {
		queries     int
		impressions float64
		clicks      float64
		ctrSum      float64
	}
	stats := make(map[string]*tokenStats)

	for _, row := range rows {
		if len(row.Keys) == 0 {
			continue
		}
		query := strings.ToLower(strings.TrimSpace(row.Keys[0]))
		if query == "" {
			continue
		}
		if row.Impressions < minQueryImpressions {
			continue
		}

		for token := range queryTokens(query) {
			data, ok := stats[token]
			if !ok {
				data = &tokenStats{}
				stats[token] = data
			}
			data.queries++
			data.impressions += row.Impressions
			data.clicks += row.Clicks
			data.ctrSum += row.CTR * row.Impressions
		}
	}

	topics := make([]Topic, 0, len(stats))
	for token, data := range stats {
		topics = append(topics, Topic{
			Topic:       token,
			QueryCount:  data.queries,
			Impressions: roundTo(data.impressions, 2),
			Clicks:      roundTo(data.clicks, 2),
			CTR:         roundTo(weightedAverage(data.ctrSum, data.impressions), 4),
		})
	}

	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].Impressions != topics[j].Impressions {
			return topics[i].Impressions > topics[j].Impressions
		}
		if topics[i].QueryCount != topics[j].QueryCount {
			return topics[i].QueryCount > topics[j].QueryCount
		}
		return topics[i].Topic < topics[j].Topic
	})
	if len(topics) > topN {
		topics = topics[:topN]
	}
	return topics
}

// queryTokens splits a query into unique candidate topic tokens,
// dropping stop words and tokens shorter than three characters.
func queryTokens(query string) map[string]struct{} {
	fields := strings.Fields(strings.ReplaceAll(query, "-", " "))
	tokens := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if len(field) < 3 {
			continue
		}
		if _, stop := queryStopWords[field]; stop {
			continue
		}
		tokens[field] = struct{}{}
	}
	return tokens
}
