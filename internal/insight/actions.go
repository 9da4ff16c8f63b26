package insight

import "sort"

// GenerateActionItems scores every merged record and returns the ranked
// improvement list. Records that trigger no heuristic are dropped.
// Ordering is descending by score with confidence as the tie-break, and
// the list is truncated to maxItems (the configured default when
// maxItems <= 0) with a floor of one surviving item.
func GenerateActionItems(pages []PageRecord, limits Thresholds, maxItems int) []ActionItem {
	limit := maxItems
	if limit <= 0 {
		limit = limits.MaxActionItems
	}

	items := make([]ActionItem, 0, len(pages))
	for _, page := range pages {
		result := ScorePage(page, limits)
		if result.Score <= 0 {
			continue
		}

		category := "opportunity"
		if len(result.Categories) > 0 {
			category = result.Categories[0]
		}

		items = append(items, ActionItem{
			URL:                page.URL,
			Score:              result.Score,
			Priority:           result.Priority,
			Category:           category,
			Categories:         result.Categories,
			ExpectedImpact:     result.ExpectedImpact,
			Effort:             result.Effort,
			Confidence:         result.Confidence,
			Reasons:            result.Reasons,
			RecommendedActions: result.Recommendations,
			Evidence: Evidence{
				Impressions:      roundTo(page.Search.Impressions, 2),
				Clicks:           roundTo(page.Search.Clicks, 2),
				CTR:              roundTo(page.Search.CTR, 4),
				Position:         roundTo(page.Search.Position, 2),
				Sessions:         roundTo(page.Traffic.Sessions, 2),
				EngagementRate:   roundTo(page.Traffic.EngagementRate, 4),
				ConversionRate:   roundTo(page.Traffic.ConversionRate, 4),
				ClicksDeltaPct:   page.ClicksDeltaPct,
				SessionsDeltaPct: page.SessionsDeltaPct,
			},
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Confidence > items[j].Confidence
	})

	if limit < 1 {
		limit = 1
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
