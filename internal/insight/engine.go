package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const datasetCacheSize = 32

// Query identifies a reporting window. Empty dates resolve to the
// configured lookback ending yesterday.
type Query struct {
	StartDate       string
	EndDate         string
	IncludePrevious bool
}

// Dataset is the reconciled row-per-URL view of one reporting window.
// Cached datasets are shared; callers must treat Pages as read-only.
type Dataset struct {
	Current      DateRange    `json:"current"`
	Previous     DateRange    `json:"previous"`
	SearchPages  int          `json:"search_pages"`
	TrafficPages int          `json:"traffic_pages"`
	Pages        []PageRecord `json:"pages"`
}

// ActionSummary aggregates the generated action items.
type ActionSummary struct {
	TotalItems     int              `json:"total_items"`
	PriorityCounts map[string]int   `json:"priority_counts"`
	CategoryCounts map[string]int   `json:"category_counts"`
	Portfolio      PortfolioSummary `json:"portfolio"`
}

// ActionReport is the ranked action-item list plus its summary.
type ActionReport struct {
	Current  DateRange     `json:"current"`
	Previous DateRange     `json:"previous"`
	Summary  ActionSummary `json:"summary"`
	Items    []ActionItem  `json:"items"`
}

// Engine orchestrates fetching, aggregation, merging, and reporting.
// Merged datasets are memoised per resolved window in a bounded cache so
// repeated report calls over the same window compute the merge once.
type Engine struct {
	sources      *Registry
	limits       Thresholds
	normalize    NormalizeOptions
	lookbackDays int
	log          zerolog.Logger
	cache        *lru.Cache[string, *Dataset]
	now          func() time.Time
}

// NewEngine constructs an Engine over the given sources.
func NewEngine(sources *Registry, limits Thresholds, normalize NormalizeOptions, lookbackDays int, logger zerolog.Logger) (*Engine, error) {
	if sources == nil {
		return nil, errors.New("engine requires sources")
	}
	if lookbackDays < 1 {
		lookbackDays = 28
	}
	cache, err := lru.New[string, *Dataset](datasetCacheSize)
	if err != nil {
		return nil, fmt.Errorf("dataset cache: %w", err)
	}
	return &Engine{
		sources:      sources,
		limits:       limits,
		normalize:    normalize,
		lookbackDays: lookbackDays,
		log:          logger,
		cache:        cache,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// Limits returns the thresholds the engine scores with.
func (e *Engine) Limits() Thresholds { return e.limits }

// Invalidate drops every memoised dataset. Called after ingest so new
// rows become visible to subsequent reports.
func (e *Engine) Invalidate() {
	e.cache.Purge()
}

// MergedPages resolves the query window and returns the reconciled
// dataset, computing it on first use per window.
func (e *Engine) MergedPages(ctx context.Context, q Query) (*Dataset, error) {
	current, previous, err := CurrentAndPreviousRanges(q.StartDate, q.EndDate, e.lookbackDays, e.now())
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s|%s|%t", current.Start, current.End, q.IncludePrevious)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	searchRows, err := e.sources.FetchSearch(ctx, current, []string{PageDimension})
	if err != nil {
		return nil, err
	}
	trafficRows, err := e.sources.FetchTraffic(ctx, current)
	if err != nil {
		return nil, err
	}

	searchCur := AggregateSearchRows(searchRows, []string{PageDimension}, e.normalize)
	trafficCur := AggregateTrafficRows(trafficRows, nil, e.normalize)

	var searchPrev map[string]SearchAggregate
	var trafficPrev map[string]TrafficAggregate
	if q.IncludePrevious {
		prevSearchRows, err := e.sources.FetchSearch(ctx, previous, []string{PageDimension})
		if err != nil {
			return nil, err
		}
		prevTrafficRows, err := e.sources.FetchTraffic(ctx, previous)
		if err != nil {
			return nil, err
		}
		searchPrev = AggregateSearchRows(prevSearchRows, []string{PageDimension}, e.normalize)
		trafficPrev = AggregateTrafficRows(prevTrafficRows, nil, e.normalize)
	}

	pages := MergePageMetrics(searchCur, trafficCur, searchPrev, trafficPrev)

	dataset := &Dataset{
		Current:      current,
		Previous:     previous,
		SearchPages:  len(searchCur),
		TrafficPages: len(trafficCur),
		Pages:        pages,
	}
	e.cache.Add(key, dataset)

	e.log.Debug().
		Str("start", current.Start).
		Str("end", current.End).
		Int("search_pages", len(searchCur)).
		Int("traffic_pages", len(trafficCur)).
		Int("merged_pages", len(pages)).
		Msg("dataset merged")

	return dataset, nil
}

// ActionItems generates the ranked action-item report for the window,
// optionally filtered to the given priority tiers.
func (e *Engine) ActionItems(ctx context.Context, q Query, maxItems int, priorities []string) (*ActionReport, error) {
	q.IncludePrevious = true
	dataset, err := e.MergedPages(ctx, q)
	if err != nil {
		return nil, err
	}

	items := GenerateActionItems(dataset.Pages, e.limits, maxItems)

	if len(priorities) > 0 {
		allowed := make(map[string]struct{}, len(priorities))
		for _, p := range priorities {
			allowed[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
		}
		filtered := items[:0]
		for _, item := range items {
			if _, ok := allowed[item.Priority]; ok {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	summary := ActionSummary{
		TotalItems:     len(items),
		PriorityCounts: make(map[string]int),
		CategoryCounts: make(map[string]int),
		Portfolio:      SummarizePortfolio(dataset.Pages),
	}
	for _, item := range items {
		summary.PriorityCounts[item.Priority]++
		summary.CategoryCounts[item.Category]++
	}

	return &ActionReport{
		Current:  dataset.Current,
		Previous: dataset.Previous,
		Summary:  summary,
		Items:    items,
	}, nil
}

// Popularity returns the top-pages snapshot for the window.
func (e *Engine) Popularity(ctx context.Context, q Query, topN int) (*Dataset, PopularitySnapshot, error) {
	q.IncludePrevious = false
	dataset, err := e.MergedPages(ctx, q)
	if err != nil {
		return nil, PopularitySnapshot{}, err
	}
	return dataset, BuildPopularitySnapshot(dataset.Pages, topN), nil
}

// Trends returns the gainers/decliners report for the window.
func (e *Engine) Trends(ctx context.Context, q Query, topN int) (*Dataset, TrendReport, error) {
	q.IncludePrevious = true
	dataset, err := e.MergedPages(ctx, q)
	if err != nil {
		return nil, TrendReport{}, err
	}
	return dataset, BuildTrendReport(dataset.Pages, topN), nil
}

// Coverage returns the source-coverage report for the window.
func (e *Engine) Coverage(ctx context.Context, q Query, topN int) (*Dataset, CoverageReport, error) {
	q.IncludePrevious = false
	dataset, err := e.MergedPages(ctx, q)
	if err != nil {
		return nil, CoverageReport{}, err
	}
	return dataset, BuildCoverageReport(dataset.Pages, topN), nil
}

// Opportunities scans query+page pairs in the window for weak-CTR
// opportunities, matched against traffic aggregates.
func (e *Engine) Opportunities(ctx context.Context, q Query, minImpressions float64, topN int) (DateRange, []QueryOpportunity, error) {
	current, _, err := CurrentAndPreviousRanges(q.StartDate, q.EndDate, e.lookbackDays, e.now())
	if err != nil {
		return DateRange{}, nil, err
	}

	pairRows, err := e.sources.FetchSearch(ctx, current, []string{"query", PageDimension})
	if err != nil {
		return DateRange{}, nil, err
	}
	trafficRows, err := e.sources.FetchTraffic(ctx, current)
	if err != nil {
		return DateRange{}, nil, err
	}
	trafficPages := AggregateTrafficRows(trafficRows, nil, e.normalize)

	return current, FindQueryOpportunities(pairRows, trafficPages, e.limits, e.normalize, minImpressions, topN), nil
}

// Topics extracts high-impact query token clusters for the window.
func (e *Engine) Topics(ctx context.Context, q Query, minImpressions float64, topN int) (DateRange, []Topic, error) {
	current, _, err := CurrentAndPreviousRanges(q.StartDate, q.EndDate, e.lookbackDays, e.now())
	if err != nil {
		return DateRange{}, nil, err
	}

	rows, err := e.sources.FetchSearch(ctx, current, []string{"query"})
	if err != nil {
		return DateRange{}, nil, err
	}
	return current, BuildTopicClusters(rows, minImpressions, topN), nil
}
