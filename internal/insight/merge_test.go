package insight

import "testing"

func TestDeltaPct(t *testing.T) {
	if d := DeltaPct(120, 100); d == nil || !almostEqual(*d, 0.2) {
		t.Fatalf("DeltaPct(120, 100) = %v, want 0.2", d)
	}
	if d := DeltaPct(80, 100); d == nil || !almostEqual(*d, -0.2) {
		t.Fatalf("DeltaPct(80, 100) = %v, want -0.2", d)
	}
	if d := DeltaPct(50, 0); d != nil {
		t.Fatalf("DeltaPct with zero baseline = %v, want nil", *d)
	}
	if d := DeltaPct(50, -3); d != nil {
		t.Fatalf("DeltaPct with negative baseline = %v, want nil", *d)
	}
}

func TestMergePageMetricsUnion(t *testing.T) {
	searchCur := map[string]SearchAggregate{
		"https://example.com/x": {Clicks: 10, Impressions: 500, CTR: 0.02, Position: 6},
	}
	trafficCur := map[string]TrafficAggregate{
		"https://example.com/y": {Sessions: 200, Conversions: 4, ConversionRate: 0.02},
	}

	merged := MergePageMetrics(searchCur, trafficCur, nil, nil)
	if len(merged) != 2 {
		t.Fatalf("expected union of 2 urls, got %d", len(merged))
	}
	if merged[0].URL != "https://example.com/x" || merged[1].URL != "https://example.com/y" {
		t.Fatalf("urls out of lexicographic order: %q, %q", merged[0].URL, merged[1].URL)
	}

	x := merged[0]
	if x.Search.Clicks != 10 || x.Traffic.Sessions != 0 {
		t.Fatalf("search-only page carried wrong metrics: %+v", x)
	}
	y := merged[1]
	if y.Traffic.Sessions != 200 || y.Search.Impressions != 0 {
		t.Fatalf("traffic-only page carried wrong metrics: %+v", y)
	}
}

func TestMergePageMetricsPreviousNilVsZero(t *testing.T) {
	searchCur := map[string]SearchAggregate{
		"https://example.com/a": {Clicks: 24, Impressions: 1000},
		"https://example.com/b": {Clicks: 5, Impressions: 100},
	}
	searchPrev := map[string]SearchAggregate{
		"https://example.com/a": {Clicks: 30, Impressions: 900},
	}

	merged := MergePageMetrics(searchCur, nil, searchPrev, nil)
	if len(merged) != 2 {
		t.Fatalf("expected 2 records, got %d", len(merged))
	}

	a := merged[0]
	if a.Previous.Clicks == nil || *a.Previous.Clicks != 30 {
		t.Fatalf("previous clicks = %v, want 30", a.Previous.Clicks)
	}
	if a.ClicksDeltaPct == nil || !almostEqual(*a.ClicksDeltaPct, -0.2) {
		t.Fatalf("clicks delta = %v, want -0.2", a.ClicksDeltaPct)
	}

	b := merged[1]
	if b.Previous.Clicks != nil {
		t.Fatalf("page without prior data should keep previous clicks nil, got %v", *b.Previous.Clicks)
	}
	if b.ClicksDeltaPct != nil {
		t.Fatalf("page without prior data should keep clicks delta nil, got %v", *b.ClicksDeltaPct)
	}
}

func TestMergePageMetricsZeroBaselineDelta(t *testing.T) {
	searchCur := map[string]SearchAggregate{
		"https://example.com/a": {Clicks: 12, Impressions: 400},
	}
	searchPrev := map[string]SearchAggregate{
		"https://example.com/a": {Clicks: 0, Impressions: 200},
	}

	merged := MergePageMetrics(searchCur, nil, searchPrev, nil)
	a := merged[0]
	if a.Previous.Clicks == nil || *a.Previous.Clicks != 0 {
		t.Fatalf("previous clicks should be recorded as zero, got %v", a.Previous.Clicks)
	}
	if a.ClicksDeltaPct != nil {
		t.Fatalf("delta over a zero baseline must be nil, got %v", *a.ClicksDeltaPct)
	}
	if a.ImpressionsDeltaPct == nil || !almostEqual(*a.ImpressionsDeltaPct, 1.0) {
		t.Fatalf("impressions delta = %v, want 1.0", a.ImpressionsDeltaPct)
	}
}

func TestMergePageMetricsPreviousOnlyURL(t *testing.T) {
	searchPrev := map[string]SearchAggregate{
		"https://example.com/gone": {Clicks: 40, Impressions: 800},
	}
	merged := MergePageMetrics(nil, nil, searchPrev, nil)
	if len(merged) != 1 {
		t.Fatalf("previous-only url should still appear, got %d records", len(merged))
	}
	rec := merged[0]
	if rec.Search.Clicks != 0 {
		t.Fatalf("current clicks should be zero for vanished page, got %v", rec.Search.Clicks)
	}
	if rec.ClicksDeltaPct == nil || !almostEqual(*rec.ClicksDeltaPct, -1.0) {
		t.Fatalf("clicks delta = %v, want -1.0", rec.ClicksDeltaPct)
	}
}
