package insight

import "testing"

func TestFindQueryOpportunities(t *testing.T) {
	rows := []SearchRow{
		// Big gap, big volume: should rank first.
		{Keys: []string{"buy widgets", "https://example.com/widgets"}, Clicks: 5, Impressions: 2000, CTR: 0.0025, Position: 9},
		// Above-target CTR: filtered out.
		{Keys: []string{"widget reviews", "https://example.com/widgets"}, Clicks: 90, Impressions: 1500, CTR: 0.06, Position: 2},
		// Below the impression floor: filtered out.
		{Keys: []string{"cheap widgets", "https://example.com/widgets"}, Clicks: 0, Impressions: 40, CTR: 0.0, Position: 30},
		// Single-key row: skipped.
		{Keys: []string{"orphan query"}, Clicks: 1, Impressions: 900, CTR: 0.001},
		{Keys: []string{"widget guide", "https://example.com/guides"}, Clicks: 6, Impressions: 400, CTR: 0.015, Position: 11},
	}
	trafficPages := map[string]TrafficAggregate{
		"https://example.com/widgets": {Sessions: 300, ConversionRate: 0.001},
	}

	opps := FindQueryOpportunities(rows, trafficPages, DefaultThresholds(), NormalizeOptions{}, 100, 10)
	if len(opps) != 2 {
		t.Fatalf("expected 2 opportunities, got %d: %+v", len(opps), opps)
	}

	first := opps[0]
	if first.Query != "buy widgets" {
		t.Fatalf("top opportunity = %q, want %q", first.Query, "buy widgets")
	}
	// gap (0.03-0.0025)/0.03 drives 55*... capped path: gap*60 + 2*4,
	// then +15 because the page converts below target.
	gap := (0.03 - 0.0025) / 0.03
	want := roundTo(gap*60+(2000.0/1000)*4+15, 2)
	if first.Score != want {
		t.Fatalf("top score = %v, want %v", first.Score, want)
	}
	if first.Sessions != 300 {
		t.Fatalf("opportunity should join traffic context, got sessions %v", first.Sessions)
	}
	if len(first.RecommendedActions) != 3 {
		t.Fatalf("expected 3 recommended actions, got %d", len(first.RecommendedActions))
	}

	second := opps[1]
	if second.Query != "widget guide" {
		t.Fatalf("second opportunity = %q, want %q", second.Query, "widget guide")
	}
	if second.Sessions != 0 {
		t.Fatalf("page without traffic should report zero sessions, got %v", second.Sessions)
	}
	if second.Score >= first.Score {
		t.Fatalf("opportunities not ranked by score: %v then %v", first.Score, second.Score)
	}
}

func TestFindQueryOpportunitiesTopN(t *testing.T) {
	rows := []SearchRow{
		{Keys: []string{"q1", "https://example.com/a"}, Impressions: 500, CTR: 0.01},
		{Keys: []string{"q2", "https://example.com/b"}, Impressions: 600, CTR: 0.01},
		{Keys: []string{"q3", "https://example.com/c"}, Impressions: 700, CTR: 0.01},
	}
	opps := FindQueryOpportunities(rows, nil, DefaultThresholds(), NormalizeOptions{}, 100, 2)
	if len(opps) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(opps))
	}
}

func TestBuildTopicClusters(t *testing.T) {
	rows := []SearchRow{
		{Keys: []string{"best widget brands"}, Clicks: 10, Impressions: 1000, CTR: 0.01},
		{Keys: []string{"Widget repair guide"}, Clicks: 4, Impressions: 500, CTR: 0.008},
		{Keys: []string{"how to fix a widget"}, Clicks: 2, Impressions: 300, CTR: 0.0067},
		// Below the per-query floor: ignored entirely.
		{Keys: []string{"widget trivia"}, Clicks: 0, Impressions: 5, CTR: 0},
	}

	topics := BuildTopicClusters(rows, 100, 10)
	if len(topics) == 0 {
		t.Fatal("expected topics")
	}
	top := topics[0]
	if top.Topic != "widget" {
		t.Fatalf("top topic = %q, want widget", top.Topic)
	}
	if top.QueryCount != 3 {
		t.Fatalf("widget query count = %d, want 3 (case-insensitive)", top.QueryCount)
	}
	if top.Impressions != 1800 {
		t.Fatalf("widget impressions = %v, want 1800", top.Impressions)
	}

	for _, topic := range topics {
		if _, stop := queryStopWords[topic.Topic]; stop {
			t.Fatalf("stop word %q leaked into topics", topic.Topic)
		}
		if len(topic.Topic) < 3 {
			t.Fatalf("short token %q leaked into topics", topic.Topic)
		}
	}
}

func TestQueryTokens(t *testing.T) {
	tokens := queryTokens("how to fix a left-handed widget")
	if _, ok := tokens["how"]; ok {
		t.Fatal("stop word should be dropped")
	}
	if _, ok := tokens["to"]; ok {
		t.Fatal("short stop word should be dropped")
	}
	for _, want := range []string{"fix", "left", "handed", "widget"} {
		if _, ok := tokens[want]; !ok {
			t.Fatalf("token %q missing from %v", want, tokens)
		}
	}
}

func TestBuildTopicClustersWeightedCTR(t *testing.T) {
	rows := []SearchRow{
		{Keys: []string{"widget alpha"}, Impressions: 100, CTR: 0.10},
		{Keys: []string{"widget beta"}, Impressions: 300, CTR: 0.02},
	}
	topics := BuildTopicClusters(rows, 0, 10)
	for _, topic := range topics {
		if topic.Topic == "widget" {
			if topic.CTR != 0.04 {
				t.Fatalf("widget CTR = %v, want impression-weighted 0.04", topic.CTR)
			}
			return
		}
	}
	t.Fatal("widget topic missing")
}
