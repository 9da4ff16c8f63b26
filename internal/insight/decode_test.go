package insight

import (
	"encoding/json"
	"testing"
)

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{raw: `12.5`, want: 12.5},
		{raw: `"12.5"`, want: 12.5},
		{raw: `"0.03"`, want: 0.03},
		{raw: `null`, want: 0},
		{raw: `"n/a"`, want: 0},
		{raw: `""`, want: 0},
	}
	for _, tt := range tests {
		var f flexFloat
		if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if float64(f) != tt.want {
			t.Errorf("flexFloat(%s) = %v, want %v", tt.raw, float64(f), tt.want)
		}
	}
}

func TestDecodeSearchDocument(t *testing.T) {
	doc := []byte(`{
		"dimensions": ["query", "page"],
		"rows": [
			{"date": "2026-08-10", "keys": ["widget pricing", "https://example.com/w"], "clicks": "12", "impressions": 1400, "ctr": 0.0086, "position": "11.2"},
			{"date": "2026-08-11", "keys": [], "clicks": 5, "impressions": 100}
		]
	}`)
	dims, rows, err := decodeSearchDocument(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dims) != 2 || dims[0] != "query" {
		t.Fatalf("dims = %v", dims)
	}
	if len(rows) != 1 {
		t.Fatalf("keyless row should be dropped, got %d rows", len(rows))
	}
	row := rows[0]
	if row.date != "2026-08-10" {
		t.Fatalf("date = %s", row.date)
	}
	if row.row.Clicks != 12 || row.row.Position != 11.2 {
		t.Fatalf("string metrics not coerced: %+v", row.row)
	}
}

func TestDecodeSearchDocumentDefaultDimensions(t *testing.T) {
	dims, _, err := decodeSearchDocument([]byte(`{"rows": []}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dims) != 1 || dims[0] != PageDimension {
		t.Fatalf("dims = %v, want [page]", dims)
	}
}

func TestDecodeSearchDocumentMalformed(t *testing.T) {
	if _, _, err := decodeSearchDocument([]byte(`{"rows": "nope"`)); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestDecodeTrafficDocument(t *testing.T) {
	doc := []byte(`{
		"rows": [
			{"date": "2026-08-10", "dimensions": {"landingPage": "https://example.com/w"}, "metrics": {"sessions": "320", "conversions": null}},
			{"date": "2026-08-11", "metrics": {"sessions": 10}}
		]
	}`)
	rows, err := decodeTrafficDocument(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("dimension-less row should be dropped, got %d rows", len(rows))
	}
	row := rows[0].row
	if row.Metric("sessions") != 320 {
		t.Fatalf("string metric not coerced: %+v", row.Metrics)
	}
	if row.Metric("conversions") != 0 {
		t.Fatalf("null metric should coerce to zero, got %v", row.Metric("conversions"))
	}
	if row.Metric("absent") != 0 {
		t.Fatalf("missing metric should read as zero")
	}
}
