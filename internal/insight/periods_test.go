package insight

import (
	"testing"
	"time"
)

func TestCurrentAndPreviousRangesExplicit(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	current, previous, err := CurrentAndPreviousRanges("2026-08-01", "2026-08-28", 28, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Start != "2026-08-01" || current.End != "2026-08-28" {
		t.Fatalf("current = %+v", current)
	}
	// Adjacent 28-day window ending the day before the current start.
	if previous.Start != "2026-07-04" || previous.End != "2026-07-31" {
		t.Fatalf("previous = %+v", previous)
	}
}

func TestCurrentAndPreviousRangesDefaults(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	current, previous, err := CurrentAndPreviousRanges("", "", 7, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.End != "2026-08-28" {
		t.Fatalf("end should default to yesterday, got %s", current.End)
	}
	if current.Start != "2026-08-22" {
		t.Fatalf("start should default to a 7-day lookback, got %s", current.Start)
	}
	if previous.Start != "2026-08-15" || previous.End != "2026-08-21" {
		t.Fatalf("previous = %+v", previous)
	}
}

func TestCurrentAndPreviousRangesSingleDay(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	current, previous, err := CurrentAndPreviousRanges("2026-08-10", "2026-08-10", 28, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Start != current.End {
		t.Fatalf("current = %+v, want single day", current)
	}
	if previous.Start != "2026-08-09" || previous.End != "2026-08-09" {
		t.Fatalf("previous = %+v, want the single prior day", previous)
	}
}

func TestCurrentAndPreviousRangesErrors(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if _, _, err := CurrentAndPreviousRanges("2026-08-20", "2026-08-10", 28, now); err == nil {
		t.Fatal("expected error when start is after end")
	}
	if _, _, err := CurrentAndPreviousRanges("not-a-date", "", 28, now); err == nil {
		t.Fatal("expected error for malformed start date")
	}
	if _, _, err := CurrentAndPreviousRanges("", "2026/08/10", 28, now); err == nil {
		t.Fatal("expected error for malformed end date")
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: "2026-08-01", End: "2026-08-28"}
	for _, date := range []string{"2026-08-01", "2026-08-15", "2026-08-28"} {
		if !r.Contains(date) {
			t.Errorf("range should contain %s", date)
		}
	}
	for _, date := range []string{"2026-07-31", "2026-08-29"} {
		if r.Contains(date) {
			t.Errorf("range should exclude %s", date)
		}
	}
}
