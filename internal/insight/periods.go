package insight

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive reporting window expressed as ISO dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	ts, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return ts, nil
}

// Contains reports whether the ISO date falls inside the range.
// ISO dates compare correctly as strings.
func (r DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// CurrentAndPreviousRanges resolves the current reporting window and the
// adjacent, equal-length previous window. An empty end defaults to
// yesterday; an empty start defaults to lookbackDays ending at end.
func CurrentAndPreviousRanges(startDate, endDate string, lookbackDays int, now time.Time) (DateRange, DateRange, error) {
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	end := now.AddDate(0, 0, -1)
	if endDate != "" {
		parsed, err := ParseDate(endDate)
		if err != nil {
			return DateRange{}, DateRange{}, err
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -(lookbackDays - 1))
	if startDate != "" {
		parsed, err := ParseDate(startDate)
		if err != nil {
			return DateRange{}, DateRange{}, err
		}
		start = parsed
	}

	if start.After(end) {
		return DateRange{}, DateRange{}, fmt.Errorf("start date %s is after end date %s", start.Format(dateLayout), end.Format(dateLayout))
	}

	spanDays := int(end.Sub(start).Hours()/24) + 1
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(spanDays - 1))

	current := DateRange{Start: start.Format(dateLayout), End: end.Format(dateLayout)}
	previous := DateRange{Start: prevStart.Format(dateLayout), End: prevEnd.Format(dateLayout)}
	return current, previous, nil
}
