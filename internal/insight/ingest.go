package insight

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SearchIngest stores ad-hoc search row batches submitted via the API.
type SearchIngest struct {
	name    string
	mu      sync.RWMutex
	batches []searchBatch
}

type searchBatch struct {
	id   string
	dims []string
	rows []datedSearchRow
}

// NewSearchIngest constructs an empty search ingest source.
func NewSearchIngest(name string) *SearchIngest {
	if name == "" {
		name = "ingest-search"
	}
	return &SearchIngest{name: name}
}

// Name returns the source identifier.
func (s *SearchIngest) Name() string { return s.name }

// Add registers a batch of rows reported under the given dimension
// tuple and date, returning the generated batch ID.
func (s *SearchIngest) Add(date string, dims []string, rows []SearchRow) string {
	if len(dims) == 0 {
		dims = []string{PageDimension}
	}

	dated := make([]datedSearchRow, 0, len(rows))
	for _, row := range rows {
		if len(row.Keys) == 0 {
			continue
		}
		dated = append(dated, datedSearchRow{date: date, row: row})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.batches = append(s.batches, searchBatch{id: id, dims: dims, rows: dated})
	return id
}

// FetchSearch returns stored rows within the window, projected onto the
// requested dimensions. Batches that cannot satisfy the requested
// dimensions are skipped.
func (s *SearchIngest) FetchSearch(ctx context.Context, window DateRange, dims []string) ([]SearchRow, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SearchRow
	for _, batch := range s.batches {
		for _, entry := range batch.rows {
			if !window.Contains(entry.date) {
				continue
			}
			keys, err := projectKeys(batch.dims, dims, entry.row.Keys)
			if err != nil {
				break
			}
			row := entry.row
			row.Keys = keys
			out = append(out, row)
		}
	}
	return out, nil
}

// TrafficIngest stores ad-hoc traffic row batches submitted via the API.
type TrafficIngest struct {
	name string
	mu   sync.RWMutex
	rows []datedTrafficRow
}

// NewTrafficIngest constructs an empty traffic ingest source.
func NewTrafficIngest(name string) *TrafficIngest {
	if name == "" {
		name = "ingest-traffic"
	}
	return &TrafficIngest{name: name}
}

// Name returns the source identifier.
func (s *TrafficIngest) Name() string { return s.name }

// Add registers a batch of traffic rows for the given date and returns
// the generated batch ID. Rows without dimensions are dropped.
func (s *TrafficIngest) Add(date string, rows []TrafficRow) string {
	dated := make([]datedTrafficRow, 0, len(rows))
	for _, row := range rows {
		if len(row.Dimensions) == 0 {
			continue
		}
		dated = append(dated, datedTrafficRow{date: date, row: row})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, dated...)
	return uuid.NewString()
}

// FetchTraffic returns stored rows within the window.
func (s *TrafficIngest) FetchTraffic(ctx context.Context, window DateRange) ([]TrafficRow, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []TrafficRow
	for _, entry := range s.rows {
		if !window.Contains(entry.date) {
			continue
		}
		out = append(out, entry.row)
	}
	return out, nil
}
