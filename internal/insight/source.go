package insight

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// SearchSource provides search-performance rows for a reporting window,
// keyed by the requested dimension tuple.
type SearchSource interface {
	Name() string
	FetchSearch(ctx context.Context, window DateRange, dims []string) ([]SearchRow, error)
}

// TrafficSource provides traffic-analytics rows for a reporting window.
type TrafficSource interface {
	Name() string
	FetchTraffic(ctx context.Context, window DateRange) ([]TrafficRow, error)
}

// Registry keeps the configured sources for both kinds of row data.
type Registry struct {
	search  []SearchSource
	traffic []TrafficSource
}

// NewRegistry builds a registry; at least one source of either kind is
// required.
func NewRegistry(search []SearchSource, traffic []TrafficSource) (*Registry, error) {
	if len(search) == 0 && len(traffic) == 0 {
		return nil, errors.New("insight: at least one source is required")
	}
	return &Registry{search: search, traffic: traffic}, nil
}

// AddSearch registers another search source.
func (r *Registry) AddSearch(source SearchSource) {
	r.search = append(r.search, source)
}

// AddTraffic registers another traffic source.
func (r *Registry) AddTraffic(source TrafficSource) {
	r.traffic = append(r.traffic, source)
}

// FetchSearch aggregates rows from all registered search sources.
func (r *Registry) FetchSearch(ctx context.Context, window DateRange, dims []string) ([]SearchRow, error) {
	var results []SearchRow
	for _, src := range r.search {
		rows, err := src.FetchSearch(ctx, window, dims)
		if err != nil {
			return nil, fmt.Errorf("fetch search rows from %s: %w", src.Name(), err)
		}
		results = append(results, rows...)
	}
	return results, nil
}

// FetchTraffic aggregates rows from all registered traffic sources.
func (r *Registry) FetchTraffic(ctx context.Context, window DateRange) ([]TrafficRow, error) {
	var results []TrafficRow
	for _, src := range r.traffic {
		rows, err := src.FetchTraffic(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("fetch traffic rows from %s: %w", src.Name(), err)
		}
		results = append(results, rows...)
	}
	return results, nil
}

// projectKeys maps a row's key tuple from the dimensions it was stored
// with onto the requested dimension order. Requesting a dimension the
// source does not carry is a caller error.
func projectKeys(have, want []string, keys []string) ([]string, error) {
	if len(want) == 0 {
		return keys, nil
	}
	out := make([]string, 0, len(want))
	for _, dim := range want {
		idx := -1
		for i, h := range have {
			if h == dim {
				idx = i
				break
			}
		}
		if idx < 0 || idx >= len(keys) {
			return nil, fmt.Errorf("dimension %q not available (have %v)", dim, have)
		}
		out = append(out, keys[idx])
	}
	return out, nil
}

// StaticSearchSource serves search rows from a JSON document on disk.
type StaticSearchSource struct {
	name string
	path string
}

// NewStaticSearchSource returns a file-backed search source.
func NewStaticSearchSource(name, path string) (*StaticSearchSource, error) {
	if name == "" {
		return nil, errors.New("static search source requires a name")
	}
	if path == "" {
		return nil, errors.New("static search source requires a path")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("static search source: %w", err)
	}
	return &StaticSearchSource{name: name, path: path}, nil
}

// Name returns the source name.
func (s *StaticSearchSource) Name() string { return s.name }

// FetchSearch reads the document, filters rows to the window, and
// projects key tuples onto the requested dimensions. Rows whose stored
// dimensions cannot satisfy the request are skipped; they are outside
// the query's scope, not errors.
func (s *StaticSearchSource) FetchSearch(ctx context.Context, window DateRange, dims []string) ([]SearchRow, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read static file %s: %w", s.path, err)
	}
	have, rows, err := decodeSearchDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("decode static file %s: %w", s.path, err)
	}

	var out []SearchRow
	for _, entry := range rows {
		if !window.Contains(entry.date) {
			continue
		}
		keys, err := projectKeys(have, dims, entry.row.Keys)
		if err != nil {
			continue
		}
		row := entry.row
		row.Keys = keys
		out = append(out, row)
	}
	return out, nil
}

// StaticTrafficSource serves traffic rows from a JSON document on disk.
type StaticTrafficSource struct {
	name string
	path string
}

// NewStaticTrafficSource returns a file-backed traffic source.
func NewStaticTrafficSource(name, path string) (*StaticTrafficSource, error) {
	if name == "" {
		return nil, errors.New("static traffic source requires a name")
	}
	if path == "" {
		return nil, errors.New("static traffic source requires a path")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("static traffic source: %w", err)
	}
	return &StaticTrafficSource{name: name, path: path}, nil
}

// Name returns the source name.
func (s *StaticTrafficSource) Name() string { return s.name }

// FetchTraffic reads the document and filters rows to the window.
func (s *StaticTrafficSource) FetchTraffic(ctx context.Context, window DateRange) ([]TrafficRow, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read static file %s: %w", s.path, err)
	}
	rows, err := decodeTrafficDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("decode static file %s: %w", s.path, err)
	}

	var out []TrafficRow
	for _, entry := range rows {
		if !window.Contains(entry.date) {
			continue
		}
		out = append(out, entry.row)
	}
	return out, nil
}
