package insight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// flexFloat tolerates numeric-as-string and malformed metric values.
// Upstream row data is untrusted; anything non-numeric coerces to zero
// instead of failing the whole batch.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" {
		*f = 0
		return nil
	}
	text = strings.Trim(text, `"`)
	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(parsed)
	return nil
}

type rawSearchRow struct {
	Date        string    `json:"date"`
	Keys        []string  `json:"keys"`
	Clicks      flexFloat `json:"clicks"`
	Impressions flexFloat `json:"impressions"`
	CTR         flexFloat `json:"ctr"`
	Position    flexFloat `json:"position"`
}

type searchDocument struct {
	Dimensions []string       `json:"dimensions"`
	Rows       []rawSearchRow `json:"rows"`
}

type rawTrafficRow struct {
	Date       string               `json:"date"`
	Dimensions map[string]string    `json:"dimensions"`
	Metrics    map[string]flexFloat `json:"metrics"`
}

type trafficDocument struct {
	Rows []rawTrafficRow `json:"rows"`
}

// datedSearchRow pairs a raw search row with the date it belongs to so
// sources can filter by reporting window.
type datedSearchRow struct {
	date string
	row  SearchRow
}

type datedTrafficRow struct {
	date string
	row  TrafficRow
}

func decodeSearchDocument(data []byte) ([]string, []datedSearchRow, error) {
	var doc searchDocument
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode search rows: %w", err)
	}

	dims := doc.Dimensions
	if len(dims) == 0 {
		dims = []string{PageDimension}
	}

	rows := make([]datedSearchRow, 0, len(doc.Rows))
	for _, raw := range doc.Rows {
		if len(raw.Keys) == 0 {
			continue
		}
		rows = append(rows, datedSearchRow{
			date: raw.Date,
			row: SearchRow{
				Keys:        raw.Keys,
				Clicks:      float64(raw.Clicks),
				Impressions: float64(raw.Impressions),
				CTR:         float64(raw.CTR),
				Position:    float64(raw.Position),
			},
		})
	}
	return dims, rows, nil
}

func decodeTrafficDocument(data []byte) ([]datedTrafficRow, error) {
	var doc trafficDocument
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode traffic rows: %w", err)
	}

	rows := make([]datedTrafficRow, 0, len(doc.Rows))
	for _, raw := range doc.Rows {
		if len(raw.Dimensions) == 0 {
			continue
		}
		metrics := make(map[string]float64, len(raw.Metrics))
		for name, value := range raw.Metrics {
			metrics[name] = float64(value)
		}
		rows = append(rows, datedTrafficRow{
			date: raw.Date,
			row:  TrafficRow{Dimensions: raw.Dimensions, Metrics: metrics},
		})
	}
	return rows, nil
}
