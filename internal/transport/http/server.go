package transporthttp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"seoinsight/internal/config"
	"seoinsight/internal/insight"
	"seoinsight/internal/metrics"
)

// Server exposes the insight engine's reports and ingest endpoints.
type Server struct {
	engine        *insight.Engine
	cfg           config.Config
	searchIngest  *insight.SearchIngest
	trafficIngest *insight.TrafficIngest
	metrics       *metrics.Metrics
	log           zerolog.Logger
}

// NewServer wires the engine, ingest sources, and metrics into a Server.
func NewServer(engine *insight.Engine, cfg config.Config, searchIngest *insight.SearchIngest, trafficIngest *insight.TrafficIngest, m *metrics.Metrics, logger zerolog.Logger) *Server {
	return &Server{
		engine:        engine,
		cfg:           cfg,
		searchIngest:  searchIngest,
		trafficIngest: trafficIngest,
		metrics:       m,
		log:           logger,
	}
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.health)
	mux.HandleFunc("/capabilities", s.handleCapabilities)
	mux.HandleFunc("/pages", s.handlePages)
	mux.HandleFunc("/actions", s.handleActions)
	mux.HandleFunc("/popularity", s.handlePopularity)
	mux.HandleFunc("/trends", s.handleTrends)
	mux.HandleFunc("/coverage", s.handleCoverage)
	mux.HandleFunc("/opportunities", s.handleOpportunities)
	mux.HandleFunc("/topics", s.handleTopics)
	mux.HandleFunc("/ingest/search", s.handleIngestSearch)
	mux.HandleFunc("/ingest/traffic", s.handleIngestTraffic)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	limits := s.engine.Limits()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"sources": map[string]bool{
			"search_enabled":  s.cfg.EnableSearch,
			"traffic_enabled": s.cfg.EnableTraffic,
		},
		"defaults": map[string]any{
			"lookback_days":      s.cfg.LookbackDays,
			"canonical_base_url": s.cfg.CanonicalBaseURL,
			"top_n":              s.cfg.DefaultTopN,
		},
		"analysis_thresholds": map[string]any{
			"min_impressions_for_ctr_action":     limits.MinImpressions,
			"min_sessions_for_conversion_action": limits.MinSessions,
			"target_ctr":                         limits.TargetCTR,
			"target_conversion_rate":             limits.TargetConversionRate,
			"default_max_action_items":           limits.MaxActionItems,
		},
	})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	params := s.parseParams(r)
	started := time.Now()

	dataset, err := s.engine.MergedPages(r.Context(), insight.Query{
		StartDate:       params.startDate,
		EndDate:         params.endDate,
		IncludePrevious: params.includePrevious,
	})
	if err != nil {
		s.reportError(w, "pages", err)
		return
	}
	s.metrics.ObserveReport("pages", time.Since(started))
	s.metrics.AddPagesMerged(len(dataset.Pages))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ranges": map[string]insight.DateRange{
			"current":  dataset.Current,
			"previous": dataset.Previous,
		},
		"source_counts": map[string]int{
			"search_pages":  dataset.SearchPages,
			"traffic_pages": dataset.TrafficPages,
			"merged_pages":  len(dataset.Pages),
		},
		"portfolio_summary": insight.SummarizePortfolio(dataset.Pages),
		"pages":             dataset.Pages,
	})
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	params := s.parseParams(r)
	started := time.Now()

	report, err := s.engine.ActionItems(r.Context(), insight.Query{
		StartDate: params.startDate,
		EndDate:   params.endDate,
	}, params.maxItems, params.priorities)
	if err != nil {
		s.reportError(w, "actions", err)
		return
	}
	s.metrics.ObserveReport("actions", time.Since(started))

	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handlePopularity(w http.ResponseWriter, r *http.Request) {
	params := s.parseParams(r)
	started := time.Now()

	dataset, snapshot, err := s.engine.Popularity(r.Context(), insight.Query{
		StartDate: params.startDate,
		EndDate:   params.endDate,
	}, params.topN)
	if err != nil {
		s.reportError(w, "popularity", err)
		return
	}
	s.metrics.ObserveReport("popularity", time.Since(started))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ranges":   map[string]insight.DateRange{"current": dataset.Current},
		"snapshot": snapshot,
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	params := s.parseParams(r)
	started := time.Now()

	dataset, trends, err := s.engine.Trends(r.Context(), insight.Query{
		StartDate: params.startDate,
		EndDate:   params.endDate,
	}, params.topN)
	if err != nil {
		s.reportError(w, "trends", err)
		return
	}
	s.metrics.ObserveReport("trends", time.Since(started))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ranges": map[string]insight.DateRange{
			"current":  dataset.Current,
			"previous": dataset.Previous,
		},
		"trends": trends,
	})
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	params := s.parseParams(r)
	started := time.Now()

	dataset, coverage, err := s.engine.Coverage(r.Context(), insight.Query{
		StartDate: params.startDate,
		EndDate:   params.endDate,
	}, params.topN)
	if err != nil {
		s.reportError(w, "coverage", err)
		return
	}
	s.metrics.ObserveReport("coverage", time.Since(started))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ranges":  map[string]insight.DateRange{"current": dataset.Current},
		"quality": coverage,
	})
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	params := s.parseParams(r)
	started := time.Now()

	window, opportunities, err := s.engine.Opportunities(r.Context(), insight.Query{
		StartDate: params.startDate,
		EndDate:   params.endDate,
	}, params.minImpressions, params.topN)
	if err != nil {
		s.reportError(w, "opportunities", err)
		return
	}
	s.metrics.ObserveReport("opportunities", time.Since(started))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ranges":              map[string]insight.DateRange{"current": window},
		"total_opportunities": len(opportunities),
		"opportunities":       opportunities,
	})
}

// Topic clustering scans individual queries, which run far smaller than
// the query/page pairs the opportunity scan filters, so it carries its
// own lower impression floor and a wider default list.
const (
	defaultTopicMinImpressions = 50
	defaultTopicTopN           = 30
)

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	params := s.parseParams(r)
	started := time.Now()

	minImpressions := params.minImpressions
	if !params.minImpressionsSet {
		minImpressions = defaultTopicMinImpressions
	}
	topN := params.topN
	if !params.topNSet {
		topN = defaultTopicTopN
	}

	window, topics, err := s.engine.Topics(r.Context(), insight.Query{
		StartDate: params.startDate,
		EndDate:   params.endDate,
	}, minImpressions, topN)
	if err != nil {
		s.reportError(w, "topics", err)
		return
	}
	s.metrics.ObserveReport("topics", time.Since(started))

	s.writeJSON(w, http.StatusOK, map[string]any{
		"ranges":       map[string]insight.DateRange{"current": window},
		"total_topics": len(topics),
		"topics":       topics,
	})
}

type searchIngestPayload struct {
	Date       string              `json:"date"`
	Dimensions []string            `json:"dimensions"`
	Rows       []insight.SearchRow `json:"rows"`
}

func (s *Server) handleIngestSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.searchIngest == nil {
		s.writeError(w, http.StatusServiceUnavailable, "search ingest disabled")
		return
	}

	var payload searchIngestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.Date == "" || len(payload.Rows) == 0 {
		s.writeError(w, http.StatusBadRequest, "date and rows are required")
		return
	}
	if _, err := insight.ParseDate(payload.Date); err != nil {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	id := s.searchIngest.Add(payload.Date, payload.Dimensions, payload.Rows)
	s.engine.Invalidate()
	s.metrics.AddIngestRows("search", len(payload.Rows))

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"status":   "accepted",
		"batch_id": id,
		"rows":     len(payload.Rows),
	})
}

type trafficIngestPayload struct {
	Date string               `json:"date"`
	Rows []insight.TrafficRow `json:"rows"`
}

func (s *Server) handleIngestTraffic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.trafficIngest == nil {
		s.writeError(w, http.StatusServiceUnavailable, "traffic ingest disabled")
		return
	}

	var payload trafficIngestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.Date == "" || len(payload.Rows) == 0 {
		s.writeError(w, http.StatusBadRequest, "date and rows are required")
		return
	}
	if _, err := insight.ParseDate(payload.Date); err != nil {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	id := s.trafficIngest.Add(payload.Date, payload.Rows)
	s.engine.Invalidate()
	s.metrics.AddIngestRows("traffic", len(payload.Rows))

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"status":   "accepted",
		"batch_id": id,
		"rows":     len(payload.Rows),
	})
}

func (s *Server) reportError(w http.ResponseWriter, report string, err error) {
	s.metrics.IncReportError(report)
	s.log.Error().Err(err).Str("report", report).Msg("report failed")
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing we can do; connection likely closed
		s.log.Debug().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

type reportParams struct {
	startDate         string
	endDate           string
	topN              int
	topNSet           bool
	maxItems          int
	minImpressions    float64
	minImpressionsSet bool
	includePrevious   bool
	priorities        []string
}

func (s *Server) parseParams(r *http.Request) reportParams {
	values := r.URL.Query()

	params := reportParams{
		startDate:       values.Get("start_date"),
		endDate:         values.Get("end_date"),
		topN:            s.cfg.DefaultTopN,
		minImpressions:  100,
		includePrevious: true,
	}

	if v := values.Get("top_n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			params.topN = parsed
			params.topNSet = true
		}
	}
	if v := values.Get("max_items"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			params.maxItems = parsed
		}
	}
	if v := values.Get("min_impressions"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			params.minImpressions = parsed
			params.minImpressionsSet = true
		}
	}
	if v := values.Get("include_previous"); v != "" {
		params.includePrevious = v == "1" || strings.EqualFold(v, "true")
	}
	if v := values.Get("priorities"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				params.priorities = append(params.priorities, p)
			}
		}
	}

	return params
}
