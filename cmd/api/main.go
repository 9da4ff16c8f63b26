package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"seoinsight/internal/config"
	"seoinsight/internal/insight"
	"seoinsight/internal/metrics"
	transporthttp "seoinsight/internal/transport/http"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	var searchSources []insight.SearchSource
	var trafficSources []insight.TrafficSource

	searchIngest := insight.NewSearchIngest("ingest-search")
	trafficIngest := insight.NewTrafficIngest("ingest-traffic")

	if cfg.EnableSearch {
		searchSources = append(searchSources, searchIngest)
		if cfg.SearchDataPath != "" {
			static, err := insight.NewStaticSearchSource("sample-search", cfg.SearchDataPath)
			if err != nil {
				logger.Warn().Err(err).Msg("static search source unavailable")
			} else {
				searchSources = append(searchSources, static)
			}
		}
	}
	if cfg.EnableTraffic {
		trafficSources = append(trafficSources, trafficIngest)
		if cfg.TrafficDataPath != "" {
			static, err := insight.NewStaticTrafficSource("sample-traffic", cfg.TrafficDataPath)
			if err != nil {
				logger.Warn().Err(err).Msg("static traffic source unavailable")
			} else {
				trafficSources = append(trafficSources, static)
			}
		}
	}

	registry, err := insight.NewRegistry(searchSources, trafficSources)
	if err != nil {
		logger.Fatal().Err(err).Msg("init source registry")
	}

	limits := insight.Thresholds{
		MinImpressions:       cfg.MinImpressionsForCTRAction,
		MinSessions:          cfg.MinSessionsForConversionAction,
		TargetCTR:            cfg.TargetCTR,
		TargetConversionRate: cfg.TargetConversionRate,
		MaxActionItems:       cfg.DefaultMaxActionItems,
	}
	normalize := insight.NormalizeOptions{BaseURL: cfg.CanonicalBaseURL}

	engine, err := insight.NewEngine(registry, limits, normalize, cfg.LookbackDays, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init engine")
	}

	m := metrics.New()
	server := transporthttp.NewServer(engine, cfg, searchIngest, trafficIngest, m, logger)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      withLogging(logger, withCORS(server.Routes())),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("insight API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// withLogging logs every request with its duration.
func withLogging(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// withCORS allows browser dashboards to query the API directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
