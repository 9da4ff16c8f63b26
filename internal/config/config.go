package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the insight service.
type Config struct {
	ListenAddr      string
	SearchDataPath  string
	TrafficDataPath string

	EnableSearch  bool
	EnableTraffic bool

	CanonicalBaseURL string
	LookbackDays     int

	MinImpressionsForCTRAction     int
	MinSessionsForConversionAction int
	TargetCTR                      float64
	TargetConversionRate           float64
	DefaultMaxActionItems          int
	DefaultTopN                    int
}

// FromEnv creates a configuration instance sourced from environment
// variables, optionally overridden by a YAML file named in
// SEO_CONFIG_FILE. The result is constructed once at startup and passed
// around by value; nothing mutates it afterwards.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:                     getEnv("SEO_LISTEN_ADDR", ":8080"),
		SearchDataPath:                 getEnv("SEO_SEARCH_DATA", "data/sample_search_rows.json"),
		TrafficDataPath:                getEnv("SEO_TRAFFIC_DATA", "data/sample_traffic_rows.json"),
		EnableSearch:                   true,
		EnableTraffic:                  true,
		CanonicalBaseURL:               getEnv("SEO_CANONICAL_BASE_URL", ""),
		LookbackDays:                   28,
		MinImpressionsForCTRAction:     200,
		MinSessionsForConversionAction: 50,
		TargetCTR:                      0.03,
		TargetConversionRate:           0.02,
		DefaultMaxActionItems:          30,
		DefaultTopN:                    20,
	}

	var err error
	if cfg.EnableSearch, err = boolEnv("SEO_ENABLE_SEARCH", cfg.EnableSearch); err != nil {
		return Config{}, err
	}
	if cfg.EnableTraffic, err = boolEnv("SEO_ENABLE_TRAFFIC", cfg.EnableTraffic); err != nil {
		return Config{}, err
	}
	if cfg.LookbackDays, err = intEnv("SEO_LOOKBACK_DAYS", cfg.LookbackDays); err != nil {
		return Config{}, err
	}
	if cfg.MinImpressionsForCTRAction, err = intEnv("SEO_MIN_IMPRESSIONS_FOR_CTR_ACTION", cfg.MinImpressionsForCTRAction); err != nil {
		return Config{}, err
	}
	if cfg.MinSessionsForConversionAction, err = intEnv("SEO_MIN_SESSIONS_FOR_CONVERSION_ACTION", cfg.MinSessionsForConversionAction); err != nil {
		return Config{}, err
	}
	if cfg.TargetCTR, err = floatEnv("SEO_TARGET_CTR", cfg.TargetCTR); err != nil {
		return Config{}, err
	}
	if cfg.TargetConversionRate, err = floatEnv("SEO_TARGET_CONVERSION_RATE", cfg.TargetConversionRate); err != nil {
		return Config{}, err
	}
	if cfg.DefaultMaxActionItems, err = intEnv("SEO_DEFAULT_MAX_ACTION_ITEMS", cfg.DefaultMaxActionItems); err != nil {
		return Config{}, err
	}
	if cfg.DefaultTopN, err = intEnv("SEO_DEFAULT_TOP_N", cfg.DefaultTopN); err != nil {
		return Config{}, err
	}

	if path := os.Getenv("SEO_CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if cfg.LookbackDays < 1 {
		return Config{}, fmt.Errorf("lookback days must be positive, got %d", cfg.LookbackDays)
	}

	return cfg, nil
}

// fileConfig mirrors the optional YAML settings file. Pointer fields
// distinguish "absent" from explicit zero values.
type fileConfig struct {
	Server struct {
		ListenAddr      *string `yaml:"listen_addr"`
		SearchDataPath  *string `yaml:"search_data_path"`
		TrafficDataPath *string `yaml:"traffic_data_path"`
	} `yaml:"server"`
	Sources struct {
		EnableSearch     *bool   `yaml:"enable_search"`
		EnableTraffic    *bool   `yaml:"enable_traffic"`
		CanonicalBaseURL *string `yaml:"canonical_base_url"`
		LookbackDays     *int    `yaml:"lookback_days"`
	} `yaml:"sources"`
	Thresholds struct {
		MinImpressions       *int     `yaml:"min_impressions"`
		MinSessions          *int     `yaml:"min_sessions"`
		TargetCTR            *float64 `yaml:"target_ctr"`
		TargetConversionRate *float64 `yaml:"target_conversion_rate"`
		MaxActionItems       *int     `yaml:"max_action_items"`
		TopN                 *int     `yaml:"top_n"`
	} `yaml:"thresholds"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if file.Server.ListenAddr != nil {
		cfg.ListenAddr = *file.Server.ListenAddr
	}
	if file.Server.SearchDataPath != nil {
		cfg.SearchDataPath = *file.Server.SearchDataPath
	}
	if file.Server.TrafficDataPath != nil {
		cfg.TrafficDataPath = *file.Server.TrafficDataPath
	}
	if file.Sources.EnableSearch != nil {
		cfg.EnableSearch = *file.Sources.EnableSearch
	}
	if file.Sources.EnableTraffic != nil {
		cfg.EnableTraffic = *file.Sources.EnableTraffic
	}
	if file.Sources.CanonicalBaseURL != nil {
		cfg.CanonicalBaseURL = *file.Sources.CanonicalBaseURL
	}
	if file.Sources.LookbackDays != nil {
		cfg.LookbackDays = *file.Sources.LookbackDays
	}
	if file.Thresholds.MinImpressions != nil {
		cfg.MinImpressionsForCTRAction = *file.Thresholds.MinImpressions
	}
	if file.Thresholds.MinSessions != nil {
		cfg.MinSessionsForConversionAction = *file.Thresholds.MinSessions
	}
	if file.Thresholds.TargetCTR != nil {
		cfg.TargetCTR = *file.Thresholds.TargetCTR
	}
	if file.Thresholds.TargetConversionRate != nil {
		cfg.TargetConversionRate = *file.Thresholds.TargetConversionRate
	}
	if file.Thresholds.MaxActionItems != nil {
		cfg.DefaultMaxActionItems = *file.Thresholds.MaxActionItems
	}
	if file.Thresholds.TopN != nil {
		cfg.DefaultTopN = *file.Thresholds.TopN
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("parse %s: invalid boolean %q", key, value)
}
