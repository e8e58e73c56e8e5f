package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/i474232898/marketscan/internal/common"
)

// ConfigFileEnv names the environment variable pointing at an optional TOML
// config file.
const ConfigFileEnv = "MARKETSCAN_CONFIG"

// DefaultCORSOrigins are the local frontend dev servers.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:5175",
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// Dataset source. DatasetURL wins over DatasetPath; with neither set the
	// built-in sample is served.
	DatasetPath    string
	DatasetURL     string        `validate:"omitempty,url"`
	ReloadInterval time.Duration `validate:"gte=0"` // 0 disables periodic reloads

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max number of load records kept (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of load records (0 = unlimited)

	HTTPTimeout    time.Duration `validate:"gt=0"`
	PredictTimeout time.Duration `validate:"gt=0"`

	// Prediction callers. Gemini is preferred when a key is present.
	PredictAPIURL string `validate:"omitempty,url"`
	GeminiAPIKey  string
	GeminiModel   string  `validate:"required"`
	GeminiRPS     float64 `validate:"gt=0"`

	QueryMatcher  string `validate:"oneof=substring longest token"`
	FeaturedLimit int    `validate:"gte=1,lte=50"`
	CORSOrigins   []string
	LogLevel      string `validate:"oneof=trace debug info warn error"`
}

// fileConfig is the TOML shape. Durations are strings such as "15m".
type fileConfig struct {
	Port            string   `toml:"port"`
	DatasetPath     string   `toml:"dataset_path"`
	DatasetURL      string   `toml:"dataset_url"`
	ReloadInterval  string   `toml:"reload_interval"`
	StoreMaxHistory *int     `toml:"store_max_history"`
	StoreMaxAge     string   `toml:"store_max_age"`
	HTTPTimeout     string   `toml:"http_timeout"`
	PredictTimeout  string   `toml:"predict_timeout"`
	PredictAPIURL   string   `toml:"predict_api_url"`
	GeminiModel     string   `toml:"gemini_model"`
	GeminiRPS       float64  `toml:"gemini_rps"`
	QueryMatcher    string   `toml:"query_matcher"`
	FeaturedLimit   int      `toml:"featured_limit"`
	CORSOrigins     []string `toml:"cors_origins"`
	LogLevel        string   `toml:"log_level"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *AppConfig {
	return &AppConfig{
		Port:            "8000",
		ReloadInterval:  15 * time.Minute,
		StoreMaxHistory: 96, // roughly 24h at 15-minute intervals
		StoreMaxAge:     24 * time.Hour,
		HTTPTimeout:     10 * time.Second,
		PredictTimeout:  15 * time.Second,
		GeminiModel:     "gemini-1.5-flash",
		GeminiRPS:       2,
		QueryMatcher:    "substring",
		FeaturedLimit:   6,
		CORSOrigins:     append([]string(nil), DefaultCORSOrigins...),
		LogLevel:        "info",
	}
}

// Load reads configuration from defaults, an optional TOML file, a .env
// file and the environment, in that order, and validates the result.
// The Gemini API key is only read from the environment.
func Load() (*AppConfig, error) {
	cfg := Defaults()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	// A missing .env file is normal; values then come from the environment.
	_ = godotenv.Load()

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func loadFile(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.Port, fc.Port)
	setString(&cfg.DatasetPath, fc.DatasetPath)
	setString(&cfg.DatasetURL, fc.DatasetURL)
	setString(&cfg.PredictAPIURL, fc.PredictAPIURL)
	setString(&cfg.GeminiModel, fc.GeminiModel)
	setString(&cfg.QueryMatcher, fc.QueryMatcher)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.StoreMaxHistory != nil {
		cfg.StoreMaxHistory = *fc.StoreMaxHistory
	}
	if fc.GeminiRPS != 0 {
		cfg.GeminiRPS = fc.GeminiRPS
	}
	if fc.FeaturedLimit != 0 {
		cfg.FeaturedLimit = fc.FeaturedLimit
	}
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = fc.CORSOrigins
	}

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"reload_interval", fc.ReloadInterval, &cfg.ReloadInterval},
		{"store_max_age", fc.StoreMaxAge, &cfg.StoreMaxAge},
		{"http_timeout", fc.HTTPTimeout, &cfg.HTTPTimeout},
		{"predict_timeout", fc.PredictTimeout, &cfg.PredictTimeout},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", d.key, path, err)
		}
		*d.dst = v
	}
	return nil
}

func loadEnv(cfg *AppConfig) error {
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.DatasetPath = getenvDefault("DATASET_PATH", cfg.DatasetPath)
	cfg.DatasetURL = getenvDefault("DATASET_URL", cfg.DatasetURL)
	cfg.PredictAPIURL = getenvDefault("PREDICT_API_URL", cfg.PredictAPIURL)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getenvDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.QueryMatcher = strings.ToLower(getenvDefault("QUERY_MATCHER", cfg.QueryMatcher))
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", cfg.LogLevel))
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", cfg.StoreMaxHistory)
	cfg.FeaturedLimit = getenvInt("FEATURED_LIMIT", cfg.FeaturedLimit)

	if v := os.Getenv("GEMINI_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid GEMINI_RPS: %w", err)
		}
		cfg.GeminiRPS = rps
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = common.SplitList(v)
	}

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"RELOAD_INTERVAL", &cfg.ReloadInterval},
		{"STORE_MAX_AGE", &cfg.StoreMaxAge},
		{"HTTP_TIMEOUT", &cfg.HTTPTimeout},
		{"PREDICT_TIMEOUT", &cfg.PredictTimeout},
	} {
		v, err := time.ParseDuration(getenvDefault(d.key, d.dst.String()))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
