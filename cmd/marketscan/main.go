// marketscan serves market price lookups, featured movers and price
// forecasts over HTTP and from the command line.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/i474232898/marketscan/internal/common"
	"github.com/i474232898/marketscan/internal/config"
	"github.com/i474232898/marketscan/internal/engine"
	"github.com/i474232898/marketscan/internal/market"
	marketproviders "github.com/i474232898/marketscan/internal/market/providers"
	"github.com/i474232898/marketscan/internal/prediction"
	predictproviders "github.com/i474232898/marketscan/internal/prediction/providers"
	"github.com/i474232898/marketscan/internal/query"
	"github.com/i474232898/marketscan/internal/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg    *config.AppConfig
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "marketscan",
	Short:         "Market price lookups and forecasts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			if err := os.Setenv(config.ConfigFileEnv, path); err != nil {
				return err
			}
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			if err := os.Setenv("LOG_LEVEL", lvl); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = common.NewLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "TOML config file (overrides "+config.ConfigFileEnv+")")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(featuredCmd)
	rootCmd.AddCommand(checkCmd)
}

// buildService wires the dataset source, the store and the predictor from
// configuration. It does not load the dataset.
func buildService(ctx context.Context) (*engine.Service, error) {
	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var source market.Source
	switch {
	case cfg.DatasetURL != "":
		source = marketproviders.NewRemoteSource(httpClient, cfg.DatasetURL, logger)
	case cfg.DatasetPath != "":
		source = marketproviders.NewFileSource(cfg.DatasetPath)
	default:
		source = marketproviders.SampleSource{}
	}

	var caller prediction.Caller
	switch {
	case cfg.GeminiAPIKey != "":
		g, err := predictproviders.NewGemini(ctx, cfg.GeminiAPIKey,
			predictproviders.WithGeminiModel(cfg.GeminiModel),
			predictproviders.WithGeminiRateLimit(cfg.GeminiRPS),
		)
		if err != nil {
			return nil, err
		}
		caller = g
	case cfg.PredictAPIURL != "":
		caller = predictproviders.NewRemotePredictor(httpClient, cfg.PredictAPIURL)
	default:
		logger.Warn().Msg("no prediction backend configured; forecasts use the local fallback")
	}

	predictor := prediction.NewResolver(caller,
		prediction.WithTimeout(cfg.PredictTimeout),
		prediction.WithLogger(logger),
	)
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	resolver := query.NewResolver(query.MatcherByName(cfg.QueryMatcher))

	logger.Info().
		Str("source", source.Name()).
		Str("predictor", predictor.CallerName()).
		Str("matcher", cfg.QueryMatcher).
		Msg("service configured")

	return engine.NewService(memStore, source, resolver, predictor, logger), nil
}

// loadedService builds the service and loads the dataset once.
func loadedService(ctx context.Context) (*engine.Service, error) {
	svc, err := buildService(ctx)
	if err != nil {
		return nil, err
	}
	if err := svc.Reload(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
