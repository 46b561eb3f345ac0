// Package cmd implements the CLI commands for sku-matcher.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/refurb-sku-matcher/internal/config"
	"github.com/donaldgifford/refurb-sku-matcher/internal/engine"
	"github.com/donaldgifford/refurb-sku-matcher/internal/resolver"
	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sku-matcher",
	Short: "Match refurbished devices to catalog SKUs",
	Long: "An API-first service that resolves noisy device attributes recorded at\n" +
		"the test bench to canonical catalog SKUs, persists the matches, and\n" +
		"periodically rematches devices that could not be identified.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(rematchCmd)
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(versionCommand())
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and builds the logger it describes.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format), nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.PostgresStore, error) {
	s, err := store.NewPostgresStore(ctx, cfg.Database.DSN(),
		store.WithMaxConns(int32(cfg.Database.PoolSize)), //nolint:gosec // validated pool size
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return s, nil
}

func newResolver(cfg *config.Config, catalog store.CatalogStore, log *slog.Logger) *resolver.Resolver {
	return resolver.New(catalog,
		resolver.WithLogger(log),
		resolver.WithTuning(cfg.Matching.Tuning),
		resolver.WithPolicy(cfg.Matching.Policy),
		resolver.WithCarrierTable(cfg.Matching.CarrierTable()),
	)
}

func newEngine(cfg *config.Config, s store.Store, r engine.Resolver, log *slog.Logger) *engine.Engine {
	return engine.NewEngine(s, r,
		engine.WithLogger(log),
		engine.WithConcurrency(cfg.Batch.Concurrency),
		engine.WithBatchSize(cfg.Batch.BatchSize),
		engine.WithRateLimit(cfg.Batch.QueriesPerSecond, cfg.Batch.Burst),
		engine.WithCarrierTable(cfg.Matching.CarrierTable()),
	)
}
