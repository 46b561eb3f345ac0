package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rematchCmd = &cobra.Command{
	Use:   "rematch",
	Short: "Rematch unmatched devices once and exit",
	Long: "Resolves one batch of stored devices that have no SKU yet, using the\n" +
		"configured concurrency and rate limit, and prints the run summary.",
	RunE: runRematch,
}

func runRematch(_ *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	eng := newEngine(cfg, s, newResolver(cfg, s, logger), logger)

	summary, err := eng.RunRematch(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
