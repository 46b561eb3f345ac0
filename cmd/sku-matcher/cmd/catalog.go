package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/skucode"
)

func catalogCmd() *cobra.Command {
	catalogRoot := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the SKU catalog",
	}

	catalogRoot.AddCommand(
		&cobra.Command{
			Use:   "import <file>",
			Short: "Import SKU codes into the catalog",
			Long: "Reads one SKU code per line, optionally followed by a comma and the\n" +
				"source tab, decodes each code, and upserts it into the catalog.\n" +
				"Blank lines and lines starting with # are skipped.",
			Args: cobra.ExactArgs(1),
			RunE: runCatalogImport,
		},
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of catalog entries",
			RunE:  runCatalogCount,
		},
	)

	return catalogRoot
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	ctx := context.Background()
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := importCatalog(ctx, s, f)
	if err != nil {
		return err
	}

	logger.Info("catalog imported", "file", args[0], "skus", n)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d SKUs.\n", n)
	return nil
}

// importCatalog upserts every SKU line in r and returns how many were written.
func importCatalog(ctx context.Context, s store.Store, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		code, tab, _ := strings.Cut(line, ",")
		e := skucode.Entry(strings.TrimSpace(code), strings.TrimSpace(tab))
		if err := s.UpsertSku(ctx, &e); err != nil {
			return n, fmt.Errorf("importing %s: %w", e.Code, err)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("reading catalog file: %w", err)
	}
	return n, nil
}

func runCatalogCount(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.CountSkus(ctx)
	if err != nil {
		return fmt.Errorf("counting catalog: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), n)
	return nil
}
