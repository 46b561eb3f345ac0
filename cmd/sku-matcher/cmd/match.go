package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/refurb-sku-matcher/internal/resolver"
	"github.com/donaldgifford/refurb-sku-matcher/internal/store"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/adapter"
	"github.com/donaldgifford/refurb-sku-matcher/pkg/logger"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

type matchOptions struct {
	attrs       domain.DeviceAttributes
	recordFile  string
	catalogFile string
}

func matchCmd() *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Resolve a device to a SKU and print the result",
		Long: "Resolves device attributes given as flags, or device records read from\n" +
			"a JSON file, against the configured catalog database. With --catalog the\n" +
			"catalog is read from a file of SKU codes instead and no database is used.",
		Example: `  sku-matcher match --brand Samsung --model "Galaxy Z Fold3" --capacity 512GB --color "Phantom Black" --carrier "AT&T"
  sku-matcher match --record bench-export.json
  sku-matcher match --catalog skus.txt --model "iPhone 12" --capacity 128 --color white`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.attrs.Brand, "brand", "", "device brand")
	f.StringVar(&opts.attrs.Model, "model", "", "device model")
	f.StringVar(&opts.attrs.Capacity, "capacity", "", "storage capacity")
	f.StringVar(&opts.attrs.Color, "color", "", "color name or code")
	f.StringVar(&opts.attrs.Carrier, "carrier", "", "recorded carrier")
	f.StringVar(&opts.attrs.Notes, "notes", "", "technician notes")
	f.StringVar(&opts.recordFile, "record", "", `JSON device record or array of records ("-" for stdin)`)
	f.StringVar(&opts.catalogFile, "catalog", "", "file of SKU codes, one per line, used instead of the database")
	cmd.MarkFlagsMutuallyExclusive("record", "model")

	return cmd
}

func runMatch(cmd *cobra.Command, opts *matchOptions) error {
	devices, err := opts.devices(cmd.InOrStdin())
	if err != nil {
		return err
	}

	ctx := context.Background()

	r, closeFn, err := opts.resolver(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	for i := range devices {
		res, err := r.ResolveSku(ctx, devices[i])
		if err != nil {
			return fmt.Errorf("device %d: %w", i+1, err)
		}
		out := struct {
			Device domain.DeviceAttributes `json:"device"`
			Result *domain.MatchResult     `json:"result"`
		}{Device: devices[i], Result: res}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func (o *matchOptions) devices(stdin io.Reader) ([]domain.DeviceAttributes, error) {
	if o.recordFile == "" {
		if strings.TrimSpace(o.attrs.Model) == "" {
			return nil, fmt.Errorf("either --model or --record is required")
		}
		return []domain.DeviceAttributes{o.attrs}, nil
	}

	var (
		data []byte
		err  error
	)
	if o.recordFile == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(o.recordFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading device records: %w", err)
	}

	devices, err := adapter.FromJSONArray(data)
	if err != nil {
		return nil, fmt.Errorf("parsing device records: %w", err)
	}
	return devices, nil
}

// resolver builds a resolver over the file catalog or the database.
func (o *matchOptions) resolver(ctx context.Context, cmd *cobra.Command) (*resolver.Resolver, func(), error) {
	if o.catalogFile == "" {
		cfg, log, err := loadConfig()
		if err != nil {
			return nil, nil, err
		}
		s, err := openStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return newResolver(cfg, s, log), s.Close, nil
	}

	catalog := store.NewMemoryStore()
	f, err := os.Open(o.catalogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	if _, err := catalog.LoadCatalog(f); err != nil {
		return nil, nil, err
	}

	// An explicit --config still supplies the matching tuning.
	if cmd.Flags().Changed("config") {
		cfg, cfgLog, err := loadConfig()
		if err != nil {
			return nil, nil, err
		}
		return newResolver(cfg, catalog, cfgLog), func() {}, nil
	}
	return resolver.New(catalog, resolver.WithLogger(logger.New("warn", logger.FormatText))), func() {}, nil
}
