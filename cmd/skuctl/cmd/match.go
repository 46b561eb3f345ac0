package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/refurb-sku-matcher/internal/api/client"
	domain "github.com/donaldgifford/refurb-sku-matcher/pkg/types"
)

func matchCmd() *cobra.Command {
	var (
		attrs   domain.DeviceAttributes
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Resolve device attributes to a SKU",
		Long: "Sends device attributes to the matching endpoint and prints the\n" +
			"chosen SKU. Nothing is stored. Use --explain to list every candidate\n" +
			"scored in the deciding tier.",
		Example: `  skuctl match --brand Samsung --model "Galaxy Z Fold3" --capacity 512GB --color "Phantom Black"
  skuctl match --model "Fold3 Duos" --carrier "AT&T" --notes "carrier unlocked" --explain
  skuctl match --model "iPhone 12" --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			resp, err := newClient().Match(ctx, attrs, explain)
			if errors.Is(err, apiclient.ErrNotFound) {
				fmt.Println("No SKU could be confidently identified.")
				return nil
			}
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(os.Stdout, resp)
			}
			if err := printMatchResult(os.Stdout, &resp.Result); err != nil {
				return err
			}
			if resp.Explanation != nil {
				fmt.Println()
				return printCandidatesTable(os.Stdout, resp.Explanation.Candidates)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&attrs.Brand, "brand", "", "device brand")
	f.StringVar(&attrs.Model, "model", "", "device model (required)")
	f.StringVar(&attrs.Capacity, "capacity", "", "storage capacity, e.g. 512GB")
	f.StringVar(&attrs.Color, "color", "", "color name or code")
	f.StringVar(&attrs.Carrier, "carrier", "", "recorded carrier")
	f.StringVar(&attrs.Notes, "notes", "", "free-text technician notes")
	f.BoolVar(&explain, "explain", false, "show scored candidates")
	cobra.CheckErr(cmd.MarkFlagRequired("model"))

	return cmd
}
