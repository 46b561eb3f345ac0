package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func rematchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rematch",
		Short: "Rematch unmatched devices",
		Long: "Runs one rematch batch on the server: every stored device without a\n" +
			"SKU, up to the server's batch size, is resolved again.",
		Example: `  skuctl rematch
  skuctl rematch --timeout 5m`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			summary, err := newClient().Rematch(ctx)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(os.Stdout, summary)
			}
			return printSummary(os.Stdout, summary)
		},
	}
}
