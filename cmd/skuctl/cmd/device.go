package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/refurb-sku-matcher/internal/api/client"
)

func deviceCmd() *cobra.Command {
	deviceRoot := &cobra.Command{
		Use:   "device",
		Short: "Match stored devices",
	}

	deviceRoot.AddCommand(
		deviceMatchCmd(),
		deviceShowMatchCmd(),
	)

	return deviceRoot
}

func deviceMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <device_id>",
		Short: "Resolve a stored device and save the result",
		Args:  cobra.ExactArgs(1),
		Example: `  skuctl device match 6f1c2a9e-3b7d-4c11-9a52-0d8e4f7b1c23
  skuctl device match 6f1c2a9e-3b7d-4c11-9a52-0d8e4f7b1c23 --output json`,
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			m, err := newClient().MatchDevice(ctx, args[0])
			if errors.Is(err, apiclient.ErrNotFound) {
				return fmt.Errorf("device %s: %w", args[0], err)
			}
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(os.Stdout, m)
			}
			return printMatchResult(os.Stdout, &m.Result)
		},
	}
}

func deviceShowMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-match <device_id>",
		Short: "Show the last saved match for a device",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := requestContext()
			defer cancel()

			m, err := newClient().GetDeviceMatch(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(os.Stdout, m)
			}
			if m.Result.SkuCode == "" && m.Result.MatchMethod == "" {
				fmt.Printf("Device %s was last attempted at %s with no match.\n",
					m.DeviceID, m.MatchedAt.Format("2006-01-02 15:04:05"))
				return nil
			}
			return printMatchResult(os.Stdout, &m.Result)
		},
	}
}
