// Package cmd implements the skuctl CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/refurb-sku-matcher/internal/api/client"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "skuctl",
		Short: "CLI client for the SKU matcher",
		Long: "skuctl is a command-line client for the SKU matcher API.\n" +
			"It resolves device attributes to catalog SKUs, matches stored\n" +
			"devices, and triggers rematch runs from the terminal.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default $HOME/.skuctl.yaml)")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		Int("retries", 3, "retries for failed requests (0 disables)")
	rootCmd.PersistentFlags().
		Duration("timeout", 30*time.Second, "per-request timeout")

	for _, name := range []string{"server", "output", "retries", "timeout"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(deviceCmd())
	rootCmd.AddCommand(rematchCmd())
	rootCmd.AddCommand(jobsCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".skuctl")
	}

	viper.SetEnvPrefix("SKUCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"),
		apiclient.WithRetryMax(viper.GetInt("retries")),
	)
}

// requestContext bounds one API call by the --timeout flag.
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
