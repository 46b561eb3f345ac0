// Package main is the entry point for the sku-matcher service.
package main

import (
	"os"

	"github.com/donaldgifford/refurb-sku-matcher/cmd/sku-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
