// Package main is the entry point for the skuctl CLI client.
package main

import (
	"github.com/donaldgifford/refurb-sku-matcher/cmd/skuctl/cmd"
)

func main() {
	cmd.Execute()
}
