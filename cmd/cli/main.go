// Package main is the entry point for the shipping-cost CLI.
package main

import (
	"os"

	"shipping-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
