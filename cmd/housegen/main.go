// Package main provides the housegen CLI entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/housegen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
