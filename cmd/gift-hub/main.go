/*
Package main is the entry point for the gift-hub CLI.

gift-hub recommends a small, budget-constrained bundle of gifts for a
described recipient. It runs as an MCP server over stdio or as a one-shot
command.

Usage:
  gift-hub [command]

Available Commands:
  serve       Run the MCP server (stdio transport)
  recommend   Recommend a gift bundle from the command line
  catalog     Inspect and rebuild the gift catalog
  benchmark   Measure recommendation latency
  verify      Verify configuration and catalog
  init        Write a default configuration file
  version     Show version information

Examples:
  # Write ~/.gift-hub.json with defaults
  gift-hub init

  # One-off recommendation
  gift-hub recommend --relation Friend --occasion Birthday --age-group adult \
    --gender female --profession nurse --vibe cozy --budget 80

  # Run as MCP server
  gift-hub serve
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/gift-hub/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
