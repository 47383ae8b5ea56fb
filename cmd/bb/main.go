// Package main is the entry point for the bb CLI and MCP server.
package main

import (
	"fmt"
	"os"
)

// Version is set by -ldflags at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
