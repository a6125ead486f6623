package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bulwark",
		Short: "Error handling toolkit for server-driven Go web apps",
		Long: `Bulwark wires error handling for Go web applications.

It ships a small taxonomy of named HTTP errors, boundaries that catch
thrown errors and render per-kind fallback views, a default-deny
serializer for shipping errors across process boundaries, and
Prometheus/OpenTelemetry middleware.

This CLI inspects the built-in error kinds and runs a demo server
showing the pieces working together.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		kindsCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
