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
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ripple-bench",
		Short: "Benchmark and inspect the ripple reactive runtime",
		Long: `ripple-bench exercises the ripple reactive runtime under
synthetic workloads and reports throughput, trigger fan-out, and flush
behavior. The inspect subcommand serves a live WebSocket event stream
plus Prometheus metrics while a workload runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		benchCmd(),
		inspectCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ripple-bench %s (%s)\n", version, commit)
		},
	}
}
