// Command bot relays solar dashboard readings to a LINE group.
//
// Usage:
//
//	bot serve           # HTTP triggers, webhook and scheduler
//	bot run [--dry-run] # one cycle, then exit
//	bot validate        # check configuration
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"solar-relay/internal/di"
)

// set at build time via -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "bot",
	Short:         "Relay solar power dashboard readings to LINE",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bot %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	di.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
