package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solar-relay/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and list targets",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "configuration OK: %d target(s), locale %s, mode %s\n", len(cfg.Targets), cfg.Locale.Name, cfg.MessageMode)
	for i, t := range cfg.Targets {
		fmt.Fprintf(out, "  %d. %s %s (%d fields)\n", i+1, t.Name, t.URL, len(t.Fields))
	}
	if cfg.ScheduleCron != "" {
		fmt.Fprintf(out, "schedule: %s\n", cfg.ScheduleCron)
	}
	return nil
}
