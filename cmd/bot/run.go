package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"solar-relay/internal/config"
	"solar-relay/internal/di"
	"solar-relay/internal/usecase"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one relay cycle and exit",
	Long: `Fetch every configured target once and push the summary to LINE.

With --dry-run the summary is printed and nothing is sent.`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("dry-run", false, "print the message instead of sending it")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	relay, cleanup, err := di.InitializeRelay(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize relay: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		report := relay.Collect(ctx)
		fmt.Fprintln(out, usecase.FormatReport(report, relay.Labels()))
		return nil
	}

	result, err := relay.Run(ctx)
	if err != nil {
		return err
	}
	if !result.Delivery.OK() {
		return fmt.Errorf("delivery failed with status %d: %s", result.Delivery.StatusCode, result.Delivery.Body)
	}
	fmt.Fprintf(out, "sent %d target(s) in %s\n", len(result.Report.Results), result.Duration)
	return nil
}
