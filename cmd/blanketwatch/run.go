package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"BlanketWatch/internal/pipeline"
)

var (
	dryRun    bool
	skipMemos bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the register, write workbooks and memos, and mail them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := buildRunner(cfg, pipeline.Options{DryRun: dryRun, SkipMemos: skipMemos}, !dryRun, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sum, err := r.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), pipeline.FormatSummary(sum))
		if sum.HasFailures() {
			return fmt.Errorf("run %s finished with failures", sum.RunID)
		}
		return nil
	},
}
