package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"cinefill/internal/enrich"
	"cinefill/internal/logging"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill missing catalog fields from the configured provider",
		Long: "Enrich selects every movie with at least one missing field, resolves each " +
			"against the reference provider under a bounded worker pool, and merges the " +
			"discovered fields without overwriting existing values. Interrupted runs are " +
			"safe to re-run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			// One enrichment run at a time; concurrent runs would race on
			// the same incomplete rows.
			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another enrichment run is already in progress")
			}
			defer lock.Unlock()

			gateway, err := ctx.newGateway()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if concurrency <= 0 {
				concurrency = cfg.Enrich.Concurrency
			}
			scheduler, err := enrich.NewScheduler(store, enrich.NewResolver(gateway, logger), enrich.SchedulerOptions{
				Concurrency:    concurrency,
				FlushBatchSize: cfg.Enrich.FlushBatchSize,
			}, logger)
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, runErr := scheduler.Run(runCtx)
			if summary != nil {
				printSummary(cmd, summary)
			}
			if runErr != nil {
				return runErr
			}
			if summary != nil && len(summary.FlushErrors) > 0 {
				logger.Error("run finished with unflushed batches",
					logging.String(logging.FieldRunID, summary.RunID),
					logging.Int("flush_errors", len(summary.FlushErrors)))
				return fmt.Errorf("%d batch flushes failed; affected movies remain incomplete and will be retried next run", len(summary.FlushErrors))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Worker pool size (defaults to enrich.concurrency)")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *enrich.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s)\n", summary.RunID, summary.Provider)
	fmt.Fprintln(out, renderTable(
		[]string{"Selected", "Updated", "Skipped", "Errored"},
		[][]string{{
			fmt.Sprintf("%d", summary.Selected),
			fmt.Sprintf("%d", summary.Updated),
			fmt.Sprintf("%d", summary.Skipped),
			fmt.Sprintf("%d", summary.Errored),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	))
	for _, err := range summary.FlushErrors {
		fmt.Fprintf(out, "flush error: %v\n", err)
	}
}
