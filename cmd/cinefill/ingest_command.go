package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinefill/internal/ingest"
	"cinefill/internal/logging"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <dataset-dir>",
		Short: "Import a MovieLens 100K dataset directory into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			seeds, err := ingest.LoadDataset(args[0])
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}
			imported, err := store.Import(cmd.Context(), seeds)
			if err != nil {
				return fmt.Errorf("import movies: %w", err)
			}
			logger.Info("dataset imported",
				logging.String(logging.FieldComponent, "ingest"),
				logging.Int("parsed", len(seeds)),
				logging.Int("imported", imported))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d movies (duplicates by title and year are skipped)\n", imported, len(seeds))
			return nil
		},
	}
}
