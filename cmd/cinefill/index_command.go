package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cinefill/internal/embedding"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Semantic index utilities",
	}
	indexCmd.AddCommand(newIndexBuildCommand(ctx))
	return indexCmd
}

func newIndexBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Embed the catalog and write the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateIndexBuild(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			embedder, err := embedding.NewCohereEmbedder(cfg.Embedding)
			if err != nil {
				return err
			}
			builder, err := embedding.NewBuilder(store, embedder, cfg.Embedding.BatchSize, logger)
			if err != nil {
				return err
			}
			index, err := builder.Build(cmd.Context())
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}
			if err := index.Save(cfg.IndexPath()); err != nil {
				return fmt.Errorf("save index: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d movies (%d dimensions) at %s\n", index.Len(), index.Dim(), cfg.IndexPath())
			return nil
		},
	}
}
