package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cinefill/internal/answer"
	"cinefill/internal/api"
	"cinefill/internal/embedding"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve semantic search and question answering over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
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

			index, err := embedding.LoadIndex(cfg.IndexPath())
			if err != nil {
				return fmt.Errorf("load index (run 'cinefill index build' first): %w", err)
			}
			embedder, err := embedding.NewCohereEmbedder(cfg.Embedding)
			if err != nil {
				return err
			}
			searcher, err := embedding.NewSearcher(embedder, index)
			if err != nil {
				return err
			}
			answerer, err := answer.NewClient(cfg.LLM)
			if err != nil {
				return err
			}
			server, err := api.NewServer(searcher, store, answerer, logger)
			if err != nil {
				return err
			}

			if bind == "" {
				bind = cfg.Paths.APIBind
			}
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return server.ListenAndServe(runCtx, bind)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to paths.api_bind)")
	return cmd
}
