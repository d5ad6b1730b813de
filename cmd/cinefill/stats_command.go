package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"cinefill/internal/catalog"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog completeness statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("collect stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if !stdoutIsTerminal() {
				fmt.Fprintf(out, "total=%d incomplete=%d\n", stats.Total, stats.Incomplete)
				for _, field := range catalog.EnrichableFields() {
					fmt.Fprintf(out, "%s=%d\n", field, stats.PerField[field])
				}
				return nil
			}

			fmt.Fprintf(out, "Movies: %d total, %d incomplete\n", stats.Total, stats.Incomplete)
			fields := make([]string, 0, len(stats.PerField))
			for field := range stats.PerField {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			rows := make([][]string, 0, len(fields))
			for _, field := range fields {
				rows = append(rows, []string{
					field,
					fmt.Sprintf("%d", stats.PerField[field]),
					fmt.Sprintf("%d", stats.Total-stats.PerField[field]),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Filled", "Missing"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
