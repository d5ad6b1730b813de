package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"cinefill/internal/enrich"
)

// resolve is a diagnostic command: it runs the two-phase match for one title
// without touching the catalog.
func newResolveCommand(ctx *commandContext) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Resolve a single title against the provider (dry run)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			gateway, err := ctx.newGateway()
			if err != nil {
				return err
			}

			title := args[0]
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Candidates: %v\n", enrich.Candidates(title))

			decision, err := enrich.NewResolver(gateway, logger).Resolve(cmd.Context(), title, year)
			if err != nil {
				return err
			}
			if decision == nil {
				fmt.Fprintln(out, "No match found")
				return nil
			}
			fmt.Fprintf(out, "Match: %s (phase=%s, distance=%d)\n", decision.Result.ID, decision.Phase, decision.Distance)
			fields := make([]string, 0, len(decision.Result.Fields))
			for field := range decision.Result.Fields {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				fmt.Fprintf(out, "  %-16s %s\n", field, decision.Result.Fields[field])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Trusted reference year (0 means unknown)")
	return cmd
}
