package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"listforge/internal/state"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int
	var clearFlag bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show export run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if clearFlag {
				if err := store.ClearRuns(cmd.Context()); err != nil {
					return fmt.Errorf("clear run history: %w", err)
				}
				fmt.Fprintln(out, "Run history cleared.")
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limitFlag)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No export runs yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				results, err := store.ResultsForRun(cmd.Context(), run.ID)
				if err != nil {
					return fmt.Errorf("load results for run %s: %w", run.ID, err)
				}
				rows = append(rows, []string{
					shortID(run.ID),
					run.CreatedAt.Local().Format(time.DateTime),
					titleCase(run.ListingType),
					run.Format,
					runFilesCell(results),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Created", "Listing", "Format", "Files"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 10, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Delete all run history")
	return cmd
}

func runFilesCell(results map[string]state.WriteResult) string {
	succeeded := 0
	for _, r := range results {
		if r.Status == state.ResultSuccess {
			succeeded++
		}
	}
	return fmt.Sprintf("%d/%d", succeeded, len(results))
}
