package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent ingestion runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			_, store, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := store.GetImportRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to load import runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(os.Stdout, "No ingestion runs recorded.")
				return nil
			}

			for _, run := range runs {
				fmt.Fprintf(os.Stdout, "%s  %-20s stored=%d adjusted=%d failed=%d\n",
					run.CreatedAt.Format("2006-01-02 15:04"), run.Source,
					run.Stored, run.Adjusted, run.Failed)
				fmt.Fprintf(os.Stdout, "  columns: %s\n", strings.Join(run.Columns, ", "))
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "Number of runs to show (0 for all)")

	return cmd
}
