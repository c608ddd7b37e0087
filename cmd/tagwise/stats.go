package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show tagging progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, _, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := eng.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Working records:       %d\n", stats.TotalRecords)
			fmt.Fprintf(os.Stdout, "Distinct descriptions: %d\n", stats.DistinctDescriptions)
			fmt.Fprintf(os.Stdout, "Tagged descriptions:   %d\n", stats.TaggedDescriptions)
			fmt.Fprintf(os.Stdout, "Tagged records:        %d\n", stats.TaggedRecords)
			fmt.Fprintf(os.Stdout, "History records:       %d\n", stats.HistoryRecords)
			fmt.Fprintf(os.Stdout, "History tags:          %d\n", stats.HistoryTags)
			return nil
		},
	}
}
