package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote",
		Short: "Promote tagged records into history",
		Long: `Move tagged working records into the permanent history.

Records already present in history (same date, description, vendor and
amount) are not duplicated, but every tagged working record is removed
either way. Untagged records stay in the working table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, _, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			count, err := eng.PromoteTaggedToHistory(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Promoted %d records to history\n", count)
			return nil
		},
	}
}
