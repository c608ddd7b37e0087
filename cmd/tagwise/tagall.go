package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func tagAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag-all <search> <tag>",
		Short: "Tag every description containing a search term",
		Long: `Tag every distinct working description containing the search term,
case-insensitively. One rule is written per matching description, so later
imports of the same descriptions are tagged automatically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, _, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			count, err := eng.TagAllMatching(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Tagged %d descriptions matching %q as %q\n", count, args[0], args[1])
			return nil
		},
	}
}
