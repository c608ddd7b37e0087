package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func autotagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autotag",
		Short: "Auto-tag untagged descriptions",
		Long: `Tag untagged working descriptions from existing rules in two phases:
exact description matches first, then case-insensitive containment against
known descriptions. When several tags match by containment, the tag backed
by the most rules wins. Existing rules are never overwritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			eng, _, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			count, err := eng.AutoTag(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Auto-tagged %d descriptions\n", count)
			return nil
		},
	}
}
