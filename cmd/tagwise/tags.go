package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tag rules",
		Long: `Manage the description-to-tag rules used for auto-tagging.

Each rule maps one exact transaction description to a tag. Rules also seed
the second auto-tagging phase, which matches new descriptions by containment.`,
	}

	cmd.AddCommand(tagsSetCmd())
	cmd.AddCommand(tagsListCmd())
	cmd.AddCommand(tagsExportCmd())
	cmd.AddCommand(tagsImportCmd())

	return cmd
}

func tagsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <description> <tag>",
		Short: "Set the tag for an exact description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, _, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := eng.ApplyTag(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Tagged %q as %q\n", args[0], args[1])
			return nil
		},
	}
}

func tagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tag rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			_, store, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rules, err := store.GetAllTagRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load tag rules: %w", err)
			}
			if len(rules) == 0 {
				fmt.Fprintln(os.Stdout, "No tag rules defined.")
				return nil
			}
			for _, rule := range rules {
				fmt.Fprintf(os.Stdout, "%-24s %-8s %s\n", rule.Tag, rule.Source, rule.Description)
			}
			fmt.Fprintf(os.Stdout, "\n%d rules\n", len(rules))
			return nil
		},
	}
}

func tagsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export tag rules as CSV",
		Long: `Export all tag rules as CSV with a header row. Every field is quoted so
descriptions containing commas or quotes survive a round trip. Writes to
standard output when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, _, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out, closeOut, err := openOutput(args)
			if err != nil {
				return err
			}
			defer closeOut()

			return eng.ExportTags(ctx, out)
		},
	}
	return cmd
}

func tagsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import tag rules from CSV",
		Long: `Import tag rules from a CSV export. Existing rules for the same
description are overwritten. Rows without both a description and a tag are
skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, _, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer func() { _ = file.Close() }()

			count, err := eng.ImportTags(ctx, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Imported %d tag rules\n", count)
			return nil
		},
	}
}

// openOutput returns the export destination: the named file, or stdout when
// no argument was given.
func openOutput(args []string) (*os.File, func(), error) {
	if len(args) == 0 {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
