package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Export and import the tagged history",
	}

	cmd.AddCommand(historyExportCmd())
	cmd.AddCommand(historyImportCmd())

	return cmd
}

func historyExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export history records as CSV",
		Long: `Export all promoted history records as CSV with a header row. Every
field is quoted. Writes to standard output when no file is given.`,
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

			return eng.ExportHistory(ctx, out)
		},
	}
}

func historyImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import history records from CSV",
		Long: `Import history records from a CSV export. Records already present
(same date, description, vendor and amount) are skipped, so re-importing
the same file is harmless.`,
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

			count, err := eng.ImportHistory(ctx, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Imported %d history records\n", count)
			return nil
		},
	}
}
