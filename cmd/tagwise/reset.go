package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear stored data",
		Long: `Clear stored data. By default only the working table is cleared; tag
rules and the promoted history require their own flags.

This is a destructive operation and asks for confirmation unless --force
is given.`,
		RunE: runReset,
	}

	cmd.Flags().Bool("working", true, "Clear the working records table")
	cmd.Flags().Bool("tags", false, "Clear all tag rules")
	cmd.Flags().Bool("history", false, "Clear the promoted history")
	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	return cmd
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	working, _ := cmd.Flags().GetBool("working")
	tags, _ := cmd.Flags().GetBool("tags")
	history, _ := cmd.Flags().GetBool("history")
	force, _ := cmd.Flags().GetBool("force")

	if !working && !tags && !history {
		fmt.Fprintln(os.Stdout, "Nothing selected. Nothing to reset.")
		return nil
	}

	eng, store, cleanup, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := eng.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current state: %w", err)
	}

	if working {
		fmt.Fprintf(os.Stdout, "This will delete %d working records.\n", stats.TotalRecords)
	}
	if tags {
		fmt.Fprintf(os.Stdout, "This will delete all tag rules.\n")
	}
	if history {
		fmt.Fprintf(os.Stdout, "This will delete %d history records.\n", stats.HistoryRecords)
	}

	if !confirm("\nAre you sure you want to continue?", force) {
		fmt.Fprintln(os.Stdout, "Reset canceled.")
		return nil
	}

	if working {
		if err := store.ClearWorkingRecords(ctx); err != nil {
			return fmt.Errorf("failed to clear working records: %w", err)
		}
	}
	if tags {
		if err := store.ClearTagRules(ctx); err != nil {
			return fmt.Errorf("failed to clear tag rules: %w", err)
		}
	}
	if history {
		if err := store.ClearHistory(ctx); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
	}

	fmt.Fprintln(os.Stdout, "Reset complete.")
	return nil
}
