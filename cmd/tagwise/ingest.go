package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tagwise/tagwise/internal/ingest"
	"github.com/tagwise/tagwise/internal/model"
	"github.com/tagwise/tagwise/internal/service"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.csv> [more.csv...]",
		Short: "Ingest CSV transaction exports",
		Long: `Load one or more CSV transaction exports into the working table.

Each file's header row is used to infer column names and semantic roles
(date, description, vendor, amount). Headerless files get synthetic column
names. Ragged rows are padded or truncated rather than rejected. Use "-"
to read from standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().Bool("auto-tag", true, "Run auto-tagging after the load")
	cmd.Flags().Bool("truncate", false, "Clear the working table before loading")

	_ = viper.BindPFlag("ingest.auto_tag", cmd.Flags().Lookup("auto-tag"))
	_ = viper.BindPFlag("ingest.truncate", cmd.Flags().Lookup("truncate"))

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, store, cleanup, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if viper.GetBool("ingest.truncate") {
		if err := store.ClearWorkingRecords(ctx); err != nil {
			return fmt.Errorf("failed to clear working records: %w", err)
		}
		slog.Info("Cleared working records before load")
	}

	var total service.LoadStats
	for _, path := range args {
		stats, err := ingestFile(ctx, store, path)
		if err != nil {
			return err
		}
		total = total.Add(stats)
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stdout, "Total: %d records (%d adjusted, %d failed) from %d files\n",
			total.Stored, total.Adjusted, total.Failed, len(args))
	}

	if viper.GetBool("ingest.auto_tag") {
		tagged, err := eng.AutoTag(ctx)
		if err != nil {
			return fmt.Errorf("auto-tagging failed: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Auto-tagged %d descriptions\n", tagged)
	}

	return nil
}

func ingestFile(ctx context.Context, store ingest.RunStore, path string) (service.LoadStats, error) {
	var reader io.Reader
	if path == "-" {
		reader = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return service.LoadStats{}, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = file.Close() }()
		reader = file
	}

	bar := newIngestBar()
	run, err := ingest.Run(ctx, ingest.NewSource(reader), path, &progressStore{store: store, bar: bar})
	if err != nil {
		return service.LoadStats{}, fmt.Errorf("ingestion of %s failed: %w", path, err)
	}
	_ = bar.Finish()

	fmt.Fprintf(os.Stdout, "Stored %d records (%d adjusted, %d failed) from %s\n",
		run.Stored, run.Adjusted, run.Failed, run.Source)
	fmt.Fprintf(os.Stdout, "Detected roles: %s\n", formatRoles(run.Roles))

	return service.LoadStats{Stored: run.Stored, Adjusted: run.Adjusted, Failed: run.Failed}, nil
}

// progressStore decorates the ingest storage surface with a progress bar so
// the loader itself stays unaware of terminal output.
type progressStore struct {
	store ingest.RunStore
	bar   *progressbar.ProgressBar
}

func (p *progressStore) SaveWorkingRecord(ctx context.Context, record *model.WorkingRecord) error {
	if err := p.store.SaveWorkingRecord(ctx, record); err != nil {
		return err
	}
	_ = p.bar.Add(1)
	return nil
}

func (p *progressStore) SaveImportRun(ctx context.Context, run *model.ImportRun) error {
	return p.store.SaveImportRun(ctx, run)
}

func newIngestBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Loading rows..."),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(os.Stderr); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func formatRoles(roles model.RoleMap) string {
	if len(roles) == 0 {
		return "(none)"
	}
	out := ""
	for _, role := range []model.Role{model.RoleDate, model.RoleDescription, model.RoleCategory, model.RoleAmount} {
		if name, ok := roles[role]; ok {
			if out != "" {
				out += ", "
			}
			out += fmt.Sprintf("%s=%s", role, name)
		}
	}
	if out == "" {
		return "(none)"
	}
	return out
}
