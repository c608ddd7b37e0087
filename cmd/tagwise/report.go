package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize history spending",
		Long: `Summarize promoted history records by tag or by calendar month.

Amounts are parsed leniently: currency symbols and thousands separators are
stripped and unparseable values count as zero.`,
		RunE: runReport,
	}

	cmd.Flags().String("by", "tag", "Grouping: tag or month")
	_ = viper.BindPFlag("report.by", cmd.Flags().Lookup("by"))

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, _, cleanup, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	switch by := viper.GetString("report.by"); by {
	case "tag":
		rows, err := eng.TagSummary(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintln(os.Stdout, "No history records.")
			return nil
		}
		total := 0.0
		for _, row := range rows {
			fmt.Fprintf(os.Stdout, "%-24s %12.2f %6d\n", row.Tag, row.Total, row.Count)
			total += row.Total
		}
		fmt.Fprintf(os.Stdout, "%-24s %12.2f\n", "TOTAL", total)
		return nil
	case "month":
		months, err := eng.MonthlySummary(ctx)
		if err != nil {
			return err
		}
		if len(months) == 0 {
			fmt.Fprintln(os.Stdout, "No history records.")
			return nil
		}
		for _, month := range months {
			fmt.Fprintf(os.Stdout, "%s (%.2f)\n", month.Month, month.Total)
			for _, row := range month.Rows {
				fmt.Fprintf(os.Stdout, "  %-24s %12.2f %6d\n", row.Tag, row.Total, row.Count)
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid grouping: %s (expected tag or month)", by)
	}
}
