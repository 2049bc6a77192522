package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spent/internal/analytics"
	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/config"
	"github.com/Veraticus/spent/internal/export"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/sheets"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize spending over a date range",
		Long: `Show totals, averages, a category breakdown and a spending series for a
month, a year or a custom range. Month views also compare spending against
the monthly budget when one is configured.

Examples:
  spent stats
  spent stats --month 2024-03 --budget 1500
  spent stats --year 2024 --xlsx 2024.xlsx
  spent stats --from 2024-03-10 --to 2024-04-09 --sheets`,
		RunE: runStats,
	}

	cmd.Flags().String("month", "", "Month to report, as YYYY-MM (default current month)")
	cmd.Flags().String("year", "", "Year to report, as YYYY")
	cmd.Flags().String("from", "", "Start of a custom range, as YYYY-MM-DD")
	cmd.Flags().String("to", "", "End of a custom range, as YYYY-MM-DD")
	cmd.Flags().String("budget", "", "Monthly budget, overriding budget.monthly")
	cmd.Flags().String("xlsx", "", "Also write the report to this Excel file")
	cmd.Flags().Bool("sheets", false, "Also write the report to Google Sheets")

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	var flags rangeFlags
	flags.Month, _ = cmd.Flags().GetString("month")
	flags.Year, _ = cmd.Flags().GetString("year")
	flags.From, _ = cmd.Flags().GetString("from")
	flags.To, _ = cmd.Flags().GetString("to")
	budgetFlag, _ := cmd.Flags().GetString("budget")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	toSheets, _ := cmd.Flags().GetBool("sheets")
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sel, err := flags.selector(a.clock.Now())
	if err != nil {
		return err
	}

	monthly := a.cfg.Budget.Monthly
	if budgetFlag != "" {
		monthly, err = decimal.NewFromString(budgetFlag)
		if err != nil || monthly.IsNegative() {
			return fmt.Errorf("%w: --budget must be a non-negative amount", common.ErrInvalidInput)
		}
	}

	expenses, err := a.ledger.List(ctx, a.cfg.UserID)
	if err != nil {
		return err
	}

	agg := analytics.NewAggregator(a.clock.Now)
	stats := agg.Aggregate(expenses, sel)

	var budget *analytics.BudgetProjection
	if monthly.IsPositive() {
		if sel.Kind == model.RangeMonth {
			budget, err = agg.Budget(stats, monthly)
			if err != nil {
				return err
			}
		} else if budgetFlag != "" {
			slog.Warn("Budget projection is only available for month views", "range", sel.Kind)
		}
	}

	out := cmd.OutOrStdout()
	if err := cli.RenderStats(out, stats, budget); err != nil {
		return err
	}

	if xlsxPath != "" {
		if err := writeWorkbook(xlsxPath, stats, budget); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("Wrote "+xlsxPath))
	}

	if toSheets {
		sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
		if err != nil {
			return err
		}
		writer, err := sheets.NewWriter(ctx, sheetsCfg, slog.Default())
		if err != nil {
			return fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		url, err := writer.WriteStats(ctx, stats, budget)
		if err != nil {
			return fmt.Errorf("failed to write report to Google Sheets: %w", err)
		}
		fmt.Fprintln(out, cli.FormatSuccess("Report written to "+url))
	}

	return nil
}

func writeWorkbook(path string, stats analytics.Statistics, budget *analytics.BudgetProjection) (err error) {
	f, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()
	return export.WriteXLSX(f, stats, budget)
}
