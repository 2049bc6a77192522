// Package export writes statistics to XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/spent/internal/analytics"
	"github.com/Veraticus/spent/internal/model"
)

// Sheet names.
const (
	SummarySheet    = "Summary"
	CategoriesSheet = "Categories"
	SeriesSheet     = "Series"
	ExpensesSheet   = "Expenses"
	BudgetSheet     = "Budget"
)

// WriteXLSX writes stats, and budget when non-nil, as a workbook to w.
func WriteXLSX(w io.Writer, stats analytics.Statistics, budget *analytics.BudgetProjection) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with Sheet1; reuse it for the summary.
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	writers := []func(*excelize.File) error{
		func(f *excelize.File) error { return writeSummary(f, stats) },
		func(f *excelize.File) error { return writeCategories(f, stats) },
		func(f *excelize.File) error { return writeSeries(f, stats) },
		func(f *excelize.File) error { return writeExpenses(f, stats) },
	}
	if budget != nil {
		writers = append(writers, func(f *excelize.File) error { return writeBudget(f, budget) })
	}
	for _, write := range writers {
		if err := write(f); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, stats analytics.Statistics) error {
	top := ""
	if stats.TopCategory != nil {
		top = string(stats.TopCategory.Category)
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"From", formatDay(stats.From)},
		{"To", formatDay(stats.To)},
		{"Total spent", money(stats.TotalSpent)},
		{"Transactions", stats.TransactionCount},
		{"Average transaction", money(stats.AvgTransaction)},
		{"Median transaction", money(stats.Median)},
		{"Largest", money(stats.Largest)},
		{"Smallest", money(stats.Smallest)},
		{"Days in range", stats.DaysInRange},
		{"Days with spending", stats.DaysWithSpending},
		{"Average per day", money(stats.AvgPerDay)},
		{"Transactions per day", stats.TransactionsPerDay},
		{"Top category", top},
	}
	if err := writeRows(f, SummarySheet, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 24)
	_ = f.SetColWidth(SummarySheet, "B", "B", 16)
	return nil
}

func writeCategories(f *excelize.File, stats analytics.Statistics) error {
	if _, err := f.NewSheet(CategoriesSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", CategoriesSheet, err)
	}
	rows := [][]any{{"Category", "Total", "Count", "Percentage"}}
	for _, c := range stats.Categories {
		rows = append(rows, []any{string(c.Category), money(c.Total), c.Count, c.Percentage})
	}
	if err := writeRows(f, CategoriesSheet, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(CategoriesSheet, "A", "A", 16)
	return nil
}

func writeSeries(f *excelize.File, stats analytics.Statistics) error {
	if _, err := f.NewSheet(SeriesSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", SeriesSheet, err)
	}
	rows := [][]any{{"Label", "Date", "Amount"}}
	for _, p := range stats.Series {
		rows = append(rows, []any{p.Label, model.FormatDate(p.Date), money(p.Amount)})
	}
	return writeRows(f, SeriesSheet, rows)
}

func writeExpenses(f *excelize.File, stats analytics.Statistics) error {
	if _, err := f.NewSheet(ExpensesSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", ExpensesSheet, err)
	}
	rows := [][]any{{"Date", "Category", "Description", "Amount"}}
	for _, e := range stats.Expenses {
		rows = append(rows, []any{model.FormatDate(e.Date), string(e.Category), truncate(e.Description, 140), money(e.Amount)})
	}
	if err := writeRows(f, ExpensesSheet, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(ExpensesSheet, "A", "A", 12)
	_ = f.SetColWidth(ExpensesSheet, "B", "B", 16)
	_ = f.SetColWidth(ExpensesSheet, "C", "C", 40)
	return nil
}

func writeBudget(f *excelize.File, b *analytics.BudgetProjection) error {
	if _, err := f.NewSheet(BudgetSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", BudgetSheet, err)
	}
	projected := any("")
	if b.ProjectedTotal != nil {
		projected = money(*b.ProjectedTotal)
	}
	rows := [][]any{
		{"Monthly budget", money(b.MonthlyBudget)},
		{"Spent", money(b.Spent)},
		{"Remaining", money(b.Remaining)},
		{"Percentage used", b.PercentageUsed},
		{"Projected total", projected},
		{"Over budget", b.IsOverBudget},
		{},
		{"Day", "Cumulative spent", "Budget line"},
	}
	for _, p := range b.Cumulative {
		rows = append(rows, []any{p.Day, money(p.Spent), money(p.Budget)})
	}
	return writeRows(f, BudgetSheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// money rounds to cents.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return model.FormatDate(t)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
