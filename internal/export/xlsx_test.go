package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/spent/internal/analytics"
	"github.com/Veraticus/spent/internal/model"
)

func testExpenses() []model.Expense {
	mk := func(id, amount, date string, cat model.Category) model.Expense {
		d, _ := model.ParseDate(date)
		return model.Expense{
			ID:          id,
			UserID:      "alice",
			Amount:      decimal.RequireFromString(amount),
			Description: "expense " + id,
			Category:    cat,
			Date:        d,
		}
	}
	return []model.Expense{
		mk("a", "10", "2024-03-01", model.CategoryFood),
		mk("b", "25", "2024-03-02", model.CategoryFood),
		mk("c", "30", "2024-03-02", model.CategoryTransport),
		mk("d", "99", "2024-04-01", model.CategoryTravel),
	}
}

func openWorkbook(t *testing.T, stats analytics.Statistics, budget *analytics.BudgetProjection) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, stats, budget))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	require.NoError(t, err)
	return v
}

func TestWriteXLSX(t *testing.T) {
	agg := analytics.NewAggregator(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) })
	stats := agg.Aggregate(testExpenses(), model.MonthRange(2024, time.March))

	f := openWorkbook(t, stats, nil)
	assert.Equal(t, []string{SummarySheet, CategoriesSheet, SeriesSheet, ExpensesSheet}, f.GetSheetList())

	assert.Equal(t, "2024-03-01", cell(t, f, SummarySheet, "B2"))
	assert.Equal(t, "2024-03-31", cell(t, f, SummarySheet, "B3"))
	assert.Equal(t, "Total spent", cell(t, f, SummarySheet, "A4"))
	assert.Equal(t, "65", cell(t, f, SummarySheet, "B4"))
	assert.Equal(t, "3", cell(t, f, SummarySheet, "B5"))
	assert.Equal(t, "food", cell(t, f, SummarySheet, "B14"))

	assert.Equal(t, "food", cell(t, f, CategoriesSheet, "A2"))
	assert.Equal(t, "35", cell(t, f, CategoriesSheet, "B2"))
	assert.Equal(t, "2", cell(t, f, CategoriesSheet, "C2"))
	assert.Equal(t, "transport", cell(t, f, CategoriesSheet, "A3"))

	rows, err := f.GetRows(SeriesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 32)
	assert.Equal(t, []string{"1", "2024-03-01", "10"}, rows[1])
	assert.Equal(t, []string{"2", "2024-03-02", "55"}, rows[2])

	expenseRows, err := f.GetRows(ExpensesSheet)
	require.NoError(t, err)
	assert.Len(t, expenseRows, 4)
}

func TestWriteXLSX_WithBudget(t *testing.T) {
	agg := analytics.NewAggregator(func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) })
	stats := agg.Aggregate(testExpenses(), model.MonthRange(2024, time.March))
	budget, err := agg.Budget(stats, decimal.NewFromInt(310))
	require.NoError(t, err)

	f := openWorkbook(t, stats, budget)
	assert.Contains(t, f.GetSheetList(), BudgetSheet)
	assert.Equal(t, "310", cell(t, f, BudgetSheet, "B1"))
	assert.Equal(t, "65", cell(t, f, BudgetSheet, "B2"))
	assert.Equal(t, "245", cell(t, f, BudgetSheet, "B3"))
	assert.Equal(t, "", cell(t, f, BudgetSheet, "B5"))
	assert.Equal(t, "Day", cell(t, f, BudgetSheet, "A8"))
	assert.Equal(t, "1", cell(t, f, BudgetSheet, "A9"))
}

func TestWriteXLSX_Empty(t *testing.T) {
	agg := analytics.NewAggregator(nil)
	stats := agg.Aggregate(nil, model.CustomRange(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	f := openWorkbook(t, stats, nil)
	assert.Equal(t, "", cell(t, f, SummarySheet, "B2"))
	assert.Equal(t, "0", cell(t, f, SummarySheet, "B4"))
	assert.Equal(t, "", cell(t, f, SummarySheet, "B14"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc…", truncate("abcdef", 4))
}
