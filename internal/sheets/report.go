package sheets

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/analytics"
	"github.com/Veraticus/spent/internal/model"
)

// report is the laid-out sheet content plus the row indices that get section
// header formatting.
type report struct {
	values   [][]any
	sections []int
}

func (r *report) section(title string) {
	r.sections = append(r.sections, len(r.values))
	r.values = append(r.values, []any{title})
}

func (r *report) row(cells ...any) {
	r.values = append(r.values, cells)
}

// buildReport lays out stats and, when non-nil, budget as rows. Amounts are
// written as plain decimal strings with USER_ENTERED so Sheets parses them as
// numbers.
func buildReport(stats analytics.Statistics, budget *analytics.BudgetProjection) report {
	var r report
	r.values = make([][]any, 0, 24+len(stats.Categories)+len(stats.Series)+len(stats.Expenses))

	period := "no data"
	if !stats.From.IsZero() {
		period = fmt.Sprintf("%s - %s", stats.From.Format("Jan 2, 2006"), stats.To.Format("Jan 2, 2006"))
	}
	r.row("Spending Report", period)
	r.row()

	r.section("Summary")
	r.row("Total Spent", amount(stats.TotalSpent))
	r.row("Transactions", stats.TransactionCount)
	r.row("Average Transaction", amount(stats.AvgTransaction))
	r.row("Median Transaction", amount(stats.Median))
	r.row("Largest", amount(stats.Largest))
	r.row("Smallest", amount(stats.Smallest))
	r.row("Average Per Day", amount(stats.AvgPerDay))
	r.row("Days With Spending", fmt.Sprintf("%d / %d", stats.DaysWithSpending, stats.DaysInRange))
	r.row()

	r.section("Category Breakdown")
	r.row("Category", "Count", "Amount", "Share")
	for _, c := range stats.Categories {
		r.row(string(c.Category), c.Count, amount(c.Total), fmt.Sprintf("%.1f%%", c.Percentage))
	}
	r.row()

	if budget != nil {
		r.section("Budget")
		r.row("Monthly Budget", amount(budget.MonthlyBudget))
		r.row("Spent", amount(budget.Spent))
		r.row("Remaining", amount(budget.Remaining))
		r.row("Used", fmt.Sprintf("%.1f%%", budget.PercentageUsed))
		if budget.ProjectedTotal != nil {
			r.row("Projected Total", amount(*budget.ProjectedTotal))
		}
		r.row()
	}

	r.section("Spending Over Time")
	r.row("Period", "Amount")
	for _, p := range stats.Series {
		r.row(p.Label, amount(p.Amount))
	}
	r.row()

	r.section("Expenses")
	r.row("Date", "Description", "Amount", "Category")
	for _, e := range stats.Expenses {
		r.row(model.FormatDate(e.Date), e.Description, amount(e.Amount), string(e.Category))
	}

	return r
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
