package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/analytics"
	"github.com/Veraticus/spent/internal/model"
)

const barWidth = 30

// RenderStats writes the statistics report, followed by the budget
// projection when budget is non-nil.
func RenderStats(w io.Writer, stats analytics.Statistics, budget *analytics.BudgetProjection) error {
	sections := []string{FormatTitle(fmt.Sprintf("Spending %s to %s",
		formatDay(stats.From), formatDay(stats.To)))}

	if stats.TransactionCount == 0 {
		sections = append(sections, FormatInfo("No expenses in this range."))
		return writeSections(w, sections)
	}

	sections = append(sections,
		RenderBox(ChartIcon+" Summary", summaryTable(stats)),
		RenderBox("By category", categoryTable(stats.Categories)),
		RenderBox("Over time", seriesChart(stats.Series)),
	)
	if budget != nil {
		sections = append(sections, RenderBox("Budget", budgetTable(budget)))
	}
	return writeSections(w, sections)
}

// RenderExpenses writes expenses as a table in the order given.
func RenderExpenses(w io.Writer, expenses []model.Expense) error {
	if len(expenses) == 0 {
		return writeSections(w, []string{FormatInfo("No expenses yet.")})
	}

	rows := make([][]string, 0, len(expenses)+1)
	rows = append(rows, []string{"ID", "Date", "Amount", "Category", "Description"})
	for _, e := range expenses {
		rows = append(rows, []string{
			shortID(e.ID),
			model.FormatDate(e.Date),
			"$" + e.Amount.StringFixed(2),
			CategoryStyle(e.Category).Render(string(e.Category)),
			truncate(e.Description, 48),
		})
	}
	return writeSections(w, []string{renderTable(rows, map[int]lipgloss.Position{2: lipgloss.Right})})
}

func summaryTable(stats analytics.Statistics) string {
	top := "-"
	if stats.TopCategory != nil {
		top = fmt.Sprintf("%s (%.1f%%)", stats.TopCategory.Category, stats.TopCategory.Percentage)
	}
	rows := [][]string{
		{"Total spent", money(stats.TotalSpent)},
		{"Transactions", fmt.Sprintf("%d", stats.TransactionCount)},
		{"Average", money(stats.AvgTransaction)},
		{"Median", money(stats.Median)},
		{"Largest", money(stats.Largest)},
		{"Smallest", money(stats.Smallest)},
		{"Per day", money(stats.AvgPerDay)},
		{"Days with spending", fmt.Sprintf("%d of %d", stats.DaysWithSpending, stats.DaysInRange)},
		{"Transactions per active day", fmt.Sprintf("%.2f", stats.TransactionsPerDay)},
		{"Top category", top},
	}
	return renderRows(rows, map[int]lipgloss.Position{1: lipgloss.Right})
}

func categoryTable(categories []analytics.CategoryTotal) string {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{
			CategoryStyle(c.Category).Render(string(c.Category)),
			money(c.Total),
			fmt.Sprintf("%d", c.Count),
			fmt.Sprintf("%5.1f%%", c.Percentage),
			bar(c.Percentage/100, CategoryStyle(c.Category)),
		})
	}
	return renderRows(rows, map[int]lipgloss.Position{1: lipgloss.Right, 2: lipgloss.Right})
}

func seriesChart(series []analytics.Point) string {
	peak := decimal.Zero
	for _, p := range series {
		if p.Amount.GreaterThan(peak) {
			peak = p.Amount
		}
	}

	rows := make([][]string, 0, len(series))
	for _, p := range series {
		if p.Amount.IsZero() {
			continue
		}
		rows = append(rows, []string{
			p.Label,
			money(p.Amount),
			bar(p.Amount.Div(peak).InexactFloat64(), InfoStyle),
		})
	}
	return renderRows(rows, map[int]lipgloss.Position{1: lipgloss.Right})
}

func budgetTable(b *analytics.BudgetProjection) string {
	remaining := SuccessStyle.Render(money(b.Remaining))
	if b.IsOverBudget {
		remaining = ErrorStyle.Render(money(b.Remaining))
	}
	rows := [][]string{
		{"Monthly budget", money(b.MonthlyBudget)},
		{"Daily budget", money(b.DailyBudget)},
		{"Spent", money(b.Spent)},
		{"Remaining", remaining},
		{"Used", fmt.Sprintf("%.1f%%", b.PercentageUsed)},
	}
	if b.ProjectedTotal != nil {
		projected := money(*b.ProjectedTotal)
		if b.ProjectedTotal.GreaterThan(b.MonthlyBudget) {
			projected = WarningStyle.Render(projected)
		}
		rows = append(rows,
			[]string{"Day", fmt.Sprintf("%d of %d", b.ElapsedDays, b.DaysInMonth)},
			[]string{"Projected month total", projected},
		)
	}
	style := SuccessStyle
	if b.IsOverBudget {
		style = ErrorStyle
	}
	return renderRows(rows, map[int]lipgloss.Position{1: lipgloss.Right}) +
		"\n\n" + bar(b.PercentageUsed/100, style)
}

func renderTable(rows [][]string, align map[int]lipgloss.Position) string {
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = TableHeaderStyle.Render(h)
	}
	return renderRows(append([][]string{header}, rows[1:]...), align)
}

// renderRows lays rows out in columns sized to their widest cell.
func renderRows(rows [][]string, align map[int]lipgloss.Position) string {
	widths := map[int]int{}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			pos, ok := align[i]
			if !ok {
				pos = lipgloss.Left
			}
			cells[i] = lipgloss.NewStyle().Width(widths[i]).Align(pos).Render(cell)
		}
		lines = append(lines, strings.Join(cells, "  "))
	}
	return strings.Join(lines, "\n")
}

func bar(fraction float64, style lipgloss.Style) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*barWidth + 0.5)
	return style.Render(strings.Repeat("█", filled)) + SubtleStyle.Render(strings.Repeat("░", barWidth-filled))
}

func writeSections(w io.Writer, sections []string) error {
	if _, err := fmt.Fprintln(w, strings.Join(sections, "\n")); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return model.FormatDate(t)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
