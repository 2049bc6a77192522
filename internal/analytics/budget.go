package analytics

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/model"
)

// ErrBudgetNotMonth is returned when a budget projection is requested for
// anything other than a month view.
var ErrBudgetNotMonth = errors.New("budget projection requires a month range")

// BudgetProjection compares a month's spending against a monthly budget.
type BudgetProjection struct {
	// ProjectedTotal is set only when the month is the current month.
	ProjectedTotal *decimal.Decimal
	MonthlyBudget  decimal.Decimal
	DailyBudget    decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	Cumulative     []BudgetPoint
	DaysInMonth    int
	ElapsedDays    int
	PercentageUsed float64
	IsCurrentMonth bool
	IsOverBudget   bool
}

// BudgetPoint is one day of the cumulative spend and budget-line series.
type BudgetPoint struct {
	Spent  decimal.Decimal
	Budget decimal.Decimal
	Label  string
	Day    int
}

// Budget projects stats, which must come from a month selector, against
// monthlyBudget.
func (a *Aggregator) Budget(stats Statistics, monthlyBudget decimal.Decimal) (*BudgetProjection, error) {
	sel := stats.Range
	if sel.Kind != model.RangeMonth {
		return nil, ErrBudgetNotMonth
	}
	if monthlyBudget.IsNegative() {
		return nil, fmt.Errorf("monthly budget must not be negative, got %s", monthlyBudget)
	}
	if _, _, ok := Resolve(sel); !ok {
		return nil, fmt.Errorf("invalid month %d", sel.Month)
	}

	days := DaysInMonth(sel.Year, sel.Month)
	p := &BudgetProjection{
		MonthlyBudget: monthlyBudget,
		DailyBudget:   monthlyBudget.Div(decimal.NewFromInt(int64(days))),
		Spent:         stats.TotalSpent,
		Remaining:     monthlyBudget.Sub(stats.TotalSpent),
		DaysInMonth:   days,
		IsOverBudget:  stats.TotalSpent.GreaterThan(monthlyBudget),
	}
	if monthlyBudget.IsPositive() {
		p.PercentageUsed = stats.TotalSpent.Div(monthlyBudget).Mul(hundred).InexactFloat64()
	}

	p.Cumulative = make([]BudgetPoint, 0, days)
	running := decimal.Zero
	for i, point := range stats.Series {
		running = running.Add(point.Amount)
		day := i + 1
		p.Cumulative = append(p.Cumulative, BudgetPoint{
			Day:    day,
			Label:  point.Label,
			Spent:  running,
			Budget: p.DailyBudget.Mul(decimal.NewFromInt(int64(day))),
		})
	}

	now := a.now()
	if now.Year() == sel.Year && now.Month() == sel.Month {
		p.IsCurrentMonth = true
		p.ElapsedDays = now.Day()
		projected := stats.TotalSpent.
			Div(decimal.NewFromInt(int64(p.ElapsedDays))).
			Mul(decimal.NewFromInt(int64(days)))
		p.ProjectedTotal = &projected
	}

	return p, nil
}
