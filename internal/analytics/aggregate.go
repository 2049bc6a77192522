package analytics

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Statistics is the aggregate view of one date range.
type Statistics struct {
	From               time.Time
	To                 time.Time
	TopCategory        *CategoryTotal
	TotalSpent         decimal.Decimal
	AvgTransaction     decimal.Decimal
	Largest            decimal.Decimal
	Smallest           decimal.Decimal
	Median             decimal.Decimal
	AvgPerDay          decimal.Decimal
	Range              model.RangeSelector
	Categories         []CategoryTotal
	Series             []Point
	Expenses           []model.Expense
	TransactionCount   int
	DaysInRange        int
	DaysWithSpending   int
	TransactionsPerDay float64
}

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Total      decimal.Decimal
	Category   model.Category
	Count      int
	Percentage float64
}

// Point is one bucket of the time series.
type Point struct {
	Date   time.Time
	Amount decimal.Decimal
	Label  string
}

// Aggregator computes statistics relative to an injected clock.
type Aggregator struct {
	now func() time.Time
}

// NewAggregator creates an aggregator. A nil now uses time.Now.
func NewAggregator(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{now: now}
}

// Aggregate filters expenses to sel and derives every statistic from the
// filtered set. An unresolvable selector yields empty statistics.
func (a *Aggregator) Aggregate(expenses []model.Expense, sel model.RangeSelector) Statistics {
	stats := Statistics{
		Range:          sel,
		TotalSpent:     decimal.Zero,
		AvgTransaction: decimal.Zero,
		Largest:        decimal.Zero,
		Smallest:       decimal.Zero,
		Median:         decimal.Zero,
		AvgPerDay:      decimal.Zero,
	}

	from, to, ok := Resolve(sel)
	if !ok {
		return stats
	}
	stats.From, stats.To = from, to
	stats.DaysInRange = DaysInRange(sel)

	filtered := Filter(expenses, sel)
	stats.Expenses = filtered
	stats.TransactionCount = len(filtered)

	amounts := make([]decimal.Decimal, 0, len(filtered))
	days := make(map[time.Time]struct{})
	for _, e := range filtered {
		amounts = append(amounts, e.Amount)
		stats.TotalSpent = stats.TotalSpent.Add(e.Amount)
		days[model.Day(e.Date)] = struct{}{}
	}
	stats.DaysWithSpending = len(days)

	if n := len(amounts); n > 0 {
		sorted := sortedAmounts(amounts)
		stats.Smallest = sorted[0]
		stats.Largest = sorted[n-1]
		stats.Median = median(sorted)
		stats.AvgTransaction = stats.TotalSpent.Div(decimal.NewFromInt(int64(n)))
	}
	if stats.DaysInRange > 0 {
		stats.AvgPerDay = stats.TotalSpent.Div(decimal.NewFromInt(int64(stats.DaysInRange)))
	}
	if stats.DaysWithSpending > 0 {
		stats.TransactionsPerDay = float64(stats.TransactionCount) / float64(stats.DaysWithSpending)
	}

	stats.Categories = Breakdown(filtered)
	if len(stats.Categories) > 0 {
		top := stats.Categories[0]
		stats.TopCategory = &top
	}

	if sel.Kind == model.RangeYear {
		stats.Series = MonthlySeries(filtered, sel.Year)
	} else {
		stats.Series = DailySeries(filtered, from, to, sel.Kind == model.RangeCustom)
	}

	return stats
}

// Filter returns the expenses whose calendar day falls inside sel, ordered by
// date then id. The input slice is not modified.
func Filter(expenses []model.Expense, sel model.RangeSelector) []model.Expense {
	from, to, ok := Resolve(sel)
	if !ok {
		return nil
	}

	out := make([]model.Expense, 0, len(expenses))
	for _, e := range expenses {
		d := model.Day(e.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := model.Day(out[i].Date), model.Day(out[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Median returns the middle value of amounts, averaging the two middle values
// for even counts. It is zero for an empty slice.
func Median(amounts []decimal.Decimal) decimal.Decimal {
	if len(amounts) == 0 {
		return decimal.Zero
	}
	return median(sortedAmounts(amounts))
}

func median(sorted []decimal.Decimal) decimal.Decimal {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

func sortedAmounts(amounts []decimal.Decimal) []decimal.Decimal {
	sorted := make([]decimal.Decimal, len(amounts))
	copy(sorted, amounts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})
	return sorted
}

// Breakdown groups expenses by category, sorted by total descending with ties
// broken by category name. It returns nil when nothing was spent.
func Breakdown(expenses []model.Expense) []CategoryTotal {
	total := decimal.Zero
	byCategory := make(map[model.Category]*CategoryTotal)
	for _, e := range expenses {
		total = total.Add(e.Amount)
		ct, ok := byCategory[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category, Total: decimal.Zero}
			byCategory[e.Category] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
	}
	if !total.IsPositive() {
		return nil
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		ct.Percentage = ct.Total.Div(total).Mul(hundred).InexactFloat64()
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DailySeries returns one point per calendar day in [from, to], including days
// without spending. Labels are the day of month, or "Jan 2" when longLabels.
func DailySeries(expenses []model.Expense, from, to time.Time, longLabels bool) []Point {
	from, to = model.Day(from), model.Day(to)
	if from.After(to) {
		return nil
	}

	byDay := make(map[time.Time]decimal.Decimal)
	for _, e := range expenses {
		d := model.Day(e.Date)
		if sum, ok := byDay[d]; ok {
			byDay[d] = sum.Add(e.Amount)
			continue
		}
		byDay[d] = e.Amount
	}

	n := daysBetween(from, to) + 1
	out := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		d := from.AddDate(0, 0, i)
		label := strconv.Itoa(d.Day())
		if longLabels {
			label = d.Format("Jan 2")
		}
		amount, ok := byDay[d]
		if !ok {
			amount = decimal.Zero
		}
		out = append(out, Point{Date: d, Label: label, Amount: amount})
	}
	return out
}

// MonthlySeries returns exactly twelve points for year, labelled Jan..Dec.
func MonthlySeries(expenses []model.Expense, year int) []Point {
	var totals [12]decimal.Decimal
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, e := range expenses {
		d := model.Day(e.Date)
		if d.Year() != year {
			continue
		}
		m := d.Month() - 1
		totals[m] = totals[m].Add(e.Amount)
	}

	out := make([]Point, 12)
	for i := range out {
		month := time.Month(i + 1)
		out[i] = Point{
			Date:   time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
			Label:  month.String()[:3],
			Amount: totals[i],
		}
	}
	return out
}
