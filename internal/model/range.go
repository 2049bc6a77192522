package model

import "time"

// RangeKind selects how a RangeSelector is resolved.
type RangeKind string

// Range kinds.
const (
	RangeMonth  RangeKind = "month"
	RangeYear   RangeKind = "year"
	RangeCustom RangeKind = "custom"
)

// RangeSelector is a user-chosen date window for analytics.
type RangeSelector struct {
	From  time.Time
	To    time.Time
	Kind  RangeKind
	Year  int
	Month time.Month
}

// MonthRange selects one calendar month.
func MonthRange(year int, month time.Month) RangeSelector {
	return RangeSelector{Kind: RangeMonth, Year: year, Month: month}
}

// YearRange selects one calendar year.
func YearRange(year int) RangeSelector {
	return RangeSelector{Kind: RangeYear, Year: year}
}

// CustomRange selects the inclusive window [from, to].
func CustomRange(from, to time.Time) RangeSelector {
	return RangeSelector{Kind: RangeCustom, From: Day(from), To: Day(to)}
}
