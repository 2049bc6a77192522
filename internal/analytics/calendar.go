package analytics

import (
	"time"

	"github.com/Veraticus/spent/internal/model"
)

// IsLeapYear reports whether year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// Resolve returns the inclusive calendar-day bounds of sel. It reports false
// for an empty or inverted custom range, or an unknown kind.
func Resolve(sel model.RangeSelector) (from, to time.Time, ok bool) {
	switch sel.Kind {
	case model.RangeMonth:
		if sel.Month < time.January || sel.Month > time.December {
			return time.Time{}, time.Time{}, false
		}
		from = time.Date(sel.Year, sel.Month, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(sel.Year, sel.Month, DaysInMonth(sel.Year, sel.Month), 0, 0, 0, 0, time.UTC)
		return from, to, true
	case model.RangeYear:
		from = time.Date(sel.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(sel.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		return from, to, true
	case model.RangeCustom:
		if sel.From.IsZero() || sel.To.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		from, to = model.Day(sel.From), model.Day(sel.To)
		if from.After(to) {
			return time.Time{}, time.Time{}, false
		}
		return from, to, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// DaysInRange is the day-count denominator for sel: the month length, the
// year length, or the inclusive day count of a custom range. It is 0 when
// sel does not resolve.
func DaysInRange(sel model.RangeSelector) int {
	switch sel.Kind {
	case model.RangeMonth:
		if _, _, ok := Resolve(sel); !ok {
			return 0
		}
		return DaysInMonth(sel.Year, sel.Month)
	case model.RangeYear:
		return DaysInYear(sel.Year)
	}
	from, to, ok := Resolve(sel)
	if !ok {
		return 0
	}
	return daysBetween(from, to) + 1
}

// daysBetween counts calendar days from a to b. Both must be UTC midnights.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
