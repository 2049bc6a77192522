package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/ofx"
)

// rangeFlags are the stats command's range selectors as typed.
type rangeFlags struct {
	Month string
	Year  string
	From  string
	To    string
}

// selector resolves the flags to a range. At most one of --month, --year
// and --from/--to may be given; none selects the current month.
func (f rangeFlags) selector(now time.Time) (model.RangeSelector, error) {
	given := 0
	for _, set := range []bool{f.Month != "", f.Year != "", f.From != "" || f.To != ""} {
		if set {
			given++
		}
	}
	if given > 1 {
		return model.RangeSelector{}, fmt.Errorf("%w: use only one of --month, --year or --from/--to", common.ErrInvalidInput)
	}

	switch {
	case f.Month != "":
		t, err := time.Parse("2006-01", f.Month)
		if err != nil {
			return model.RangeSelector{}, fmt.Errorf("%w: --month must look like 2024-03", common.ErrInvalidInput)
		}
		return model.MonthRange(t.Year(), t.Month()), nil

	case f.Year != "":
		year, err := strconv.Atoi(f.Year)
		if err != nil || year < 1 {
			return model.RangeSelector{}, fmt.Errorf("%w: --year must look like 2024", common.ErrInvalidInput)
		}
		return model.YearRange(year), nil

	case f.From != "" || f.To != "":
		if f.From == "" || f.To == "" {
			return model.RangeSelector{}, fmt.Errorf("%w: --from and --to must be used together", common.ErrInvalidInput)
		}
		from, err := model.ParseDate(f.From)
		if err != nil {
			return model.RangeSelector{}, fmt.Errorf("%w: --from: %w", common.ErrInvalidInput, err)
		}
		to, err := model.ParseDate(f.To)
		if err != nil {
			return model.RangeSelector{}, fmt.Errorf("%w: --to: %w", common.ErrInvalidInput, err)
		}
		return model.CustomRange(from, to), nil
	}

	return model.MonthRange(now.Year(), now.Month()), nil
}

var errAmbiguousID = errors.New("id prefix matches more than one expense")

// findExpense returns the expense whose id equals ref or, failing that,
// starts with it.
func findExpense(expenses []model.Expense, ref string) (model.Expense, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Expense{}, fmt.Errorf("%w: expense id is empty", common.ErrInvalidInput)
	}

	var matches []model.Expense
	for _, e := range expenses {
		if e.ID == ref {
			return e, nil
		}
		if strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return model.Expense{}, fmt.Errorf("expense %s: %w", ref, common.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Expense{}, fmt.Errorf("%s: %w", ref, errAmbiguousID)
	}
}

// readBatchLines returns the non-blank lines of r. Lines starting with #
// are comments.
func readBatchLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return lines, nil
}

// newImports drops statement lines already stored by an earlier import, and
// repeats within the same run.
func newImports(existing []model.Expense, imported []ofx.Imported) (fresh []ofx.Imported, skipped int) {
	seen := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		if strings.HasPrefix(e.RawInput, ofx.RawInputPrefix) {
			seen[e.RawInput] = struct{}{}
		}
	}

	for _, imp := range imported {
		if _, dup := seen[imp.RawInput]; dup {
			skipped++
			continue
		}
		seen[imp.RawInput] = struct{}{}
		fresh = append(fresh, imp)
	}
	return fresh, skipped
}

// limitExpenses returns at most n expenses; n <= 0 means all.
func limitExpenses(expenses []model.Expense, n int) []model.Expense {
	if n <= 0 || len(expenses) <= n {
		return expenses
	}
	return expenses[:n]
}
