package testutil

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/model"
)

// ExpenseBuilder provides a fluent interface for constructing test expenses.
// Ids are sequential and creation times increase by one minute per expense so
// that ordering is deterministic.
type ExpenseBuilder struct {
	created  time.Time
	userID   string
	expenses []model.Expense
}

// NewExpenseBuilder starts a builder for userID.
func NewExpenseBuilder(userID string) *ExpenseBuilder {
	return &ExpenseBuilder{
		userID:  userID,
		created: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// ForUser switches the owner of subsequently added expenses.
func (b *ExpenseBuilder) ForUser(userID string) *ExpenseBuilder {
	b.userID = userID
	return b
}

// With adds an expense. amount and date must parse; the builder panics
// otherwise since the input is test code.
func (b *ExpenseBuilder) With(amount string, category model.Category, date string) *ExpenseBuilder {
	d, err := model.ParseDate(date)
	if err != nil {
		panic(err)
	}
	n := len(b.expenses) + 1
	b.expenses = append(b.expenses, model.Expense{
		ID:          fmt.Sprintf("exp-%03d", n),
		UserID:      b.userID,
		Amount:      decimal.RequireFromString(amount),
		Description: fmt.Sprintf("%s #%d", category, n),
		Category:    category,
		Date:        d,
		RawInput:    fmt.Sprintf("%s %s", category, amount),
		CreatedAt:   b.created.Add(time.Duration(n) * time.Minute),
	})
	return b
}

// Build returns the accumulated expenses.
func (b *ExpenseBuilder) Build() []model.Expense {
	out := make([]model.Expense, len(b.expenses))
	copy(out, b.expenses)
	return out
}
