package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors for expenses.
var (
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrEmptyDescription = errors.New("description is required")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDate      = errors.New("date is required")
)

// ValidatedExpense is an expense that passed validation and may be persisted.
type ValidatedExpense struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Category    Category
}

// Validate enforces the invariants required before any save.
func (e ValidatedExpense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Expense is a persisted expense record.
type Expense struct {
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	Amount      decimal.Decimal `json:"amount"`
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	RawInput    string          `json:"raw_input"`
}

// Fields returns the editable fields of the record.
func (e Expense) Fields() ValidatedExpense {
	return ValidatedExpense{
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
	}
}
