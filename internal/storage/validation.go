// Package storage provides the data persistence layer for spent.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spent/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidExpense = errors.New("invalid expense")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense checks a record before it is written.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if strings.TrimSpace(expense.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidExpense)
	}
	if strings.TrimSpace(expense.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidExpense)
	}
	if err := expense.Fields().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExpense, err)
	}
	return nil
}
