// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spent/internal/model"
)

// Storage defines the contract for our persistence layer. Every query is
// scoped by user id except lookups by primary key, whose owner the caller
// must check.
type Storage interface {
	ListExpenses(ctx context.Context, userID string) ([]model.Expense, error)
	GetExpense(ctx context.Context, id string) (*model.Expense, error)
	InsertExpense(ctx context.Context, expense *model.Expense) error
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// EventType names an expense lifecycle event.
type EventType string

// Expense lifecycle events.
const (
	EventExpenseCreated EventType = "expense.created"
	EventExpenseUpdated EventType = "expense.updated"
	EventExpenseDeleted EventType = "expense.deleted"
)

// Event is published after an expense changes.
type Event struct {
	OccurredAt time.Time      `json:"occurred_at"`
	Expense    *model.Expense `json:"expense,omitempty"`
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	UserID     string         `json:"user_id"`
	ExpenseID  string         `json:"expense_id"`
}

// EventPublisher delivers expense events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
