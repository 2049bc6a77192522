// Package ledger owns the lifecycle of stored expenses: it validates, assigns
// ids, enforces ownership and announces every change.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/clock"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

// Service implements engine.Ledger and engine.Deleter on top of Storage.
type Service struct {
	store     service.Storage
	publisher service.EventPublisher
	clock     clock.Clock
	logger    *slog.Logger
	newID     func() string
}

// New creates a ledger service. A nil publisher discards events.
func New(store service.Storage, publisher service.EventPublisher, clk clock.Clock, logger *slog.Logger) *Service {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Create stores a new expense for userID.
func (s *Service) Create(ctx context.Context, userID string, expense model.ValidatedExpense, rawInput string) (model.Expense, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Expense{}, fmt.Errorf("%w: user id is required", common.ErrInvalidInput)
	}
	if err := expense.Validate(); err != nil {
		return model.Expense{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}

	record := model.Expense{
		ID:          s.newID(),
		UserID:      userID,
		Amount:      expense.Amount,
		Description: strings.TrimSpace(expense.Description),
		Category:    expense.Category,
		Date:        model.Day(expense.Date),
		RawInput:    rawInput,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.store.InsertExpense(ctx, &record); err != nil {
		return model.Expense{}, fmt.Errorf("failed to create expense: %w", err)
	}

	s.logger.Info("Expense created",
		"expense_id", record.ID,
		"user_id", userID,
		"category", record.Category,
		"amount", record.Amount.String())
	s.publish(ctx, service.EventExpenseCreated, userID, record.ID, &record)
	return record, nil
}

// Update replaces the editable fields of an expense owned by userID.
func (s *Service) Update(ctx context.Context, userID, id string, expense model.ValidatedExpense) (model.Expense, error) {
	record, err := s.owned(ctx, userID, id)
	if err != nil {
		return model.Expense{}, err
	}
	if err := expense.Validate(); err != nil {
		return model.Expense{}, fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}

	record.Amount = expense.Amount
	record.Description = strings.TrimSpace(expense.Description)
	record.Category = expense.Category
	record.Date = model.Day(expense.Date)
	if err := s.store.UpdateExpense(ctx, record); err != nil {
		return model.Expense{}, fmt.Errorf("failed to update expense: %w", err)
	}

	s.logger.Info("Expense updated", "expense_id", id, "user_id", userID)
	s.publish(ctx, service.EventExpenseUpdated, userID, id, record)
	return *record, nil
}

// Delete removes an expense owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.logger.Info("Expense deleted", "expense_id", id, "user_id", userID)
	s.publish(ctx, service.EventExpenseDeleted, userID, id, nil)
	return nil
}

// Get returns an expense owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (model.Expense, error) {
	record, err := s.owned(ctx, userID, id)
	if err != nil {
		return model.Expense{}, err
	}
	return *record, nil
}

// List returns userID's expenses, most recent first.
func (s *Service) List(ctx context.Context, userID string) ([]model.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// owned loads id and checks that userID owns it. Nothing is written before
// this check passes.
func (s *Service) owned(ctx context.Context, userID, id string) (*model.Expense, error) {
	record, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		s.logger.Warn("Rejected access to another user's expense",
			"expense_id", id,
			"user_id", userID)
		return nil, fmt.Errorf("expense %s: %w", id, common.ErrForbidden)
	}
	return record, nil
}

func (s *Service) publish(ctx context.Context, typ service.EventType, userID, expenseID string, record *model.Expense) {
	if s.publisher == nil {
		return
	}
	event := service.Event{
		ID:         s.newID(),
		Type:       typ,
		UserID:     userID,
		ExpenseID:  expenseID,
		Expense:    record,
		OccurredAt: s.clock.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The change is already committed.
		s.logger.Warn("Failed to publish expense event",
			"event_type", typ,
			"expense_id", expenseID,
			"error", err)
	}
}
