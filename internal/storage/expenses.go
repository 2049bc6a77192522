package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
)

// timestampLayout is fixed width so that created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const expenseColumns = `id, user_id, amount, description, category, date, raw_input, created_at`

// ListExpenses returns a user's expenses, most recent first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, userID string) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query expenses: %w", common.ErrPersistence, err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		expense, scanErr := scanExpense(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating expenses: %w", common.ErrPersistence, err)
	}

	return expenses, nil
}

// GetExpense returns the expense with the given id, or common.ErrNotFound.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// InsertExpense stores a new expense.
func (s *SQLiteStorage) InsertExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		expense.ID,
		expense.UserID,
		expense.Amount.String(),
		expense.Description,
		string(expense.Category),
		model.FormatDate(expense.Date),
		expense.RawInput,
		expense.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert expense: %w", common.ErrPersistence, err)
	}
	return nil
}

// UpdateExpense overwrites the editable fields of an existing expense. The
// owner, raw input and creation time are never changed.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET amount = ?, description = ?, category = ?, date = ?
		WHERE id = ?
	`,
		expense.Amount.String(),
		expense.Description,
		string(expense.Category),
		model.FormatDate(expense.Date),
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update expense: %w", common.ErrPersistence, err)
	}
	return requireAffected(result, expense.ID)
}

// DeleteExpense removes an expense.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete expense: %w", common.ErrPersistence, err)
	}
	return requireAffected(result, id)
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %w", common.ErrPersistence, err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*model.Expense, error) {
	var (
		e         model.Expense
		amount    string
		category  string
		date      string
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.UserID, &amount, &e.Description, &category, &date, &e.RawInput, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to scan expense: %w", common.ErrPersistence, err)
	}

	var err error
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("%w: expense %s has invalid amount %q: %w", common.ErrPersistence, e.ID, amount, err)
	}
	if e.Date, err = model.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: expense %s: %w", common.ErrPersistence, e.ID, err)
	}
	if e.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("%w: expense %s has invalid created_at: %w", common.ErrPersistence, e.ID, err)
	}

	e.Category = model.ParseCategory(category)
	if string(e.Category) != category {
		slog.Debug("Normalized stored category", "expense_id", e.ID, "stored", category)
	}
	return &e, nil
}
