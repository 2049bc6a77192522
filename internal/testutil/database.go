// Package testutil provides test utilities for spent: an in-memory database
// with migrations applied and a fluent builder for seeding expenses.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage  *storage.SQLiteStorage
	t        *testing.T
	Expenses []model.Expense
}

// SetupTestDB creates a new in-memory test database seeded with expenses.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewExpenseBuilder("alice").
//			With("12.50", model.CategoryFood, "2024-03-15").
//			Build(),
//	)
func SetupTestDB(t *testing.T, expenses []model.Expense) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range expenses {
		if err := store.InsertExpense(ctx, &expenses[i]); err != nil {
			_ = store.Close()
			t.Fatalf("failed to seed expense %q: %v", expenses[i].ID, err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:  store,
		Expenses: expenses,
		t:        t,
	}
}

// MustGet returns the stored expense with the given id or fails the test.
func (db *TestDB) MustGet(id string) *model.Expense {
	db.t.Helper()
	expense, err := db.Storage.GetExpense(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to load expense %q: %v", id, err)
	}
	return expense
}

// Count returns how many expenses userID has stored.
func (db *TestDB) Count(userID string) int {
	db.t.Helper()
	expenses, err := db.Storage.ListExpenses(context.Background(), userID)
	if err != nil {
		db.t.Fatalf("failed to list expenses: %v", err)
	}
	return len(expenses)
}
