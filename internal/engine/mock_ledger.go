package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
)

// MockLedger is an in-memory implementation of Ledger and Deleter for tests.
type MockLedger struct {
	// CreateErr, UpdateErr and DeleteErr, when set, fail the next matching call.
	CreateErr error
	UpdateErr error
	DeleteErr error
	// Block, when set, is waited on before Create returns.
	Block    chan struct{}
	expenses map[string]model.Expense
	Created  []model.ValidatedExpense
	Updated  []string
	Deleted  []string
	seq      int
	mu       sync.Mutex
}

// NewMockLedger creates an empty mock ledger.
func NewMockLedger() *MockLedger {
	return &MockLedger{expenses: make(map[string]model.Expense)}
}

// Put stores e directly.
func (m *MockLedger) Put(e model.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[e.ID] = e
}

// Get returns the stored expense with id.
func (m *MockLedger) Get(id string) (model.Expense, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	return e, ok
}

// Create stores a new expense.
func (m *MockLedger) Create(ctx context.Context, userID string, expense model.ValidatedExpense, rawInput string) (model.Expense, error) {
	m.mu.Lock()
	block := m.Block
	m.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return model.Expense{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, expense)
	if err := m.CreateErr; err != nil {
		m.CreateErr = nil
		return model.Expense{}, err
	}
	if err := expense.Validate(); err != nil {
		return model.Expense{}, err
	}

	m.seq++
	e := model.Expense{
		ID:          fmt.Sprintf("exp-%d", m.seq),
		UserID:      userID,
		Amount:      expense.Amount,
		Description: expense.Description,
		Category:    expense.Category,
		Date:        expense.Date,
		RawInput:    rawInput,
		CreatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	m.expenses[e.ID] = e
	return e, nil
}

// Update replaces the fields of an existing expense.
func (m *MockLedger) Update(_ context.Context, userID, id string, expense model.ValidatedExpense) (model.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updated = append(m.Updated, id)
	if err := m.UpdateErr; err != nil {
		m.UpdateErr = nil
		return model.Expense{}, err
	}

	e, ok := m.expenses[id]
	if !ok {
		return model.Expense{}, common.ErrNotFound
	}
	if e.UserID != userID {
		return model.Expense{}, common.ErrForbidden
	}
	e.Amount = expense.Amount
	e.Description = expense.Description
	e.Category = expense.Category
	e.Date = expense.Date
	m.expenses[id] = e
	return e, nil
}

// Delete removes an expense.
func (m *MockLedger) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	if err := m.DeleteErr; err != nil {
		m.DeleteErr = nil
		return err
	}

	e, ok := m.expenses[id]
	if !ok {
		return common.ErrNotFound
	}
	if e.UserID != userID {
		return common.ErrForbidden
	}
	delete(m.expenses, id)
	return nil
}
