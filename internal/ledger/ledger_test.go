package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/clock"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
	"github.com/Veraticus/spent/internal/testutil"
)

type recordingPublisher struct {
	err    error
	events []service.Event
	mu     sync.Mutex
}

func (r *recordingPublisher) Publish(_ context.Context, event service.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) types() []service.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]service.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var testNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, seed []model.Expense) (*Service, *testutil.TestDB, *recordingPublisher) {
	t.Helper()
	db := testutil.SetupTestDB(t, seed)
	pub := &recordingPublisher{}
	svc := New(db.Storage, pub, clock.NewManual(testNow), slog.New(slog.NewTextHandler(io.Discard, nil)))
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc, db, pub
}

func validExpense() model.ValidatedExpense {
	return model.ValidatedExpense{
		Amount:      decimal.RequireFromString("12.50"),
		Description: "  lunch  ",
		Category:    model.CategoryFood,
		Date:        time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC),
	}
}

func TestCreate(t *testing.T) {
	svc, db, pub := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", validExpense(), "lunch 12.50")
	require.NoError(t, err)

	assert.Equal(t, "id-1", created.ID)
	assert.Equal(t, "alice", created.UserID)
	assert.Equal(t, "lunch", created.Description)
	assert.Equal(t, "lunch 12.50", created.RawInput)
	assert.True(t, testNow.Equal(created.CreatedAt))
	assert.Equal(t, "2024-03-15", model.FormatDate(created.Date))

	stored := db.MustGet("id-1")
	assert.True(t, created.Amount.Equal(stored.Amount))

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, service.EventExpenseCreated, event.Type)
	assert.Equal(t, "id-2", event.ID)
	assert.Equal(t, "id-1", event.ExpenseID)
	require.NotNil(t, event.Expense)
	assert.Equal(t, "lunch", event.Expense.Description)
}

func TestCreate_Invalid(t *testing.T) {
	svc, db, pub := newTestService(t, nil)
	ctx := context.Background()

	bad := validExpense()
	bad.Amount = decimal.Zero
	_, err := svc.Create(ctx, "alice", bad, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = svc.Create(ctx, " ", validExpense(), "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	assert.Equal(t, 0, db.Count("alice"))
	assert.Empty(t, pub.events)
}

func TestUpdate(t *testing.T) {
	seed := testutil.NewExpenseBuilder("alice").With("10", model.CategoryOther, "2024-03-01").Build()
	svc, db, pub := newTestService(t, seed)
	ctx := context.Background()

	edit := model.ValidatedExpense{
		Amount:      decimal.RequireFromString("42"),
		Description: "concert",
		Category:    model.CategoryEntertainment,
		Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	updated, err := svc.Update(ctx, "alice", "exp-001", edit)
	require.NoError(t, err)
	assert.Equal(t, "concert", updated.Description)
	assert.Equal(t, seed[0].RawInput, updated.RawInput)
	assert.True(t, seed[0].CreatedAt.Equal(updated.CreatedAt))

	stored := db.MustGet("exp-001")
	assert.Equal(t, model.CategoryEntertainment, stored.Category)
	assert.Equal(t, "42", stored.Amount.String())
	assert.Equal(t, []service.EventType{service.EventExpenseUpdated}, pub.types())
}

func TestOwnership(t *testing.T) {
	seed := testutil.NewExpenseBuilder("bob").With("10", model.CategoryFood, "2024-03-01").Build()

	tests := []struct {
		run     func(*Service) error
		wantErr error
		name    string
	}{
		{
			name: "update someone else's",
			run: func(s *Service) error {
				_, err := s.Update(context.Background(), "alice", "exp-001", validExpense())
				return err
			},
			wantErr: common.ErrForbidden,
		},
		{
			name: "delete someone else's",
			run: func(s *Service) error {
				return s.Delete(context.Background(), "alice", "exp-001")
			},
			wantErr: common.ErrForbidden,
		},
		{
			name: "get someone else's",
			run: func(s *Service) error {
				_, err := s.Get(context.Background(), "alice", "exp-001")
				return err
			},
			wantErr: common.ErrForbidden,
		},
		{
			name: "update missing",
			run: func(s *Service) error {
				_, err := s.Update(context.Background(), "bob", "nope", validExpense())
				return err
			},
			wantErr: common.ErrNotFound,
		},
		{
			name: "delete missing",
			run: func(s *Service) error {
				return s.Delete(context.Background(), "bob", "nope")
			},
			wantErr: common.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db, pub := newTestService(t, seed)
			err := tt.run(svc)
			assert.ErrorIs(t, err, tt.wantErr)

			stored := db.MustGet("exp-001")
			assert.Equal(t, "bob", stored.UserID)
			assert.True(t, decimal.NewFromInt(10).Equal(stored.Amount))
			assert.Empty(t, pub.events)
		})
	}
}

func TestDelete(t *testing.T) {
	seed := testutil.NewExpenseBuilder("alice").
		With("10", model.CategoryFood, "2024-03-01").
		With("20", model.CategoryFood, "2024-03-02").
		Build()
	svc, db, pub := newTestService(t, seed)

	require.NoError(t, svc.Delete(context.Background(), "alice", "exp-001"))
	assert.Equal(t, 1, db.Count("alice"))

	require.Len(t, pub.events, 1)
	assert.Equal(t, service.EventExpenseDeleted, pub.events[0].Type)
	assert.Nil(t, pub.events[0].Expense)
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, db, pub := newTestService(t, nil)
	pub.err = errors.New("broker down")

	_, err := svc.Create(context.Background(), "alice", validExpense(), "lunch")
	require.NoError(t, err)
	assert.Equal(t, 1, db.Count("alice"))
}

func TestList(t *testing.T) {
	seed := testutil.NewExpenseBuilder("alice").
		With("10", model.CategoryFood, "2024-03-01").
		With("20", model.CategoryFood, "2024-03-05").
		ForUser("bob").
		With("30", model.CategoryFood, "2024-03-09").
		Build()
	svc, _, _ := newTestService(t, seed)

	expenses, err := svc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "exp-002", expenses[0].ID)
	assert.Equal(t, "exp-001", expenses[1].ID)
}

func TestNilPublisher(t *testing.T) {
	db := testutil.SetupTestDB(t, nil)
	svc := New(db.Storage, nil, nil, nil)

	created, err := svc.Create(context.Background(), "alice", validExpense(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}
