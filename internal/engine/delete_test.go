package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/clock"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
)

type recordingNotifier struct {
	notices []Notice
}

func (r *recordingNotifier) ShowNotice(n Notice) {
	r.notices = append(r.notices, n)
}

func newTestDeleteList(t *testing.T, ids ...string) (*DeleteList, *MockLedger, *clock.Manual, *recordingNotifier) {
	t.Helper()
	ledger := NewMockLedger()
	for _, id := range ids {
		ledger.Put(model.Expense{
			ID:          id,
			UserID:      "user-1",
			Amount:      decimal.NewFromInt(5),
			Description: id,
			Category:    model.CategoryOther,
			Date:        march1,
		})
	}
	clk := clock.NewManual(testNow)
	notifier := &recordingNotifier{}
	list := NewDeleteList(ledger, "user-1", clk, testConfig(), notifier)
	list.SetRows(ids)
	return list, ledger, clk, notifier
}

func TestDeleteList_ArmThenConfirm(t *testing.T) {
	list, ledger, clk, notifier := newTestDeleteList(t, "a", "b")
	ctx := context.Background()

	res, err := list.Click(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ClickArmed, res)
	assert.Equal(t, RowArmed, list.State("a"))

	clk.Advance(2 * time.Second)
	res, err = list.Click(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ClickDeleted, res)

	assert.Equal(t, []string{"b"}, list.Rows())
	assert.Equal(t, []string{"a"}, ledger.Deleted)
	_, armed := list.Armed()
	assert.False(t, armed)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, NoticeSuccess, notifier.notices[0].Kind)
	assert.Equal(t, 0, clk.Pending())
}

func TestDeleteList_TimeoutDisarms(t *testing.T) {
	list, ledger, clk, _ := newTestDeleteList(t, "a")
	ctx := context.Background()

	_, err := list.Click(ctx, "a")
	require.NoError(t, err)

	clk.Advance(3000 * time.Millisecond)
	assert.Equal(t, RowIdle, list.State("a"))
	_, armed := list.Armed()
	assert.False(t, armed)
	assert.Empty(t, ledger.Deleted)

	// The next click arms again instead of deleting.
	res, err := list.Click(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, ClickArmed, res)
	assert.Empty(t, ledger.Deleted)
}

func TestDeleteList_ArmingSecondRowDisarmsFirst(t *testing.T) {
	list, ledger, clk, _ := newTestDeleteList(t, "x", "y")
	ctx := context.Background()

	_, err := list.Click(ctx, "x")
	require.NoError(t, err)
	_, err = list.Click(ctx, "y")
	require.NoError(t, err)

	assert.Equal(t, RowIdle, list.State("x"))
	assert.Equal(t, RowArmed, list.State("y"))
	id, armed := list.Armed()
	assert.True(t, armed)
	assert.Equal(t, "y", id)
	assert.Equal(t, 1, clk.Pending(), "the first row's timer was cancelled")

	// Clicking x again only re-arms it.
	res, err := list.Click(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, ClickArmed, res)
	assert.Empty(t, ledger.Deleted)
}

func TestDeleteList_FailureReverts(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantText string
	}{
		{name: "storage failure", err: errors.New("disk full"), wantText: DefaultConfig().Messages.DeleteFailed},
		{name: "forbidden", err: common.ErrForbidden, wantText: DefaultConfig().Messages.Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, ledger, _, notifier := newTestDeleteList(t, "a")
			ledger.DeleteErr = tt.err
			ctx := context.Background()

			_, err := list.Click(ctx, "a")
			require.NoError(t, err)
			res, err := list.Click(ctx, "a")
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, ClickFailed, res)

			assert.Equal(t, []string{"a"}, list.Rows())
			assert.Equal(t, RowIdle, list.State("a"))
			require.Len(t, notifier.notices, 1)
			assert.Equal(t, NoticeError, notifier.notices[0].Kind)
			assert.Equal(t, tt.wantText, notifier.notices[0].Text)
		})
	}
}

func TestDeleteList_AlreadyDeletedCountsAsSuccess(t *testing.T) {
	list, _, _, _ := newTestDeleteList(t)
	list.SetRows([]string{"ghost"})
	ctx := context.Background()

	_, err := list.Click(ctx, "ghost")
	require.NoError(t, err)
	res, err := list.Click(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, ClickDeleted, res)
	assert.Empty(t, list.Rows())
}

func TestDeleteList_UnknownRow(t *testing.T) {
	list, _, _, _ := newTestDeleteList(t, "a")
	_, err := list.Click(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownRow)
}

func TestDeleteList_SetRowsResetsArm(t *testing.T) {
	list, _, clk, _ := newTestDeleteList(t, "a", "b")
	_, err := list.Click(context.Background(), "a")
	require.NoError(t, err)

	list.SetRows([]string{"a", "b"})
	assert.Equal(t, RowIdle, list.State("a"))
	assert.Equal(t, 0, clk.Pending())
}

func TestWorkflowAsNotifier(t *testing.T) {
	wf := New(NewMockExtractor(), NewMockLedger(), clock.NewManual(testNow), "user-1", testConfig())
	ledger := NewMockLedger()
	ledger.DeleteErr = errors.New("boom")
	list := NewDeleteList(ledger, "user-1", clock.NewManual(testNow), testConfig(), wf)
	list.SetRows([]string{"a"})

	_, _ = list.Click(context.Background(), "a")
	_, _ = list.Click(context.Background(), "a")

	n := wf.Snapshot().Notice
	require.NotNil(t, n)
	assert.Equal(t, DefaultConfig().Messages.DeleteFailed, n.Text)
}
