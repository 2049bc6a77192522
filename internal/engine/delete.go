package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/spent/internal/clock"
	"github.com/Veraticus/spent/internal/common"
)

// ErrUnknownRow is returned when a click targets a row that is not displayed.
var ErrUnknownRow = errors.New("row is not in the list")

// RowState is the delete-gesture state of one row.
type RowState int

// Row states.
const (
	RowIdle RowState = iota
	RowArmed
	RowDeleting
)

func (s RowState) String() string {
	switch s {
	case RowIdle:
		return "idle"
	case RowArmed:
		return "armed"
	case RowDeleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// ClickResult reports what a click did.
type ClickResult int

// Click results.
const (
	ClickIgnored ClickResult = iota
	ClickArmed
	ClickDeleted
	ClickFailed
)

// DeleteList tracks the two-step delete gesture for a list of rows. At most
// one row is armed at a time; an armed row disarms itself after the timeout.
// A row leaves the list only after the deleter acknowledges.
type DeleteList struct {
	deleter  Deleter
	notifier Notifier
	clock    clock.Clock
	timer    clock.Timer
	states   map[string]RowState
	userID   string
	armed    string
	messages Messages
	rows     []string
	timeout  time.Duration
	gen      int
	mu       sync.Mutex
}

// NewDeleteList creates a delete gesture controller for userID's rows.
// Notices for failed deletes go to notifier, which may be nil.
func NewDeleteList(deleter Deleter, userID string, clk clock.Clock, cfg Config, notifier Notifier) *DeleteList {
	if clk == nil {
		clk = clock.Real()
	}
	cfg = cfg.withDefaults()
	return &DeleteList{
		deleter:  deleter,
		notifier: notifier,
		clock:    clk,
		userID:   userID,
		timeout:  cfg.DeleteArmTimeout,
		messages: cfg.Messages,
		states:   make(map[string]RowState),
	}
}

// SetRows replaces the displayed rows and clears any arm state.
func (l *DeleteList) SetRows(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.disarmLocked()
	l.rows = append([]string(nil), ids...)
	l.states = make(map[string]RowState, len(ids))
	for _, id := range ids {
		l.states[id] = RowIdle
	}
}

// Rows returns the displayed rows in order.
func (l *DeleteList) Rows() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.rows...)
}

// State returns the gesture state of row id.
func (l *DeleteList) State(id string) RowState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states[id]
}

// Armed returns the armed row, if any.
func (l *DeleteList) Armed() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.armed, l.armed != ""
}

// Click advances the gesture for row id. The first click arms the row; a
// second click before the timeout deletes it. A missing record counts as
// deleted. On any other failure the row is disarmed and a notice is shown.
func (l *DeleteList) Click(ctx context.Context, id string) (ClickResult, error) {
	l.mu.Lock()
	state, ok := l.states[id]
	if !ok {
		l.mu.Unlock()
		return ClickIgnored, fmt.Errorf("%w: %s", ErrUnknownRow, id)
	}

	switch state {
	case RowDeleting:
		l.mu.Unlock()
		return ClickIgnored, nil

	case RowIdle:
		l.disarmLocked()
		l.armLocked(id)
		l.mu.Unlock()
		return ClickArmed, nil
	}

	// Second click on the armed row.
	l.stopTimerLocked()
	l.armed = ""
	l.states[id] = RowDeleting
	l.mu.Unlock()

	err := l.deleter.Delete(ctx, l.userID, id)

	l.mu.Lock()
	if err == nil || errors.Is(err, common.ErrNotFound) {
		l.removeLocked(id)
		l.mu.Unlock()
		if err != nil {
			slog.Debug("expense already deleted", "id", id)
		}
		l.notify(Notice{Kind: NoticeSuccess, Text: l.messages.Deleted})
		return ClickDeleted, nil
	}
	if _, still := l.states[id]; still {
		l.states[id] = RowIdle
	}
	l.mu.Unlock()

	text := l.messages.DeleteFailed
	if errors.Is(err, common.ErrForbidden) {
		text = l.messages.Forbidden
	} else {
		common.LogError(err, "failed to delete expense", common.Fields{"id": id})
	}
	l.notify(Notice{Kind: NoticeError, Text: text})
	return ClickFailed, fmt.Errorf("delete %s: %w", id, err)
}

func (l *DeleteList) armLocked(id string) {
	l.armed = id
	l.states[id] = RowArmed
	l.gen++
	gen := l.gen
	l.timer = l.clock.AfterFunc(l.timeout, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.gen != gen || l.armed != id {
			return
		}
		l.armed = ""
		l.timer = nil
		if l.states[id] == RowArmed {
			l.states[id] = RowIdle
		}
	})
}

func (l *DeleteList) disarmLocked() {
	l.stopTimerLocked()
	if l.armed != "" {
		if l.states[l.armed] == RowArmed {
			l.states[l.armed] = RowIdle
		}
		l.armed = ""
	}
}

func (l *DeleteList) stopTimerLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.gen++
}

func (l *DeleteList) removeLocked(id string) {
	delete(l.states, id)
	for i, row := range l.rows {
		if row == id {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			return
		}
	}
}

func (l *DeleteList) notify(n Notice) {
	if l.notifier != nil {
		l.notifier.ShowNotice(n)
	}
}
