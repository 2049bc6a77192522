// Package engine sequences expense capture: submitted text goes to the
// extractor, the decision policy routes the result to auto-save, an editable
// confirmation or a rejection, and confirmed expenses go to the ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spent/internal/clock"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/policy"
)

// Workflow errors.
var (
	ErrBusy       = errors.New("a request is already in flight")
	ErrEmptyInput = errors.New("input is empty")
	ErrNoDraft    = errors.New("no confirmation is open")
)

// State is the main input's lifecycle state.
type State int

// Workflow states.
const (
	StateIdle State = iota
	StateParsing
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// Messages holds the user-facing wording of workflow notices.
type Messages struct {
	OracleFailed string
	SaveFailed   string
	Forbidden    string
	DeleteFailed string
	Deleted      string
	Updated      string
}

// Config holds the workflow's timing and wording.
type Config struct {
	Messages         Messages
	NoticeDuration   time.Duration
	DeleteArmTimeout time.Duration
}

// DefaultConfig returns the standard durations and wording.
func DefaultConfig() Config {
	return Config{
		NoticeDuration:   12 * time.Second,
		DeleteArmTimeout: 3 * time.Second,
		Messages: Messages{
			OracleFailed: "Something went wrong reading that. Please try again.",
			SaveFailed:   "Couldn't save your expense. Nothing was lost, please try again.",
			Forbidden:    "You don't have permission to change that expense.",
			DeleteFailed: "Couldn't delete that expense. Please try again.",
			Deleted:      "Expense deleted.",
			Updated:      "Expense updated.",
		},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.NoticeDuration <= 0 {
		c.NoticeDuration = def.NoticeDuration
	}
	if c.DeleteArmTimeout <= 0 {
		c.DeleteArmTimeout = def.DeleteArmTimeout
	}
	m := &c.Messages
	if m.OracleFailed == "" {
		m.OracleFailed = def.Messages.OracleFailed
	}
	if m.SaveFailed == "" {
		m.SaveFailed = def.Messages.SaveFailed
	}
	if m.Forbidden == "" {
		m.Forbidden = def.Messages.Forbidden
	}
	if m.DeleteFailed == "" {
		m.DeleteFailed = def.Messages.DeleteFailed
	}
	if m.Deleted == "" {
		m.Deleted = def.Messages.Deleted
	}
	if m.Updated == "" {
		m.Updated = def.Messages.Updated
	}
	return c
}

// Result describes what a submission led to.
type Result struct {
	// Saved is set when the expense was auto-saved.
	Saved *model.Expense
	// Draft is set when a confirmation was opened.
	Draft    *Draft
	Decision policy.Decision
}

// View is a snapshot of everything a front end renders.
type View struct {
	Modal        *Draft
	Notice       *Notice
	Input        string
	State        State
	InputEnabled bool
}

// Workflow is the stateful controller for one user's capture session. At most
// one extraction or save is in flight at a time.
type Workflow struct {
	extractor Extractor
	ledger    Ledger
	clock     clock.Clock
	modal     *Draft
	notices   *noticeBoard
	userID    string
	input     string
	cfg       Config
	state     State
	mu        sync.Mutex
}

// New creates a workflow for userID.
func New(extractor Extractor, ledger Ledger, clk clock.Clock, userID string, cfg Config) *Workflow {
	if clk == nil {
		clk = clock.Real()
	}
	cfg = cfg.withDefaults()
	return &Workflow{
		extractor: extractor,
		ledger:    ledger,
		clock:     clk,
		userID:    userID,
		cfg:       cfg,
		notices:   newNoticeBoard(clk, cfg.NoticeDuration),
	}
}

// Config returns the effective configuration.
func (w *Workflow) Config() Config {
	return w.cfg
}

// Submit runs text through extraction and the decision policy. A rejection is
// not an error: it is reported through the result and a notice.
func (w *Workflow) Submit(ctx context.Context, text string) (Result, error) {
	w.mu.Lock()
	if w.state != StateIdle {
		w.mu.Unlock()
		return Result{}, ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		w.mu.Unlock()
		return Result{}, ErrEmptyInput
	}
	w.input = text
	w.state = StateParsing
	w.mu.Unlock()

	extracted, err := w.extractor.Extract(ctx, text)
	if err != nil {
		w.mu.Lock()
		w.state = StateIdle
		w.mu.Unlock()

		slog.Warn("extraction failed", "error", err)
		w.notices.show(Notice{Kind: NoticeError, Text: w.cfg.Messages.OracleFailed})
		if !errors.Is(err, common.ErrOracle) {
			err = fmt.Errorf("%w: %w", common.ErrOracle, err)
		}
		return Result{}, err
	}

	decision := policy.Decide(extracted)
	res := Result{Decision: decision}

	switch decision.Outcome {
	case policy.Reject:
		w.mu.Lock()
		w.state = StateIdle
		w.mu.Unlock()

		slog.Debug("input rejected", "reason", decision.Message)
		w.notices.show(Notice{Kind: NoticeError, Text: decision.Message})
		return res, nil

	case policy.NeedsConfirmation:
		draft := DraftFromResult(extracted, decision.RequiredFields, text, w.clock.Now())
		w.mu.Lock()
		w.state = StateIdle
		w.modal = &draft
		w.mu.Unlock()

		res.Draft = &draft
		return res, nil

	default:
		w.mu.Lock()
		w.state = StateSaving
		w.mu.Unlock()

		saved, err := w.ledger.Create(ctx, w.userID, *decision.Expense, text)

		w.mu.Lock()
		w.state = StateIdle
		if err != nil {
			// The drafted data is offered back for a retry.
			draft := draftFromFields(*decision.Expense, text)
			w.modal = &draft
			res.Draft = &draft
			w.mu.Unlock()

			w.notices.show(w.failureNotice(err))
			return res, fmt.Errorf("auto-save failed: %w", err)
		}
		w.input = ""
		w.mu.Unlock()

		res.Saved = &saved
		w.notices.show(savedNotice(saved))
		return res, nil
	}
}

// Confirm validates draft and saves it, updating the record when the draft
// edits an existing expense. Invalid drafts return FieldErrors and nothing is
// persisted.
func (w *Workflow) Confirm(ctx context.Context, draft Draft) (model.Expense, error) {
	w.mu.Lock()
	if w.modal == nil {
		w.mu.Unlock()
		return model.Expense{}, ErrNoDraft
	}
	if w.state != StateIdle {
		w.mu.Unlock()
		return model.Expense{}, ErrBusy
	}

	draft = draft.clone()
	w.modal = &draft

	expense, errs := draft.Validate()
	if errs != nil {
		w.mu.Unlock()
		return model.Expense{}, errs
	}
	w.state = StateSaving
	w.mu.Unlock()

	var (
		saved model.Expense
		err   error
	)
	if draft.ExpenseID != "" {
		saved, err = w.ledger.Update(ctx, w.userID, draft.ExpenseID, expense)
	} else {
		saved, err = w.ledger.Create(ctx, w.userID, expense, draft.RawInput)
	}

	w.mu.Lock()
	w.state = StateIdle
	if err != nil {
		w.mu.Unlock()
		w.notices.show(w.failureNotice(err))
		return model.Expense{}, fmt.Errorf("save failed: %w", err)
	}
	w.modal = nil
	if draft.ExpenseID == "" {
		w.input = ""
	}
	w.mu.Unlock()

	if draft.ExpenseID != "" {
		w.notices.show(Notice{Kind: NoticeSuccess, Text: w.cfg.Messages.Updated})
	} else {
		w.notices.show(savedNotice(saved))
	}
	return saved, nil
}

// Cancel closes the confirmation and discards its draft.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.modal = nil
}

// OpenEdit opens the confirmation pre-filled with an existing record.
func (w *Workflow) OpenEdit(expense model.Expense) (Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return Draft{}, ErrBusy
	}
	draft := DraftFromExpense(expense)
	w.modal = &draft
	return draft.clone(), nil
}

// SetInput replaces the retained input text.
func (w *Workflow) SetInput(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input = text
}

// Input returns the retained input text.
func (w *Workflow) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// ShowNotice displays n for the configured duration.
func (w *Workflow) ShowNotice(n Notice) {
	w.notices.show(n)
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() View {
	w.mu.Lock()
	v := View{
		State:        w.state,
		Input:        w.input,
		InputEnabled: w.state == StateIdle,
	}
	if w.modal != nil {
		d := w.modal.clone()
		v.Modal = &d
	}
	w.mu.Unlock()

	v.Notice = w.notices.current()
	return v
}

func (w *Workflow) failureNotice(err error) Notice {
	if errors.Is(err, common.ErrForbidden) {
		return Notice{Kind: NoticeError, Text: w.cfg.Messages.Forbidden}
	}
	common.LogError(err, "failed to save expense", common.Fields{"user_id": w.userID})
	return Notice{Kind: NoticeError, Text: common.UserMessage(err, w.cfg.Messages.SaveFailed)}
}

func savedNotice(e model.Expense) Notice {
	return Notice{
		Kind: NoticeSuccess,
		Text: fmt.Sprintf("Saved $%s for %s (%s) on %s",
			e.Amount.StringFixed(2), e.Description, e.Category, model.FormatDate(e.Date)),
	}
}
