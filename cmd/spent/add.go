package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/engine"
	"github.com/Veraticus/spent/internal/policy"
	"github.com/Veraticus/spent/internal/tui"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Record expenses from plain sentences",
		Long: `Describe an expense the way you would say it and spent records it.

Clear inputs are saved straight away. When something is missing or the
guess is uncertain, a confirmation form opens pre-filled with what was
understood. Without arguments, add keeps reading expenses until an empty
line.

Examples:
  spent add lunch 15
  spent add "uber to the airport $32 yesterday"
  spent add --tui
  spent add --file expenses.txt`,
		RunE: runAdd,
	}

	cmd.Flags().Bool("tui", false, "Use the full-screen confirmation form")
	cmd.Flags().StringP("file", "f", "", "Record one expense per line from a file")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	useTUI, _ := cmd.Flags().GetBool("tui")
	file, _ := cmd.Flags().GetString("file")
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	wf, err := a.newWorkflow()
	if err != nil {
		return err
	}

	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	s := &session{wf: wf, prompter: prompter, useTUI: useTUI}

	if file != "" {
		return s.runBatch(ctx, file)
	}
	if len(args) > 0 {
		return s.submit(ctx, strings.Join(args, " "))
	}

	for {
		text, err := prompter.ReadInput(ctx, "Expense (empty line to finish)")
		if errors.Is(err, cli.ErrInputClosed) || errors.Is(err, cli.ErrInputCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		if text == "" {
			return nil
		}
		if err := s.submit(ctx, text); err != nil && !isRecoverable(err) {
			return err
		}
	}
}

// session runs workflow submissions and their confirmations in a terminal.
type session struct {
	wf       *engine.Workflow
	prompter *cli.Prompter
	useTUI   bool
}

// submit sends text through the workflow and opens the confirmation when
// the workflow asks for one.
func (s *session) submit(ctx context.Context, text string) error {
	res, err := s.wf.Submit(ctx, text)
	if errors.Is(err, engine.ErrEmptyInput) {
		return nil
	}
	if res.Draft == nil {
		s.showNotice()
		return err
	}

	if err != nil {
		// Auto-save failed; the drafted values come back for a retry.
		s.showNotice()
	}
	return s.confirm(ctx, *res.Draft)
}

// confirm shows draft until it is saved or dismissed. A failed save keeps
// the draft open with the user's edits.
func (s *session) confirm(ctx context.Context, draft engine.Draft) error {
	if s.useTUI {
		return s.confirmTUI(ctx, draft)
	}

	for {
		edited, ok, err := s.prompter.ConfirmDraft(ctx, draft)
		if err != nil {
			s.wf.Cancel()
			return err
		}
		if !ok {
			s.wf.Cancel()
			s.prompter.ShowNotice(engine.Notice{Kind: engine.NoticeSuccess, Text: "Discarded."})
			return nil
		}

		_, err = s.wf.Confirm(ctx, edited)
		s.showNotice()
		if err == nil {
			return nil
		}
		if errors.Is(err, engine.ErrNoDraft) || errors.Is(err, engine.ErrBusy) {
			return err
		}
		slog.Debug("confirmation save failed", "error", err)
		draft = edited
	}
}

func (s *session) confirmTUI(ctx context.Context, draft engine.Draft) error {
	save := func(ctx context.Context, d engine.Draft) error {
		_, err := s.wf.Confirm(ctx, d)
		if err == nil {
			return nil
		}
		if n := s.wf.Snapshot().Notice; n != nil {
			return common.NewUserError(n.Text, err)
		}
		return err
	}

	_, saved, err := tui.RunConfirm(ctx, draft, save)
	if err != nil {
		s.wf.Cancel()
		return err
	}
	if !saved {
		s.wf.Cancel()
		s.prompter.ShowNotice(engine.Notice{Kind: engine.NoticeSuccess, Text: "Discarded."})
		return nil
	}
	s.showNotice()
	return nil
}

// runBatch submits every line of path. Lines that need confirmation are not
// prompted for; they are listed at the end so they can be added by hand.
func (s *session) runBatch(ctx context.Context, path string) error {
	f, err := os.Open(path) //nolint:gosec // user-supplied input file
	if err != nil {
		return fmt.Errorf("failed to open batch file: %w", err)
	}
	defer func() { _ = f.Close() }()

	lines, err := readBatchLines(f)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		s.prompter.ShowNotice(engine.Notice{Kind: engine.NoticeError, Text: "No expenses found in " + path})
		return nil
	}

	interrupts := cli.NewInterruptHandler(s.prompter.Writer(), "Batch interrupted!", "Lines already saved were kept.")
	ctx, stop := interrupts.HandleInterrupts(ctx)
	defer stop()

	var (
		saved    int
		rejected []string
		pending  []string
		failed   []string
	)

	s.prompter.StartProgress(len(lines), "Recording expenses")
	for _, line := range lines {
		if ctx.Err() != nil {
			break
		}
		res, err := s.wf.Submit(ctx, line)
		s.prompter.Advance()

		switch {
		case err != nil:
			s.wf.Cancel()
			failed = append(failed, line)
			slog.Debug("batch line failed", "line", line, "error", err)
		case res.Saved != nil:
			saved++
		case res.Decision.Outcome == policy.Reject:
			rejected = append(rejected, line)
		case res.Draft != nil:
			s.wf.Cancel()
			pending = append(pending, line)
		}
	}
	s.prompter.FinishProgress()

	w := s.prompter.Writer()
	fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Saved %d of %d expenses", saved, len(lines))))
	report := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%s (%d):", title, len(items))))
		for _, item := range items {
			fmt.Fprintf(w, "  • %s\n", item)
		}
	}
	report("Needs confirmation, add these interactively", pending)
	report("Not understood as expenses", rejected)
	report("Failed", failed)

	if interrupts.WasInterrupted() {
		return context.Canceled
	}
	return nil
}

func (s *session) showNotice() {
	if n := s.wf.Snapshot().Notice; n != nil {
		s.prompter.ShowNotice(*n)
	}
}

// isRecoverable reports whether an interactive loop should keep going after
// err.
func isRecoverable(err error) bool {
	return errors.Is(err, common.ErrOracle) ||
		errors.Is(err, common.ErrPersistence) ||
		errors.Is(err, common.ErrForbidden) ||
		errors.Is(err, common.ErrInvalidInput)
}
