package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/spent/internal/engine"
	"github.com/Veraticus/spent/internal/model"
)

// ErrInputClosed is returned when input ends while a prompt is waiting.
var ErrInputClosed = errors.New("input terminated")

var fieldLabels = map[engine.FormField]string{
	engine.FormAmount:      "Amount",
	engine.FormDescription: "Description",
	engine.FormCategory:    "Category",
	engine.FormDate:        "Date",
}

// Prompter drives the confirmation form, the delete gesture and batch
// progress over a plain reader and writer.
type Prompter struct {
	writer      io.Writer
	reader      *NonBlockingReader
	progressBar *progressbar.ProgressBar
}

// NewPrompter creates a prompter. Nil arguments default to stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// Writer returns the output stream.
func (p *Prompter) Writer() io.Writer {
	return p.writer
}

// ReadInput shows label and returns the next line.
func (p *Prompter) ReadInput(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := p.reader.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		return "", ErrInputClosed
	}
	return line, err
}

// ShowNotice prints a workflow notice.
func (p *Prompter) ShowNotice(n engine.Notice) {
	text := FormatSuccess(n.Text)
	if n.Kind == engine.NoticeError {
		text = FormatError(n.Text)
	}
	if _, err := fmt.Fprintln(p.writer, text); err != nil {
		slog.Warn("Failed to write notice", "error", err)
	}
}

// ConfirmDraft shows the confirmation form until the user saves a valid
// draft or cancels. The returned bool is true on save. Saving is refused
// while any field is invalid. When the form opens on an invalid draft, the
// focused field is asked for first.
func (p *Prompter) ConfirmDraft(ctx context.Context, draft engine.Draft) (engine.Draft, bool, error) {
	if focus := draft.FocusField(); focus != "" {
		p.renderDraft(draft)
		if err := p.editField(ctx, &draft, focus); err != nil {
			return draft, false, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return draft, false, err
		}

		p.renderDraft(draft)
		choice, err := p.ReadInput(ctx, "[Enter/s] save  [1-4] edit field  [c] cancel")
		if err != nil {
			return draft, false, err
		}

		switch choice = strings.ToLower(choice); choice {
		case "", "s":
			if draft.CanSave() {
				return draft, true, nil
			}
			p.println(FormatError("Fix the highlighted fields before saving."))
		case "c", "q":
			return draft, false, nil
		default:
			n, convErr := strconv.Atoi(choice)
			fields := engine.FormFields()
			if convErr != nil || n < 1 || n > len(fields) {
				p.println(FormatError("Invalid choice. Please try again."))
				continue
			}
			if err := p.editField(ctx, &draft, fields[n-1]); err != nil {
				return draft, false, err
			}
		}
	}
}

// RunDelete runs the two-step delete gesture over expenses until the user
// quits. Typing a row number arms it; typing it again, or pressing Enter
// while it is armed, deletes it.
func (p *Prompter) RunDelete(ctx context.Context, list *engine.DeleteList, expenses []model.Expense) error {
	byID := make(map[string]model.Expense, len(expenses))
	ids := make([]string, 0, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	list.SetRows(ids)

	for {
		rows := list.Rows()
		if len(rows) == 0 {
			p.println(FormatInfo("No expenses to delete."))
			return nil
		}
		p.renderDeleteRows(list, rows, byID)

		choice, err := p.ReadInput(ctx, "Row number to delete, [q] quit")
		if errors.Is(err, ErrInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}

		var target string
		switch strings.ToLower(choice) {
		case "q":
			return nil
		case "":
			armed, ok := list.Armed()
			if !ok {
				continue
			}
			target = armed
		default:
			n, convErr := strconv.Atoi(choice)
			if convErr != nil || n < 1 || n > len(rows) {
				p.println(FormatError("Invalid row. Please try again."))
				continue
			}
			target = rows[n-1]
		}

		result, err := list.Click(ctx, target)
		switch result {
		case engine.ClickArmed:
			p.println(WarningStyle.Render("Press Enter again to delete " + describe(byID[target])))
		case engine.ClickFailed:
			slog.Debug("delete failed", "id", target, "error", err)
		case engine.ClickIgnored:
			if err != nil {
				p.println(FormatError(err.Error()))
			}
		}
	}
}

// StartProgress shows a progress bar for total steps.
func (p *Prompter) StartProgress(total int, description string) {
	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Advance moves the progress bar one step.
func (p *Prompter) Advance() {
	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// FinishProgress completes and releases the progress bar.
func (p *Prompter) FinishProgress() {
	if p.progressBar == nil {
		return
	}
	if err := p.progressBar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	p.progressBar = nil
}

func (p *Prompter) editField(ctx context.Context, draft *engine.Draft, field engine.FormField) error {
	label := fieldLabels[field]
	if field == engine.FormCategory {
		label += " (" + categoryChoices() + ")"
	}
	if current := draft.Value(field); current != "" {
		label += " [" + current + "]"
	}

	value, err := p.ReadInput(ctx, label)
	if err != nil {
		return err
	}
	if value != "" {
		draft.Set(field, value)
	}
	return nil
}

func (p *Prompter) renderDraft(draft engine.Draft) {
	_, errs := draft.Validate()

	var b strings.Builder
	for i, f := range engine.FormFields() {
		label := fieldLabels[f]
		if draft.IsRequired(f) {
			label += "*"
		}
		value := draft.Value(f)
		if value == "" {
			value = SubtleStyle.Render("(empty)")
		}
		fmt.Fprintf(&b, "  %d. %-13s %s", i+1, label, value)
		if msg, bad := errs[f]; bad {
			b.WriteString("  " + ErrorStyle.Render(msg))
		}
		b.WriteString("\n")
	}
	if draft.RawInput != "" {
		b.WriteString("\n" + SubtleStyle.Render("You typed: "+draft.RawInput))
	}

	title := "Confirm expense"
	if draft.ExpenseID != "" {
		title = "Edit expense"
	}
	p.println(RenderBox(title, strings.TrimRight(b.String(), "\n")))
}

func (p *Prompter) renderDeleteRows(list *engine.DeleteList, rows []string, byID map[string]model.Expense) {
	var b strings.Builder
	for i, id := range rows {
		line := fmt.Sprintf("%3d. %s", i+1, describe(byID[id]))
		switch list.State(id) {
		case engine.RowArmed:
			line = ArmedStyle.Render(line + "  ← confirm delete?")
		case engine.RowDeleting:
			line = SubtleStyle.Render(line + "  deleting…")
		}
		b.WriteString(line + "\n")
	}
	p.println(strings.TrimRight(b.String(), "\n"))
}

func (p *Prompter) println(s string) {
	if _, err := fmt.Fprintln(p.writer, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}

func describe(e model.Expense) string {
	return fmt.Sprintf("%s  $%s  %s (%s)",
		model.FormatDate(e.Date), e.Amount.StringFixed(2), e.Description, e.Category)
}

func categoryChoices() string {
	cats := model.AllCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
