package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import expenses from OFX/QFX statements",
		Long: `Import the debits from OFX or QFX (Quicken) statements exported from your
bank. Statement lines imported before are skipped, so overlapping exports
can be imported safely.

Examples:
  spent import ~/Downloads/chase_jan_2024.qfx
  spent import ~/Downloads/*.qfx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	parser := ofx.NewParser(slog.Default())
	var imported []ofx.Imported
	for _, file := range files {
		found, err := parseFile(ctx, parser, file)
		if err != nil {
			return err
		}
		slog.Info("Parsed statement", "file", filepath.Base(file), "expenses", len(found))
		imported = append(imported, found...)
	}

	existing, err := a.ledger.List(ctx, a.cfg.UserID)
	if err != nil {
		return err
	}
	fresh, skipped := newImports(existing, imported)

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Would import %d expenses (%d already imported)", len(fresh), skipped)))
		for _, imp := range fresh {
			fmt.Fprintf(out, "  %s  $%s  %s (%s)\n", imp.Expense.Date.Format("2006-01-02"),
				imp.Expense.Amount.StringFixed(2), imp.Expense.Description, imp.Expense.Category)
		}
		return nil
	}
	if len(fresh) == 0 {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Nothing new to import (%d already imported)", skipped)))
		return nil
	}

	prompter := cli.NewPrompter(nil, out)
	interrupts := cli.NewInterruptHandler(out, "Import interrupted!", "Expenses already imported were kept.")
	ctx, stop := interrupts.HandleInterrupts(ctx)
	defer stop()

	saved := 0
	prompter.StartProgress(len(fresh), "Importing expenses")
	for _, imp := range fresh {
		if ctx.Err() != nil {
			break
		}
		if _, err := a.ledger.Create(ctx, a.cfg.UserID, imp.Expense, imp.RawInput); err != nil {
			prompter.FinishProgress()
			return fmt.Errorf("failed to import %s: %w", imp.FitID, err)
		}
		saved++
		prompter.Advance()
	}
	prompter.FinishProgress()

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d expenses (%d already imported)", saved, skipped)))
	if interrupts.WasInterrupted() {
		return context.Canceled
	}
	return nil
}

// expandFiles resolves glob patterns. A pattern with no matches is kept
// when it names an existing file.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseFile(ctx context.Context, parser *ofx.Parser, path string) ([]ofx.Imported, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied statement file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	found, err := parser.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return found, nil
}
