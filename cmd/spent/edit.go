package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
)

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recorded expense",
		Long: `Open a recorded expense in the confirmation form and save the changes.

The id may be shortened to any prefix that matches a single expense, such
as the eight characters shown by 'spent list'.`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}

	cmd.Flags().Bool("tui", false, "Use the full-screen confirmation form")

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	useTUI, _ := cmd.Flags().GetBool("tui")
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	expenses, err := a.ledger.List(ctx, a.cfg.UserID)
	if err != nil {
		return err
	}
	expense, err := findExpense(expenses, args[0])
	if err != nil {
		return err
	}

	wf, err := a.newWorkflow()
	if err != nil {
		return err
	}
	draft, err := wf.OpenEdit(expense)
	if err != nil {
		return err
	}

	s := &session{
		wf:       wf,
		prompter: cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		useTUI:   useTUI,
	}
	return s.confirm(ctx, draft)
}
