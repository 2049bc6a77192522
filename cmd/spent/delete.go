package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/engine"
)

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete recorded expenses",
		Long: `List recent expenses and delete them with a two-step gesture.

Type a row number to arm it, then press Enter (or type the number again)
to delete it. An armed row disarms itself after a few seconds.`,
		RunE: runDelete,
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of recent expenses to list (0 for all)")

	return cmd
}

func runDelete(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
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

	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	list := engine.NewDeleteList(a.ledger, a.cfg.UserID, a.clock, a.engineConfig(), prompter)
	return prompter.RunDelete(ctx, list, limitExpenses(expenses, limit))
}
