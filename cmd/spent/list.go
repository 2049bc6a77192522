package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recorded expenses, newest first",
		RunE:  runList,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of expenses to show (0 for all)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
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
	return cli.RenderExpenses(cmd.OutOrStdout(), limitExpenses(expenses, limit))
}
