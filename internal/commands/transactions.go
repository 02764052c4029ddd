package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/store"
)

func newTransactionsCommand(gf *globalFlags) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "Inspect stored transactions",
	}
	txCmd.AddCommand(newTransactionsListCommand(gf), newTransactionsShowCommand(gf))
	return txCmd
}

func newTransactionsListCommand(gf *globalFlags) *cobra.Command {
	var (
		filter        store.TxFilter
		uncategorized bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transactions by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			filter.Uncategorized = uncategorized
			txs, err := ws.store.Queries().ListTransactions(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tP/V\tKIND\tBANK ID\tCOUNTERPARTY")
			for _, t := range txs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Date.Format("2006-01-02"), t.Amount.StringFixed(2),
					orEmpty(string(t.IncomeExpense)), orEmpty(t.Kind), t.ExternalID, counterparty(&t))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&filter.BatchID, "batch-id", "", "only transactions from this import batch")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "maximum transactions to show (0 for all)")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "only transactions without P/V or kind")
	return cmd
}

func newTransactionsShowCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction with its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			q := ws.store.Queries()
			t, err := q.GetTransaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			trail, err := q.AuditTrail(cmd.Context(), t.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transaction: %s\n", t.ID)
			fmt.Fprintf(out, "Date:        %s\n", t.Date.Format("2006-01-02"))
			fmt.Fprintf(out, "Amount:      %s %s\n", t.Amount.StringFixed(2), t.Currency)
			fmt.Fprintf(out, "Account:     %s\n", t.Account)
			fmt.Fprintf(out, "Counterpart: %s\n", orEmpty(counterparty(t)))
			fmt.Fprintf(out, "Message:     %s\n", orEmpty(t.Message))
			fmt.Fprintf(out, "Bank ID:     %s\n", orEmpty(t.ExternalID))
			fmt.Fprintf(out, "Status:      %s\n", t.Status)
			fmt.Fprintf(out, "P/V:         %s\n", orEmpty(string(t.IncomeExpense)))
			fmt.Fprintf(out, "Kind:        %s / %s\n", orEmpty(t.Kind), orEmpty(t.Detail))
			if t.SplitAssigned() {
				fmt.Fprintf(out, "KMEN:        %s MH=%s SK=%s XP=%s FR=%s\n", orEmpty(string(t.Unit)),
					t.MHPct.String(), t.SKPct.String(), t.XPPct.String(), t.FRPct.String())
			} else {
				fmt.Fprintf(out, "KMEN:        unassigned\n")
			}
			if t.ProjectID != nil {
				fmt.Fprintf(out, "Project:     %s\n", *t.ProjectID)
			}

			fmt.Fprintln(out, "History:")
			for _, e := range trail {
				fmt.Fprintf(out, "  %s  %s  %s  %s\n", e.CreatedAt.Format(time.RFC3339), e.User, e.Action, e.Details)
			}
			return nil
		},
	}
}

func counterparty(t *model.Transaction) string {
	switch {
	case t.CounterName != "":
		return t.CounterName
	case t.Merchant != "":
		return t.Merchant
	}
	return t.CounterAccount
}
