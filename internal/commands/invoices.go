package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newInvoicesCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "invoices",
		Short: "List imported invoices by issue date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			invoices, err := ws.store.Queries().ListInvoices(cmd.Context())
			if err != nil {
				return err
			}
			if len(invoices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No invoices")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tISSUED\tTOTAL\tCURRENCY\tSTATUS\tCUSTOMER")
			for _, inv := range invoices {
				issued, total := "-", "-"
				if inv.IssuedOn != nil {
					issued = inv.IssuedOn.Format("2006-01-02")
				}
				if inv.TotalWithVAT != nil {
					total = inv.TotalWithVAT.StringFixed(2)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					inv.Number, issued, total, inv.Currency, orEmpty(inv.PaymentStatus), inv.CustomerName)
			}
			return tw.Flush()
		},
	}
}
