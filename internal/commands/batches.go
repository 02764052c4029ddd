package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newBatchesCommand(gf *globalFlags) *cobra.Command {
	batchesCmd := &cobra.Command{
		Use:   "batches",
		Short: "Inspect import batches",
	}
	batchesCmd.AddCommand(newBatchesListCommand(gf), newBatchesShowCommand(gf))
	return batchesCmd
}

func newBatchesListCommand(gf *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent import batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			batches, err := ws.store.Queries().ListBatches(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No import batches")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tFILE\tFORMAT\tSTATUS\tTOTAL\tIMPORTED\tSKIPPED\tERRORS")
			for _, b := range batches {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					b.ID, b.StartedAt.Format(time.RFC3339), b.Filename, b.Format, b.Status,
					b.TotalRows, b.ImportedCount, b.SkippedCount, b.ErrorCount)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum batches to show (0 for all)")
	return cmd
}

func newBatchesShowCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one import batch with its row errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			b, err := ws.store.Queries().GetBatch(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch:     %s\n", b.ID)
			fmt.Fprintf(out, "Kind:      %s\n", b.Kind)
			fmt.Fprintf(out, "File:      %s\n", b.Filename)
			fmt.Fprintf(out, "Format:    %s\n", b.Format)
			fmt.Fprintf(out, "Status:    %s\n", b.Status)
			fmt.Fprintf(out, "Started:   %s by %s\n", b.StartedAt.Format(time.RFC3339), b.CreatedBy)
			if b.CompletedAt != nil {
				fmt.Fprintf(out, "Completed: %s\n", b.CompletedAt.Format(time.RFC3339))
			}
			fmt.Fprintf(out, "Rows:      %d total, %d imported, %d skipped, %d errors\n",
				b.TotalRows, b.ImportedCount, b.SkippedCount, b.ErrorCount)
			for _, e := range b.Errors {
				if e.Row > 0 {
					fmt.Fprintf(out, "  row %d [%s]: %s\n", e.Row, e.Kind, e.Message)
				} else {
					fmt.Fprintf(out, "  %s\n", e.Message)
				}
			}
			return nil
		},
	}
}
