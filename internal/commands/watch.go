package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/importlog"
	"github.com/cleared-dev/transakce/internal/ingest"
	"github.com/cleared-dev/transakce/internal/watch"
)

func newWatchCommand(gf *globalFlags) *cobra.Command {
	var once bool
	var noRules bool
	var history bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import CSV files dropped into import/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			if history {
				entries, err := importlog.Read(ws.root)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No files processed yet")
				}
				for _, e := range entries {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  ", e.Timestamp.Format(time.RFC3339))
					printLogEntry(cmd, e)
				}
				return nil
			}

			opts := ingest.Options{
				User:      ws.cfg.Import.User,
				Delimiter: ws.cfg.Import.DelimiterRune(),
				NoRules:   noRules,
			}
			w := watch.New(ws.root, ws.svc, opts, ws.cfg.Watch.Schedule, ws.log)

			if once {
				entries, err := w.RunOnce(cmd.Context())
				for _, e := range entries {
					printLogEntry(cmd, e)
				}
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "process pending files once and exit")
	cmd.Flags().BoolVar(&history, "history", false, "print the import log and exit")
	cmd.Flags().BoolVar(&noRules, "no-rules", false, "skip automatic categorization")
	return cmd
}

func printLogEntry(cmd *cobra.Command, e importlog.Entry) {
	if e.Status == importlog.StatusImported {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %d, skipped %d, errors %d (batch %s)\n",
			e.File, e.Imported, e.Skipped, e.Errors, e.BatchID)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: failed: %s\n", e.File, e.Message)
}
