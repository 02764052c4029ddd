package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/ingest"
	"github.com/cleared-dev/transakce/internal/model"
)

type statsFlags struct {
	dateFrom string
	dateTo   string
	byMonth  bool
	byUnit   bool
	byKind   bool
}

func newStatsCommand(gf *globalFlags) *cobra.Command {
	var f statsFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show transaction statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := f.filter()
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			st, err := ws.svc.Stats(cmd.Context(), filter)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), st, f)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.dateFrom, "date-from", "", "from date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dateTo, "date-to", "", "to date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.byMonth, "by-month", false, "show breakdown by month")
	cmd.Flags().BoolVar(&f.byUnit, "by-kmen", false, "show breakdown by KMEN")
	cmd.Flags().BoolVar(&f.byKind, "by-druh", false, "show breakdown by kind")
	return cmd
}

func (f statsFlags) filter() (ingest.StatsFilter, error) {
	var out ingest.StatsFilter
	var err error
	if out.DateFrom, err = parseDateFlag("--date-from", f.dateFrom); err != nil {
		return out, err
	}
	if out.DateTo, err = parseDateFlag("--date-to", f.dateTo); err != nil {
		return out, err
	}
	return out, nil
}

func parseDateFlag(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("%s: expected YYYY-MM-DD, got %q", name, v)
	}
	return &t, nil
}

func printStats(out io.Writer, st *ingest.Stats, f statsFlags) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "TRANSACTION STATISTICS")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Total transactions: %d\n", st.Total)
	if st.Total == 0 {
		fmt.Fprintln(out, "No transactions found")
		return
	}

	fmt.Fprintln(out, "\n--- By Status ---")
	for _, s := range st.ByStatus {
		fmt.Fprintf(out, "  %s: %d (%.1f%%)\n", s.Status, s.Count, s.Pct)
	}

	fmt.Fprintln(out, "\n--- Financial Summary ---")
	fmt.Fprintf(out, "  Income:  %15s %s\n", st.Income.StringFixed(2), model.DefaultCurrency)
	fmt.Fprintf(out, "  Expense: %15s %s\n", st.Expense.StringFixed(2), model.DefaultCurrency)
	fmt.Fprintf(out, "  Net:     %15s %s\n", st.Net.StringFixed(2), model.DefaultCurrency)

	fmt.Fprintln(out, "\n--- Categorization ---")
	fmt.Fprintf(out, "  Categorized:   %d (%.1f%%)\n", st.Categorized, st.CategorizedPct())
	fmt.Fprintf(out, "  Uncategorized: %d (%.1f%%)\n", st.Uncategorized, 100-st.CategorizedPct())

	if f.byMonth {
		fmt.Fprintln(out, "\n--- By Month ---")
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "Month\tCount\tIncome\tExpense\tNet\t")
		for _, m := range st.ByMonth {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t\n", m.Month, m.Count,
				m.Income.StringFixed(0), m.Expense.StringFixed(0), m.Net.StringFixed(0))
		}
		tw.Flush()
	}

	if f.byUnit {
		fmt.Fprintln(out, "\n--- By KMEN ---")
		for _, u := range st.ByUnit {
			fmt.Fprintf(out, "  %s: %15s %s\n", u.Unit, u.Total.StringFixed(2), model.DefaultCurrency)
		}
	}

	if f.byKind {
		fmt.Fprintln(out, "\n--- By Druh ---")
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "Druh\tCount\tTotal")
		for _, k := range st.ByKind {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", k.Kind, k.Count, k.Total.StringFixed(0))
		}
		tw.Flush()
	}
	fmt.Fprintln(out, rule)
}
