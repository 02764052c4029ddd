package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/ingest"
	"github.com/cleared-dev/transakce/internal/rules"
)

func newRulesCommand(gf *globalFlags) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}
	rulesCmd.AddCommand(
		newRulesListCommand(gf),
		newRulesLoadCommand(gf),
		newRulesExportCommand(gf),
		newRulesTestCommand(gf),
		newRulesActiveCommand(gf, "enable", true),
		newRulesActiveCommand(gf, "disable", false),
		newRulesDeleteCommand(gf),
	)
	return rulesCmd
}

func newRulesListCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in cascade order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			all, err := ws.store.Queries().ListRules(cmd.Context())
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules defined")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tMODE\tVALUE\tPRIORITY\tACTIVE")
			for _, r := range all {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%t\n",
					r.ID, r.Name, r.MatchType, r.MatchMode, r.MatchValue, r.Priority, r.IsActive)
			}
			return tw.Flush()
		},
	}
}

func newRulesLoadCommand(gf *globalFlags) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Create or update rules from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := rules.LoadFile(args[0])
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			created, updated, err := ws.svc.LoadRules(cmd.Context(), defs, ws.user(user))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rules (%d created, %d updated)\n", len(defs), created, updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user recorded on new rules (default import.user)")
	return cmd
}

func newRulesExportCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.yaml]",
		Short: "Write stored rules as a YAML rule file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			all, err := ws.store.Queries().ListRules(cmd.Context())
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("creating rules file: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := rules.Write(out, all); err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rules to %s\n", len(all), args[0])
			}
			return nil
		},
	}
}

func newRulesTestCommand(gf *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Count stored transactions a rule would match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			res, err := ws.svc.TestRule(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rule %s matches %d of %d transactions\n", res.RuleName, res.MatchCount, res.Scanned)
			for _, s := range res.Samples {
				fmt.Fprintf(out, "  %s  %12s  %s\n", s.Date, s.Amount.StringFixed(2), s.MatchedText)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", ingest.DefaultRuleTestLimit, "transactions to scan")
	return cmd
}

func newRulesActiveCommand(gf *globalFlags, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Mark a rule as %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.store.Queries().SetRuleActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %s %sd\n", args[0], use)
			return nil
		},
	}
}

func newRulesDeleteCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.store.Queries().DeleteRule(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %s deleted\n", args[0])
			return nil
		},
	}
}

func newApplyRulesCommand(gf *globalFlags) *cobra.Command {
	var opts ingest.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply-rules",
		Short: "Apply categorization rules to stored transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			opts.User = ws.user(opts.User)
			report, err := ws.svc.ApplyRules(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range report.Changes {
				fmt.Fprintf(out, "  Updated: %s | %s | %s -> %s\n", c.Date, c.Amount.StringFixed(2), orEmpty(c.OldKind), orEmpty(c.NewKind))
			}
			if report.Updated > len(report.Changes) {
				fmt.Fprintf(out, "  ... and %d more\n", report.Updated-len(report.Changes))
			}
			verb := "Updated"
			if report.DryRun {
				verb = "Would update"
			}
			fmt.Fprintf(out, "%s %d of %d transactions\n", verb, report.Updated, report.Processed)
			if len(report.Rejected) > 0 {
				fmt.Fprintf(out, "Rejected %d transactions:\n", len(report.Rejected))
				for _, r := range report.Rejected {
					fmt.Fprintf(out, "  %s (%s): %s\n", r.TransactionID, r.Rule, r.Message)
				}
			}
			if len(report.Rules) > 0 {
				fmt.Fprintln(out, "Rules matched:")
				for _, r := range report.Rules {
					fmt.Fprintf(out, "  %s: %d\n", r.Rule, r.Count)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "show what would change without saving")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include already categorized transactions")
	cmd.Flags().StringVar(&opts.BatchID, "batch-id", "", "only transactions from this import batch")
	cmd.Flags().StringVar(&opts.User, "user", "", "user recorded on changes (default import.user)")
	return cmd
}

func orEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}
