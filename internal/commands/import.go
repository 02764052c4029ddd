package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/importer"
	"github.com/cleared-dev/transakce/internal/ingest"
)

// previewRecords is how many parsed records a dry run prints.
const previewRecords = 5

type importFlags struct {
	dryRun    bool
	noRules   bool
	user      string
	delimiter string
	format    string
}

func newImportCommand(gf *globalFlags) *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import bank statement CSV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.dryRun {
				return previewImport(cmd.OutOrStdout(), gf, f, args)
			}

			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			delim, err := importDelimiter(ws.cfg.Import.DelimiterRune(), f.delimiter)
			if err != nil {
				return err
			}
			opts := ingest.Options{
				User:      ws.user(f.user),
				Delimiter: delim,
				Format:    f.format,
				NoRules:   f.noRules,
			}

			var failed int
			for _, path := range args {
				sum, err := importFile(cmd, ws, path, opts)
				if sum != nil {
					printSummary(cmd.OutOrStdout(), path, sum)
				}
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Import of %s failed: %v\n", path, err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "parse and show the first records without saving")
	cmd.Flags().BoolVar(&f.noRules, "no-rules", false, "skip automatic categorization")
	cmd.Flags().StringVar(&f.user, "user", "", "user recorded on the batch (default import.user)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "field delimiter (default import.delimiter)")
	cmd.Flags().StringVar(&f.format, "format", "", "force a format: "+strings.Join(importer.DefaultRegistry().Formats(), ", "))

	return cmd
}

func importDelimiter(configured rune, flag string) (rune, error) {
	if flag == "" {
		return configured, nil
	}
	if utf8.RuneCountInString(flag) != 1 {
		return 0, fmt.Errorf("--delimiter must be a single character, got %q", flag)
	}
	r, _ := utf8.DecodeRuneInString(flag)
	return r, nil
}

func importFile(cmd *cobra.Command, ws *workspace, path string, opts ingest.Options) (*ingest.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	opts.Filename = filepath.Base(path)
	return ws.svc.Import(cmd.Context(), f, opts)
}

func printSummary(out io.Writer, path string, sum *ingest.Summary) {
	fmt.Fprintf(out, "%s: batch %s (%s)\n", path, sum.BatchID, sum.Format)
	fmt.Fprintf(out, "  Total rows: %d\n", sum.TotalRows)
	fmt.Fprintf(out, "  Imported:   %d\n", sum.Imported)
	fmt.Fprintf(out, "  Skipped:    %d\n", sum.Skipped)
	fmt.Fprintf(out, "  Errors:     %d\n", sum.Errors)
	for _, e := range sum.ErrorDetails {
		if e.Row > 0 {
			fmt.Fprintf(out, "    row %d [%s]: %s\n", e.Row, e.Kind, e.Message)
		} else {
			fmt.Fprintf(out, "    %s\n", e.Message)
		}
	}
	fmt.Fprintf(out, "  Duration:   %s\n", sum.Duration)
}

func previewImport(out io.Writer, gf *globalFlags, f importFlags, paths []string) error {
	delim := rune(importer.DefaultDelimiter)
	if _, cfg, err := loadConfig(gf); err == nil {
		delim = cfg.Import.DelimiterRune()
	}
	delim, err := importDelimiter(delim, f.delimiter)
	if err != nil {
		return err
	}

	reg := importer.DefaultRegistry()
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		res, err := reg.Parse(file, importer.Options{Delimiter: delim, Format: f.format})
		file.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fmt.Fprintf(out, "%s: %s, %d records (dry run)\n", path, res.Format, len(res.Records))
		for i, rec := range res.Records {
			if i >= previewRecords {
				fmt.Fprintf(out, "  ... and %d more\n", len(res.Records)-previewRecords)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, formatRecord(rec))
		}
	}
	return nil
}

func formatRecord(rec importer.Record) string {
	keys := make([]string, 0, len(rec))
	for k, v := range rec {
		if v != "" {
			keys = append(keys, string(k))
		}
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + rec[importer.Field(k)]
	}
	return strings.Join(parts, " ")
}

func newImportInvoicesCommand(gf *globalFlags) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "import-invoices <file>",
		Short: "Import an iDoklad invoice export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			sum, err := ws.svc.ImportInvoices(cmd.Context(), f, ingest.Options{
				Filename: filepath.Base(args[0]),
				User:     ws.user(user),
			})
			if sum != nil {
				printSummary(cmd.OutOrStdout(), args[0], sum)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user recorded on the batch (default import.user)")
	return cmd
}
