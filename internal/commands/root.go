package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/buildinfo"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dir      string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var gf globalFlags

	rootCmd := &cobra.Command{
		Use:     "transakce",
		Short:   "Import and categorize Czech bank statements",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&gf.dir, "dir", ".", "workspace directory")
	rootCmd.PersistentFlags().StringVar(&gf.logLevel, "log-level", "", "log level (overrides log.level)")

	rootCmd.AddCommand(
		newInitCommand(&gf),
		newMigrateCommand(&gf),
		newImportCommand(&gf),
		newImportInvoicesCommand(&gf),
		newInvoicesCommand(&gf),
		newApplyRulesCommand(&gf),
		newRulesCommand(&gf),
		newSeedCommand(&gf),
		newStatsCommand(&gf),
		newBatchesCommand(&gf),
		newTransactionsCommand(&gf),
		newBulkUpdateCommand(&gf),
		newWatchCommand(&gf),
	)

	return rootCmd
}
