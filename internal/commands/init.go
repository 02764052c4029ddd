package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/config"
	"github.com/cleared-dev/transakce/internal/lookups"
	"github.com/cleared-dev/transakce/internal/store"
)

func newInitCommand(gf *globalFlags) *cobra.Command {
	var driver string
	var dsn string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new transakce workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := gf.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default()
			if driver != "" {
				cfg.Database.Driver = driver
			}
			if dsn != "" {
				cfg.Database.DSN = dsn
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, cfg)
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "", "database driver (sqlite or postgres)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database file or postgres URL")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir string, cfg *config.Config) error {
	dirs := []string{
		"rules",
		"logs",
		"data",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	rulesContent := "rules: []\n"
	if err := os.WriteFile(filepath.Join(dir, "rules", "categorization-rules.yaml"), []byte(rulesContent), 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	gitignore := "data/\nimport/processed/\nlogs/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	db := cfg.Database.Resolve(dir)
	if err := store.Migrate(db); err != nil {
		return err
	}
	st, err := store.Open(ctx, db)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Queries().SaveLookups(ctx, lookups.Default()); err != nil {
		return fmt.Errorf("seeding lookups: %w", err)
	}

	fmt.Fprintf(out, "Initialized transakce workspace at %s (%s)\n", dir, cfg.Database.Driver)
	return nil
}

func newMigrateCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := loadConfig(gf)
			if err != nil {
				return err
			}
			db := cfg.Database.Resolve(root)
			if err := store.Migrate(db); err != nil {
				return err
			}
			version, dirty, err := store.MigrationVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database at version %d", version)
			if dirty {
				fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
