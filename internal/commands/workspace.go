package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/config"
	"github.com/cleared-dev/transakce/internal/ingest"
	"github.com/cleared-dev/transakce/internal/logger"
	"github.com/cleared-dev/transakce/internal/store"
)

// workspace is an opened transakce directory.
type workspace struct {
	root  string
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store
	svc   *ingest.Service
}

// loadConfig reads <dir>/transakce.yaml.
func loadConfig(gf *globalFlags) (string, *config.Config, error) {
	root, err := filepath.Abs(gf.dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return "", nil, fmt.Errorf("loading workspace %s: %w", root, err)
	}
	return root, cfg, nil
}

func newLogger(gf *globalFlags, cfg *config.Config) zerolog.Logger {
	level := cfg.Log.Level
	if gf.logLevel != "" {
		level = gf.logLevel
	}
	return logger.NewFormat(cfg.Log.Format, level, os.Stderr)
}

// openWorkspace loads the configuration, connects to the database and puts
// the workspace logger on the command context.
func openWorkspace(cmd *cobra.Command, gf *globalFlags) (*workspace, error) {
	root, cfg, err := loadConfig(gf)
	if err != nil {
		return nil, err
	}
	log := newLogger(gf, cfg)
	ctx := logger.WithContext(cmd.Context(), log)
	cmd.SetContext(ctx)

	st, err := store.Open(ctx, cfg.Database.Resolve(root))
	if err != nil {
		return nil, err
	}
	return &workspace{
		root:  root,
		cfg:   cfg,
		log:   log,
		store: st,
		svc:   ingest.NewService(st, cfg.Import.MaxErrors),
	}, nil
}

func (w *workspace) Close() {
	if err := w.store.Close(); err != nil {
		w.log.Warn().Err(err).Msg("closing database")
	}
}

// user returns the flag value, or the configured import user.
func (w *workspace) user(flag string) string {
	if flag != "" {
		return flag
	}
	return w.cfg.Import.User
}
