// Package watch imports statement files dropped into the workspace import
// directory, once or on a cron schedule.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/transakce/internal/importer"
	"github.com/cleared-dev/transakce/internal/importlog"
	"github.com/cleared-dev/transakce/internal/ingest"
)

// Importer imports one statement.
type Importer interface {
	Import(ctx context.Context, src io.Reader, opts ingest.Options) (*ingest.Summary, error)
}

// Watcher processes <root>/import/*.csv.
type Watcher struct {
	root     string
	importer Importer
	opts     ingest.Options
	schedule string
	log      zerolog.Logger
	now      func() time.Time
}

// New creates a Watcher. opts is applied to every file; its Filename is
// replaced with the file name.
func New(root string, imp Importer, opts ingest.Options, schedule string, log zerolog.Logger) *Watcher {
	return &Watcher{
		root:     root,
		importer: imp,
		opts:     opts,
		schedule: schedule,
		log:      log.With().Str("component", "watch").Logger(),
		now:      time.Now,
	}
}

// RunOnce imports every pending file. Files that import are moved to
// import/processed; files whose run fails stay in place. Each file gets an
// import log entry.
func (w *Watcher) RunOnce(ctx context.Context) ([]importlog.Entry, error) {
	files, err := importer.Scan(w.root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		w.log.Debug().Msg("no files to import")
		return nil, nil
	}

	var entries []importlog.Entry
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			break
		}
		entry := w.importFile(ctx, f)
		if err := importlog.Append(w.root, []importlog.Entry{entry}); err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (w *Watcher) importFile(ctx context.Context, f importer.FileInfo) importlog.Entry {
	log := w.log.With().Str("filename", f.Name).Logger()
	entry := importlog.Entry{Timestamp: w.now().UTC(), File: f.Name, Status: importlog.StatusFailed}

	sum, err := w.importPath(ctx, f)
	if sum != nil {
		entry.BatchID = sum.BatchID
		entry.Imported, entry.Skipped, entry.Errors = sum.Imported, sum.Skipped, sum.Errors
	}
	if err != nil {
		log.Error().Err(err).Msg("file import failed")
		entry.Message = err.Error()
		return entry
	}

	if err := importer.MarkProcessed(w.root, f.Name); err != nil {
		log.Error().Err(err).Msg("moving file")
		entry.Message = err.Error()
		return entry
	}
	entry.Status = importlog.StatusImported
	log.Info().Str("batch_id", sum.BatchID).Str("format", sum.Format).Msg("file imported")
	return entry
}

func (w *Watcher) importPath(ctx context.Context, f importer.FileInfo) (*ingest.Summary, error) {
	src, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer src.Close()

	opts := w.opts
	opts.Filename = f.Name
	return w.importer.Import(ctx, src, opts)
}

// Run calls RunOnce on the schedule until ctx is done. Overlapping runs are
// skipped.
func (w *Watcher) Run(ctx context.Context) error {
	logger := cron.PrintfLogger(&w.log)
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	_, err := c.AddFunc(w.schedule, func() {
		entries, err := w.RunOnce(ctx)
		if err != nil {
			w.log.Error().Err(err).Msg("watch run failed")
			return
		}
		if len(entries) > 0 {
			w.log.Info().Int("files", len(entries)).Msg("watch run finished")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", w.schedule, err)
	}

	w.log.Info().Str("schedule", w.schedule).Str("root", w.root).Msg("watching import directory")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	w.log.Info().Msg("watch stopped")
	return nil
}
