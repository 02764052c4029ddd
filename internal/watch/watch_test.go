package watch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/transakce/internal/importlog"
	"github.com/cleared-dev/transakce/internal/ingest"
)

type fakeImporter struct {
	seen []ingest.Options
}

func (f *fakeImporter) Import(_ context.Context, src io.Reader, opts ingest.Options) (*ingest.Summary, error) {
	f.seen = append(f.seen, opts)
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if strings.Contains(string(data), "broken") {
		return &ingest.Summary{BatchID: "b-fail"}, errors.New("unknown format")
	}
	return &ingest.Summary{BatchID: "b-" + opts.Filename, Format: "generic", Imported: 3, Skipped: 1}, nil
}

func writeImport(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, "import")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunOnce(t *testing.T) {
	root := t.TempDir()
	writeImport(t, root, "a.csv", "ok")
	writeImport(t, root, "b.csv", "broken")
	writeImport(t, root, "notes.txt", "ignored")

	imp := &fakeImporter{}
	w := New(root, imp, ingest.Options{User: "watcher", NoRules: true}, "@every 1m", zerolog.Nop())

	entries, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, importlog.StatusImported, entries[0].Status)
	assert.Equal(t, "b-a.csv", entries[0].BatchID)
	assert.Equal(t, 3, entries[0].Imported)
	assert.Equal(t, importlog.StatusFailed, entries[1].Status)
	assert.Equal(t, "unknown format", entries[1].Message)

	require.Len(t, imp.seen, 2)
	assert.Equal(t, "a.csv", imp.seen[0].Filename)
	assert.Equal(t, "watcher", imp.seen[0].User)
	assert.True(t, imp.seen[0].NoRules)

	assert.FileExists(t, filepath.Join(root, "import", "processed", "a.csv"))
	assert.FileExists(t, filepath.Join(root, "import", "b.csv"))
	assert.NoFileExists(t, filepath.Join(root, "import", "a.csv"))

	logged, err := importlog.Read(root)
	require.NoError(t, err)
	assert.Len(t, logged, 2)
}

func TestRunOnce_NothingPending(t *testing.T) {
	w := New(t.TempDir(), &fakeImporter{}, ingest.Options{}, "@every 1m", zerolog.Nop())
	entries, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_InvalidSchedule(t *testing.T) {
	w := New(t.TempDir(), &fakeImporter{}, ingest.Options{}, "not a schedule", zerolog.Nop())
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid watch schedule")
}

func TestRun_StopsOnCancel(t *testing.T) {
	root := t.TempDir()
	writeImport(t, root, "a.csv", "ok")
	imp := &fakeImporter{}
	w := New(root, imp, ingest.Options{}, "@every 1s", zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx))

	assert.FileExists(t, filepath.Join(root, "import", "processed", "a.csv"))
	assert.Len(t, imp.seen, 1)
}
