package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Database = Database{Driver: DriverPostgres, DSN: "postgres://u:p@localhost:5432/transakce?sslmode=disable"}
	cfg.Import.MaxErrors = 50
	cfg.Import.User = "ucetni"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join("data", "transakce.db"), cfg.Database.DSN)
	assert.Equal(t, ';', cfg.Import.DelimiterRune())
	assert.Equal(t, "system", cfg.Import.User)
	assert.Zero(t, cfg.Import.MaxErrors)
	assert.Equal(t, "@every 5m", cfg.Watch.Schedule)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, LogFormatConsole, cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("import:\n  delimiter: \",\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ',', cfg.Import.DelimiterRune())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "system", cfg.Import.User)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	t.Setenv("TRANSAKCE_IMPORT_USER", "robot")
	t.Setenv("TRANSAKCE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "robot", cfg.Import.User)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "mysql"
	assert.ErrorContains(t, cfg.Validate(), "unsupported database driver")

	cfg = Default()
	cfg.Import.Delimiter = ";;"
	assert.ErrorContains(t, cfg.Validate(), "single character")

	cfg = Default()
	cfg.Database.DSN = ""
	assert.ErrorContains(t, cfg.Validate(), "database.dsn")

	cfg = Default()
	cfg.Log.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "log.format")
}

func TestResolve(t *testing.T) {
	d := Database{Driver: DriverSQLite, DSN: "data/x.db"}
	assert.Equal(t, filepath.Join("/ws", "data/x.db"), d.Resolve("/ws").DSN)

	pg := Database{Driver: DriverPostgres, DSN: "postgres://localhost/db"}
	assert.Equal(t, pg, pg.Resolve("/ws"))
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "driver: sqlite")
	assert.Contains(t, contents, "@every 5m")
	assert.Contains(t, contents, "max_errors: 0")
}
