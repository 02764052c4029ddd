package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/transakce/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "transakce-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "transakce")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/transakce")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runTransakce(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func initWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runTransakce(t, "init", dir)
	require.NoError(t, err, out)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initWorkspace(t)

	expectedDirs := []string{
		"rules",
		"logs",
		"data",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	_, err := os.Stat(filepath.Join(dir, "data", "transakce.db"))
	require.NoError(t, err, "sqlite database should exist")
}

func TestInit_Config(t *testing.T) {
	dir := initWorkspace(t)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ";", cfg.Import.Delimiter)
	assert.Equal(t, "@every 5m", cfg.Watch.Schedule)
}

func TestInit_Gitignore(t *testing.T) {
	dir := initWorkspace(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	for _, pattern := range []string{"data/", "import/processed/", "logs/"} {
		assert.Contains(t, string(data), pattern, ".gitignore should contain %s", pattern)
	}
}

func TestInit_SeedsLookups(t *testing.T) {
	dir := initWorkspace(t)

	out, err := runTransakce(t, "seed", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Lookups: 10 projects, 4 products, 17 subgroups")
}

func TestInit_RejectsUnknownDriver(t *testing.T) {
	_, err := runTransakce(t, "init", t.TempDir(), "--driver", "oracle")
	require.Error(t, err)
}

func TestMigrate(t *testing.T) {
	dir := initWorkspace(t)

	out, err := runTransakce(t, "migrate", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Database at version 1")
}

func TestCommands_RequireWorkspace(t *testing.T) {
	out, err := runTransakce(t, "stats", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "loading workspace")
}
