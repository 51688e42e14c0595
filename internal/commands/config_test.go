package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schalkje/DiagramDesigner/internal/config"
)

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestInitConfigWritesLoadableFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	forceInit = false

	require.NoError(t, runInitConfig(initConfigCmd, nil))

	loaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, loaded.Server.Port)
	assert.Equal(t, config.DriverPostgres, loaded.Database.Driver)
	assert.True(t, loaded.Database.AutoMigrate)

	assert.Error(t, runInitConfig(initConfigCmd, nil), "existing file must not be overwritten")

	forceInit = true
	t.Cleanup(func() { forceInit = false })
	require.NoError(t, os.WriteFile("config.yaml", []byte("garbage"), 0o644))
	require.NoError(t, runInitConfig(initConfigCmd, nil))
	data, err := os.ReadFile("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig, string(data))
}
