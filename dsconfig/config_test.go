package dsconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirschema/dirschema-go/metaconv"
)

func TestLoadDefaultsWhenNoUserFile(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, metaconv.Default(), cfg.Convention)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingUserPathIsNotError(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "absent.yaml"), nil)
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadAppliesUserFileThenOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schemaBaseDir: /schemas
logLevel: debug
plugins: [nonempty]
convention:
  fileSuffix: .meta.json
`), 0o644))

	cfg, err := Load(path, &DriverConfig{LogLevel: "error"})
	require.NoError(t, err)
	require.Equal(t, "/schemas", cfg.SchemaBaseDir)
	require.Equal(t, "error", cfg.LogLevel, "override wins over file")
	require.Equal(t, []string{"nonempty"}, cfg.Plugins)
	require.Equal(t, ".meta.json", cfg.Convention.FileSuffix)
}

func TestLoadRejectsInvalidConvention(t *testing.T) {
	// PathPrefix alone, with no FilePrefix/FileSuffix, can never distinguish
	// a companion path from its data path.
	override := &DriverConfig{Convention: metaconv.Convention{PathPrefix: "meta/"}}
	_, err := Load("", override)
	require.Error(t, err)
}

func TestUserConfigPathPrefersXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	require.Equal(t, filepath.Join("/xdg", "dirschema", "config.yaml"), UserConfigPath())
}
