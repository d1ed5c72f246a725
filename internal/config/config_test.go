package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "typdocs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile_Error(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "output:\n  directory: out\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "out", cfg.Output.Directory)
	require.Equal(t, "https://github.com/typst/typst.git", cfg.Source.RepoURL)
	require.Equal(t, "0.11.0", cfg.Source.MinVersion)
	require.Equal(t, "build/json", cfg.Build.DataDir)
	require.Equal(t, "docs", cfg.Build.JSONSlug)
	require.Equal(t, 4, cfg.Build.Workers)
	require.Equal(t, "build/state.db", cfg.State.Path)
	require.Equal(t, "24h", cfg.Daemon.Interval)
	require.Equal(t, "typdocs.builds", cfg.Events.Subject)
	require.Equal(t, ":9105", cfg.Metrics.Listen)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TYPDOCS_TEST_OUT", "/srv/docs")
	path := writeConfig(t, "output:\n  directory: ${TYPDOCS_TEST_OUT}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/docs", cfg.Output.Directory)
}

func TestLoad_InvalidYAML_Error(t *testing.T) {
	path := writeConfig(t, "output: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Build.Workers = 8
	cfg.Source.MinVersion = "0.12.0"
	cfg.ApplyDefaults()

	require.Equal(t, 8, cfg.Build.Workers)
	require.Equal(t, "0.12.0", cfg.Source.MinVersion)
}

func TestIntervalDuration_ParsesGoDuration(t *testing.T) {
	cfg := Default()

	interval, err := cfg.Daemon.IntervalDuration()
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, interval)
}

func TestIntervalDuration_Invalid_Error(t *testing.T) {
	d := DaemonConfig{Interval: "often"}

	_, err := d.IntervalDuration()
	require.Error(t, err)
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typdocs.yaml")

	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "dist", cfg.Output.Directory)
}

func TestInit_ExistingFileWithoutForce_Error(t *testing.T) {
	path := writeConfig(t, "output: {}\n")

	err := Init(path, false)
	require.Error(t, err)
	require.NoError(t, Init(path, true))
}
