package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	appconfig "github.com/choidage/daker/internal/adapters/outbound/config"
	"github.com/choidage/daker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{appconfig.EnvAPIURL, appconfig.EnvAuthor, appconfig.EnvPython, appconfig.EnvLogLevel} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

type stubGit struct{ name string }

func (s stubGit) IsGitRepo(string) bool                 { return true }
func (s stubGit) CommitHash(string) (string, error)     { return "", nil }
func (s stubGit) Author(string) (string, error)         { return s.name, nil }
func (s stubGit) ChangedFiles(string) ([]string, error) { return nil, nil }

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)

	want := domain.DefaultConfig()
	want.ProjectRoot = dir
	assert.Equal(t, want, cfg)
	assert.Equal(t, "anonymous", cfg.ResolvedAuthor())
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".vibex.yaml", `
api_url: http://dashboard.local:9000/
author: alice
auto_run_on_save: false
extensions: [".py"]
timeouts:
  check: 15s
  local: 1m
scan_rate: 2
`)

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://dashboard.local:9000", cfg.APIURL)
	assert.Equal(t, "alice", cfg.Author)
	assert.False(t, cfg.RunOnSave())
	assert.Equal(t, []string{".py"}, cfg.Extensions)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.Check)
	assert.Equal(t, time.Minute, cfg.Timeouts.Local)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Zone)
	assert.InDelta(t, 2.0, cfg.ScanRate, 0.001)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".vibex.yaml", `{{{invalid yaml`)

	_, err := appconfig.New().Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .vibex.yaml")
}

func TestYAMLLoader_InvalidValues(t *testing.T) {
	clearEnv(t)
	tests := map[string]string{
		"scheme":    `api_url: ftp://x`,
		"extension": `extensions: ["py"]`,
		"level":     `log_level: chatty`,
		"timeout":   "timeouts:\n  check: -1s",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ".vibex.yaml", content)
			_, err := appconfig.New().Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid .vibex.yaml")
		})
	}
}

func TestYAMLLoader_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".vibex.yaml", "api_url: http://file:8000\nauthor: file-author\n")
	writeFile(t, dir, ".env", "VIBEX_API_URL=http://dotenv:8000\nVIBEX_PYTHON=/opt/py/bin/python3\n")
	t.Setenv(appconfig.EnvAPIURL, "http://process:8000")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://process:8000", cfg.APIURL)
	assert.Equal(t, "/opt/py/bin/python3", cfg.PythonPath)
	assert.Equal(t, "file-author", cfg.Author)
	_, set := os.LookupEnv(appconfig.EnvPython)
	assert.False(t, set, ".env must not leak into the process environment")
}

func TestYAMLLoader_AuthorFromGit(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := appconfig.New().WithGit(stubGit{name: "Git User"}).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Git User", cfg.Author)

	t.Setenv(appconfig.EnvAuthor, "env-user")
	cfg, err = appconfig.New().WithGit(stubGit{name: "Git User"}).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-user", cfg.Author)
}

func TestYAMLLoader_RelativeProjectRoot(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".vibex.yaml", "project_root: sub\n")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub"), cfg.ProjectRoot)
}
