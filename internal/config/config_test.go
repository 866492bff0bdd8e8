package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, 1000, cfg.RefreshMS)
	assert.Equal(t, 15, cfg.Status.WorkingMaxAgeS)
	assert.Equal(t, 60, cfg.Status.WaitingMinAgeS)
	assert.Equal(t, 10000, cfg.Scan.TimeoutMS)
	assert.Equal(t, "ssh", cfg.Remote.SSHBin)
	assert.Equal(t, "codex-ps", cfg.Remote.Bin)
	assert.Equal(t, 6000, cfg.Remote.TimeoutMS)
	assert.Equal(t, 3, cfg.Remote.ConnectTimeoutS)
	assert.True(t, cfg.Watch.FSEvents)
	assert.Equal(t, 250, cfg.Watch.DebounceMS)
	assert.Empty(t, cfg.Home)
	assert.Empty(t, cfg.Hosts)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()

	assert.Equal(t, time.Second, cfg.RefreshInterval())
	assert.Equal(t, 15*time.Second, cfg.Status.WorkingMaxAge())
	assert.Equal(t, 60*time.Second, cfg.Status.WaitingMinAge())
	assert.Equal(t, 10*time.Second, cfg.Scan.Timeout())
	assert.Equal(t, 6*time.Second, cfg.Remote.Timeout())
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce())
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		os.Chdir(tmpDir)
		defer os.Chdir(origDir)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, 1000, cfg.RefreshMS)
		assert.Equal(t, "ssh", cfg.Remote.SSHBin)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("returns error for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "bad.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("parses all config fields", func(t *testing.T) {
		tmpDir := t.TempDir()
		configContent := `
home: /srv/codex
hosts:
  - devbox
  - build-1
refresh_ms: 500
status:
  working_max_age_s: 10
  waiting_min_age_s: 120
scan:
  timeout_ms: 1500
remote:
  ssh_bin: /usr/local/bin/ssh
  bin: codex-ps-next
  timeout_ms: 9000
  connect_timeout_s: 5
labels:
  path: /tmp/labels.jsonl
watch:
  fs_events: false
  debounce_ms: 100
`
		configPath := filepath.Join(tmpDir, "codex-ps.yaml")
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)

		assert.Equal(t, "/srv/codex", cfg.Home)
		assert.Equal(t, []string{"devbox", "build-1"}, cfg.Hosts)
		assert.Equal(t, 500, cfg.RefreshMS)
		assert.Equal(t, 10, cfg.Status.WorkingMaxAgeS)
		assert.Equal(t, 120, cfg.Status.WaitingMinAgeS)
		assert.Equal(t, 1500, cfg.Scan.TimeoutMS)
		assert.Equal(t, "/usr/local/bin/ssh", cfg.Remote.SSHBin)
		assert.Equal(t, "codex-ps-next", cfg.Remote.Bin)
		assert.Equal(t, 9000, cfg.Remote.TimeoutMS)
		assert.Equal(t, 5, cfg.Remote.ConnectTimeoutS)
		assert.Equal(t, "/tmp/labels.jsonl", cfg.Labels.Path)
		assert.False(t, cfg.Watch.FSEvents)
		assert.Equal(t, 100, cfg.Watch.DebounceMS)
	})

	t.Run("keeps defaults for fields the file omits", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "codex-ps.yaml")
		err := os.WriteFile(configPath, []byte("refresh_ms: 2000"), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)

		assert.Equal(t, 2000, cfg.RefreshMS)
		assert.Equal(t, 15, cfg.Status.WorkingMaxAgeS)
		assert.Equal(t, "ssh", cfg.Remote.SSHBin)
	})
}

func TestConfigEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(origDir)

	t.Setenv("CODEX_PS_REFRESH_MS", "750")
	t.Setenv("CODEX_PS_HOME", "/opt/codex")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 750, cfg.RefreshMS)
	assert.Equal(t, "/opt/codex", cfg.Home)
}

func TestResolveCodexHome(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		t.Setenv("CODEX_HOME", "/env/codex")

		home, err := ResolveCodexHome("/explicit/codex")
		require.NoError(t, err)
		assert.Equal(t, "/explicit/codex", home)
	})

	t.Run("expands tilde in override", func(t *testing.T) {
		userHome, err := os.UserHomeDir()
		require.NoError(t, err)

		home, err := ResolveCodexHome("~/codex-alt")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(userHome, "codex-alt"), home)
	})

	t.Run("falls back to CODEX_HOME", func(t *testing.T) {
		t.Setenv("CODEX_HOME", "/env/codex")

		home, err := ResolveCodexHome("")
		require.NoError(t, err)
		assert.Equal(t, "/env/codex", home)
	})

	t.Run("defaults to ~/.codex", func(t *testing.T) {
		t.Setenv("CODEX_HOME", "")
		userHome, err := os.UserHomeDir()
		require.NoError(t, err)

		home, err := ResolveCodexHome("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(userHome, ".codex"), home)
	})
}

func TestParseHosts(t *testing.T) {
	configured := []string{"devbox", "build-1"}

	tests := []struct {
		name      string
		selection string
		want      []string
	}{
		{"empty means local", "", []string{"local"}},
		{"explicit local", "local", []string{"local"}},
		{"all expands configured hosts", "all", []string{"local", "devbox", "build-1"}},
		{"explicit list", "devbox,build-1", []string{"devbox", "build-1"}},
		{"list trims whitespace", " devbox , build-1 ", []string{"devbox", "build-1"}},
		{"list drops duplicates", "devbox,devbox,local", []string{"devbox", "local"}},
		{"list drops empty entries", "devbox,,build-1,", []string{"devbox", "build-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHosts(tt.selection, configured))
		})
	}
}

func TestParseHostsAllDeduplicates(t *testing.T) {
	// A configured list that repeats "local" must not yield it twice.
	got := ParseHosts("all", []string{"local", "devbox", "devbox"})
	assert.Equal(t, []string{"local", "devbox"}, got)
}
