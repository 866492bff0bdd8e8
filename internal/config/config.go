package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Codex home override; empty means $CODEX_HOME or ~/.codex
	Home string `mapstructure:"home"`

	// Remote hosts implied by --host all
	Hosts []string `mapstructure:"hosts"`

	// TUI refresh cadence
	RefreshMS int `mapstructure:"refresh_ms"`

	Status StatusConfig `mapstructure:"status"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Remote RemoteConfig `mapstructure:"remote"`
	Labels LabelsConfig `mapstructure:"labels"`
	Watch  WatchConfig  `mapstructure:"watch"`
}

// StatusConfig exposes the classifier thresholds. The 15s/60s defaults are
// calibrated empirically; deployments with slower storage can widen them.
type StatusConfig struct {
	WorkingMaxAgeS int `mapstructure:"working_max_age_s"`
	WaitingMinAgeS int `mapstructure:"waiting_min_age_s"`
}

// ScanConfig bounds the local process scan.
type ScanConfig struct {
	TimeoutMS int `mapstructure:"timeout_ms"`
}

// RemoteConfig tunes remote host collection over ssh.
type RemoteConfig struct {
	SSHBin          string `mapstructure:"ssh_bin"`
	Bin             string `mapstructure:"bin"` // codex-ps binary name on the remote
	TimeoutMS       int    `mapstructure:"timeout_ms"`
	ConnectTimeoutS int    `mapstructure:"connect_timeout_s"`
}

// LabelsConfig overrides the label store location.
type LabelsConfig struct {
	Path string `mapstructure:"path"`
}

// WatchConfig controls the filesystem refresh nudger.
type WatchConfig struct {
	FSEvents   bool `mapstructure:"fs_events"`
	DebounceMS int  `mapstructure:"debounce_ms"`
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMS) * time.Millisecond
}

func (c *StatusConfig) WorkingMaxAge() time.Duration {
	return time.Duration(c.WorkingMaxAgeS) * time.Second
}

func (c *StatusConfig) WaitingMinAge() time.Duration {
	return time.Duration(c.WaitingMinAgeS) * time.Second
}

func (c *ScanConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c *RemoteConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		RefreshMS: 1000,
		Status: StatusConfig{
			WorkingMaxAgeS: 15,
			WaitingMinAgeS: 60,
		},
		Scan: ScanConfig{
			TimeoutMS: 10000,
		},
		Remote: RemoteConfig{
			SSHBin:          "ssh",
			Bin:             "codex-ps",
			TimeoutMS:       6000,
			ConnectTimeoutS: 3,
		},
		Watch: WatchConfig{
			FSEvents:   true,
			DebounceMS: 250,
		},
	}
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("codex-ps")
	v.SetConfigType("yaml")

	// Config paths, lowest precedence first
	v.AddConfigPath("/etc/codex-ps/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "codex-ps"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".codex-ps")
	}
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("CODEX_PS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.BindEnv("home", "CODEX_PS_HOME")
	v.BindEnv("refresh_ms", "CODEX_PS_REFRESH_MS")
	v.BindEnv("remote.timeout_ms", "CODEX_PS_REMOTE_TIMEOUT_MS")
	v.BindEnv("labels.path", "CODEX_PS_LABELS_PATH")

	cfg := Default()
	v.SetDefault("refresh_ms", cfg.RefreshMS)
	v.SetDefault("status.working_max_age_s", cfg.Status.WorkingMaxAgeS)
	v.SetDefault("status.waiting_min_age_s", cfg.Status.WaitingMinAgeS)
	v.SetDefault("scan.timeout_ms", cfg.Scan.TimeoutMS)
	v.SetDefault("labels.path", cfg.Labels.Path)
	v.SetDefault("remote.ssh_bin", cfg.Remote.SSHBin)
	v.SetDefault("remote.bin", cfg.Remote.Bin)
	v.SetDefault("remote.timeout_ms", cfg.Remote.TimeoutMS)
	v.SetDefault("remote.connect_timeout_s", cfg.Remote.ConnectTimeoutS)
	v.SetDefault("watch.fs_events", cfg.Watch.FSEvents)
	v.SetDefault("watch.debounce_ms", cfg.Watch.DebounceMS)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found; use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that was loaded
func ConfigFile() string {
	v := viper.New()

	v.SetConfigName("codex-ps")
	v.SetConfigType("yaml")

	v.AddConfigPath("/etc/codex-ps/")
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "codex-ps"))
	}
	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	v.SetConfigName(".codex-ps")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err == nil {
		return v.ConfigFileUsed()
	}

	return ""
}
