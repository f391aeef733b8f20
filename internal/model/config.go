package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the REST task API.
type APIConfig struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api/v1.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// PageSize is the page size used when listing tasks.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// PushConfig holds settings for the push event stream.
type PushConfig struct {
	URL              string `mapstructure:"url" yaml:"url"`
	BackoffInitialMS int    `mapstructure:"backoff_initial_ms" yaml:"backoff_initial_ms"`
	BackoffMaxSec    int    `mapstructure:"backoff_max_sec" yaml:"backoff_max_sec"`
}

// NotifyConfig holds notification display settings.
type NotifyConfig struct {
	TTLSec int `mapstructure:"ttl_sec" yaml:"ttl_sec"`
}

// StoreConfig holds the location of the local activity database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// CredentialConfig holds keyring settings.
type CredentialConfig struct {
	// Dir is the directory used by the encrypted file backend when no
	// system keyring is available.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API        APIConfig        `mapstructure:"api" yaml:"api"`
	Push       PushConfig       `mapstructure:"push" yaml:"push"`
	Notify     NotifyConfig     `mapstructure:"notify" yaml:"notify"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Credential CredentialConfig `mapstructure:"credential" yaml:"credential"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// RequestTimeout returns the API timeout as a duration.
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// BackoffInitial returns the first reconnect delay of the push channel.
func (c *AppConfig) BackoffInitial() time.Duration {
	return time.Duration(c.Push.BackoffInitialMS) * time.Millisecond
}

// BackoffMax returns the reconnect delay cap of the push channel.
func (c *AppConfig) BackoffMax() time.Duration {
	return time.Duration(c.Push.BackoffMaxSec) * time.Second
}

// NotificationTTL returns how long a notification stays visible.
func (c *AppConfig) NotificationTTL() time.Duration {
	return time.Duration(c.Notify.TTLSec) * time.Second
}

// ConfigDir returns ~/.config/tasksync, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tasksync")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tasksync/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultConfig returns a configuration pointing at a local development
// server.
func DefaultConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8000/api/v1",
			TimeoutSec: 30,
			PageSize:   100,
		},
		Push: PushConfig{
			URL:              "ws://localhost:8000/ws",
			BackoffInitialMS: 500,
			BackoffMaxSec:    30,
		},
		Notify: NotifyConfig{TTLSec: 3},
		Store:  StoreConfig{Path: filepath.Join(dir, "activity.db")},
		Credential: CredentialConfig{
			Dir: filepath.Join(dir, "credentials"),
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.page_size", d.API.PageSize)
	v.SetDefault("push.url", d.Push.URL)
	v.SetDefault("push.backoff_initial_ms", d.Push.BackoffInitialMS)
	v.SetDefault("push.backoff_max_sec", d.Push.BackoffMaxSec)
	v.SetDefault("notify.ttl_sec", d.Notify.TTLSec)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("credential.dir", d.Credential.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden by TASKSYNC_* environment variables, e.g.
// TASKSYNC_API_BASE_URL. If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("tasksync")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.PageSize <= 0 {
		cfg.API.PageSize = 100
	}
	if cfg.Notify.TTLSec <= 0 {
		cfg.Notify.TTLSec = 3
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("push", cfg.Push)
	v.Set("notify", cfg.Notify)
	v.Set("store", cfg.Store)
	v.Set("credential", cfg.Credential)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
