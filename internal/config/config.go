package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"treesync/internal/syncer"

	"github.com/spf13/viper"
)

type Config struct {
	LocalRoot          string        `mapstructure:"local_root" yaml:"local_root"`
	RemoteRoot         string        `mapstructure:"remote_root" yaml:"remote_root"`
	Provider           string        `mapstructure:"provider" yaml:"provider"`
	DryRun             bool          `mapstructure:"dry_run" yaml:"dry_run"`
	Workers            int           `mapstructure:"workers" yaml:"workers"`
	ChunkSize          int64         `mapstructure:"chunk_size" yaml:"chunk_size"`
	LargeFileThreshold int64         `mapstructure:"large_file_threshold" yaml:"large_file_threshold"`
	IgnoreList         []string      `mapstructure:"ignore_list" yaml:"ignore_list"`
	DBPath             string        `mapstructure:"db_path" yaml:"db_path"`
	DaemonPort         int           `mapstructure:"daemon_port" yaml:"daemon_port"`
	WatchInterval      time.Duration `mapstructure:"watch_interval" yaml:"watch_interval"`
	Debounce           time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Debug              bool          `mapstructure:"debug" yaml:"debug"`
}

var Default = Config{
	RemoteRoot:         "/",
	Provider:           "gdrive",
	Workers:            4,
	ChunkSize:          syncer.DefaultChunkSize,
	LargeFileThreshold: syncer.DefaultLargeFileThreshold,
	IgnoreList:         syncer.DefaultIgnoreNames(),
	DBPath:             "treesync.db",
	DaemonPort:         9101,
	WatchInterval:      5 * time.Minute,
	Debounce:           2 * time.Second,
}

// Load reads ~/.treesync/config.yaml. A missing file is not an error.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".treesync")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	return LoadFrom(configDir)
}

// LoadFrom reads config.yaml in dir, then TREESYNC_* environment variables.
// A relative db_path is resolved against dir.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetDefault("local_root", Default.LocalRoot)
	v.SetDefault("remote_root", Default.RemoteRoot)
	v.SetDefault("provider", Default.Provider)
	v.SetDefault("dry_run", Default.DryRun)
	v.SetDefault("workers", Default.Workers)
	v.SetDefault("chunk_size", Default.ChunkSize)
	v.SetDefault("large_file_threshold", Default.LargeFileThreshold)
	v.SetDefault("ignore_list", Default.IgnoreList)
	v.SetDefault("db_path", Default.DBPath)
	v.SetDefault("daemon_port", Default.DaemonPort)
	v.SetDefault("watch_interval", Default.WatchInterval)
	v.SetDefault("debounce", Default.Debounce)
	v.SetDefault("debug", Default.Debug)

	v.SetEnvPrefix("TREESYNC")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(dir, cfg.DBPath)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case "gdrive", "dropbox":
	default:
		return fmt.Errorf("unknown provider %q (want gdrive or dropbox)", c.Provider)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.LargeFileThreshold <= 0 {
		return fmt.Errorf("large_file_threshold must be positive, got %d", c.LargeFileThreshold)
	}

	return nil
}
