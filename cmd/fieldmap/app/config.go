package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultDataDirName = ".fieldmap"
	defaultConfigName  = "fieldmap.yaml"

	defaultMaxBatchSize  = 100
	defaultFlushInterval = Duration(2 * time.Second)
	defaultMaxAge        = Duration(30 * 24 * time.Hour)
	defaultSchedule      = "0 3 * * *"
)

// Duration wraps time.Duration so configuration files can use the familiar
// "2s" / "720h" notation.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the application configuration.
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Storage   StorageConfig   `yaml:"storage"`
	Retention RetentionConfig `yaml:"retention"`
	Export    ExportConfig    `yaml:"export"`
}

// Settings holds global application settings.
type Settings struct {
	LogLevel string `yaml:"log_level"`
}

// StorageConfig locates the sample database and tunes batch ingestion.
type StorageConfig struct {
	DataDirectory string   `yaml:"data_directory"`
	MaxBatchSize  int      `yaml:"max_batch_size"`
	FlushInterval Duration `yaml:"flush_interval"`
}

// RetentionConfig controls age-based sample pruning.
type RetentionConfig struct {
	MaxAge   Duration `yaml:"max_age"`
	Schedule string   `yaml:"schedule"`
}

// ExportConfig sets the default export format.
type ExportConfig struct {
	Format string `yaml:"format"`
	Pretty bool   `yaml:"pretty"`
}

// NewConfig returns a configuration with every field at its default.
func NewConfig() *Config {
	return &Config{
		Settings: Settings{
			LogLevel: "info",
		},
		Storage: StorageConfig{
			MaxBatchSize:  defaultMaxBatchSize,
			FlushInterval: defaultFlushInterval,
		},
		Retention: RetentionConfig{
			MaxAge:   defaultMaxAge,
			Schedule: defaultSchedule,
		},
		Export: ExportConfig{
			Format: "json",
		},
	}
}

// LoadConfig reads the configuration file at path, or the default location
// when path is empty. A missing default file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	config := NewConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing configuration file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No file at the default location; run with defaults.
	default:
		return nil, fmt.Errorf("reading configuration file %s: %w", path, err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate normalizes the configuration and rejects unusable values.
func (c *Config) Validate() error {
	switch c.Settings.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Settings.LogLevel)
	}

	if c.Storage.DataDirectory == "" {
		c.Storage.DataDirectory = defaultDataDirectory()
	} else if dir, ok := expandHome(c.Storage.DataDirectory); ok {
		c.Storage.DataDirectory = dir
	}

	if c.Storage.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", c.Storage.MaxBatchSize)
	}
	if c.Storage.FlushInterval <= 0 {
		return fmt.Errorf("flush_interval must be positive, got %s", time.Duration(c.Storage.FlushInterval))
	}
	if c.Retention.MaxAge <= 0 {
		return fmt.Errorf("retention max_age must be positive, got %s", time.Duration(c.Retention.MaxAge))
	}

	switch c.Export.Format {
	case "json", "csv":
	default:
		return fmt.Errorf("invalid export format %q", c.Export.Format)
	}

	return nil
}

func defaultConfigPath() string {
	return filepath.Join(defaultDataDirectory(), defaultConfigName)
}

func defaultDataDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDataDirName
	}
	return filepath.Join(home, defaultDataDirName)
}

// expandHome resolves a leading "~/" against the user home directory.
func expandHome(path string) (string, bool) {
	if len(path) < 2 || path[0] != '~' || path[1] != filepath.Separator {
		return "", false
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, path[2:]), true
}
