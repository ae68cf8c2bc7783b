package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jgivc/pageindex/internal/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	DefaultConfigFileName = "pageindex.yml"
	DefaultRoot           = "."
	DefaultOutputFileName = "index.html"
	DefaultStateFileName  = ".pageindex-state.yml"
	DefaultListen         = ":8080"
	DefaultDebounce       = 500 * time.Millisecond
	DefaultRedisKey       = "pageindex:state"

	envFileName = ".env"
)

type RenderConfig struct {
	Minify bool `yaml:"minify"`
}

type StateConfig struct {
	Enabled  bool   `yaml:"enabled"`
	FileName string `yaml:"file"`
	RedisURL string `yaml:"redis_url"`
	RedisKey string `yaml:"redis_key"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type ServeConfig struct {
	Listen string `yaml:"listen"`
}

type MetricsConfig struct {
	TextFile string `yaml:"textfile"`
}

type Config struct {
	Root           string        `yaml:"root"`
	OutputFileName string        `yaml:"output"`
	LogLevel       string        `yaml:"log_level"`
	Render         RenderConfig  `yaml:"render"`
	State          StateConfig   `yaml:"state"`
	Watch          WatchConfig   `yaml:"watch"`
	Serve          ServeConfig   `yaml:"serve"`
	Metrics        MetricsConfig `yaml:"metrics"`
}

func (c *Config) SetDefaults() {
	c.Root = DefaultRoot
	c.OutputFileName = DefaultOutputFileName
	c.LogLevel = LogLevelInfo
	c.State = StateConfig{
		Enabled:  true,
		FileName: DefaultStateFileName,
		RedisKey: DefaultRedisKey,
	}
	c.Watch.Debounce = DefaultDebounce
	c.Serve.Listen = DefaultListen
}

// Load reads the yaml config at path on top of the defaults.
// A missing file is not an error, the defaults are returned as is.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(envFileName); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load %s: %w", envFileName, err)
	}

	cfg := &Config{}
	cfg.SetDefaults()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	if err := cfg.Parse(data); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse applies yaml data to c, expanding ${VAR} references first.
func (c *Config) Parse(data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("cannot unmarshal config: %w", err)
	}

	return c.Validate()
}

func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if c.Root == "" {
		c.Root = DefaultRoot
	}

	if c.OutputFileName == "" {
		return fmt.Errorf("output file name must not be empty")
	}

	if c.State.Enabled && c.State.FileName == "" && c.State.RedisURL == "" {
		return fmt.Errorf("state is enabled but neither file nor redis_url is set")
	}

	if c.State.RedisKey == "" {
		c.State.RedisKey = DefaultRedisKey
	}

	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultDebounce
	}

	return nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case LogLevelDebug:
		return slog.LevelDebug, nil
	case LogLevelInfo, "":
		return slog.LevelInfo, nil
	case LogLevelWarn:
		return slog.LevelWarn, nil
	case LogLevelError:
		return slog.LevelError, nil
	}

	return slog.LevelInfo, fmt.Errorf("%w: %s", common.ErrInvalidLogLevel, c.LogLevel)
}
