package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named; it may be absent.
const DefaultPath = "taq.yaml"

type Config struct {
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `yaml:"log_format" env:"LOG_FORMAT"`
	OnMalformed string `yaml:"on_malformed" env:"ON_MALFORMED"`
	Workers     int    `yaml:"workers" env:"WORKERS"`
	MetricsFile string `yaml:"metrics_file" env:"METRICS_FILE"`
	Stats       bool   `yaml:"stats" env:"STATS"`
}

func defaults() Config {
	return Config{
		LogLevel:    "info",
		LogFormat:   "text",
		OnMalformed: "fail",
		Workers:     1,
	}
}

// Load reads the YAML file at path over the defaults, then applies TAQ_*
// environment overrides. An empty path means DefaultPath, which is allowed
// to be missing; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TAQ_"}); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate normalizes case and rejects unusable values.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.OnMalformed = strings.ToLower(c.OnMalformed)

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf(`log_format must be "text" or "json", got %q`, c.LogFormat)
	}
	switch c.OnMalformed {
	case "fail", "skip":
	default:
		return fmt.Errorf(`on_malformed must be "fail" or "skip", got %q`, c.OnMalformed)
	}
	if c.Workers < 1 {
		return errors.New("workers must be >=1")
	}
	return nil
}

// NewLogger builds the process logger. Logs go to w (stderr in the CLI) so
// stdout stays free for the stats report.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
