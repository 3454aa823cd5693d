package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds CLI defaults. Flags override values loaded from file.
type Config struct {
	LogLevel    string `toml:"log_level"`
	EvalTimeout string `toml:"eval_timeout"`
	Output      string `toml:"output"`
	Indent      bool   `toml:"indent"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		EvalTimeout: "5s",
		Output:      "-",
	}
}

// LoadConfig reads a TOML file over the defaults. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field parses.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Output == "" {
		return fmt.Errorf("output must not be empty (use \"-\" for stdout)")
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Timeout parses EvalTimeout.
func (c Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.EvalTimeout)
	if err != nil {
		return 0, fmt.Errorf("eval_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("eval_timeout %s: must be positive", d)
	}
	return d, nil
}
