// Package config loads TOML configuration for the routing runtime.
//
// Values of the form ${VAR} are expanded from the environment before parsing,
// so secrets like API keys stay out of the file itself.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config is the root configuration document.
type Config struct {
	Router  RouterConfig  `toml:"router"`
	Model   ModelConfig   `toml:"model"`
	Logging LoggingConfig `toml:"logging"`
}

// RouterConfig selects and tunes the routing policy.
type RouterConfig struct {
	// Policy is one of "threshold", "ownership", "sticky".
	Policy string `toml:"policy"`

	// BaseThreshold is the threshold policy's switching floor.
	BaseThreshold float64 `toml:"base_threshold"`

	// ExitThreshold is the sticky policy's exit-confidence gate.
	ExitThreshold float64 `toml:"exit_threshold"`

	// ScoreTTL enables suitability caching when positive, e.g. "30s".
	ScoreTTL duration `toml:"score_ttl"`

	// SuggestAfter is the consecutive-turn count that triggers the
	// change-of-handler advisory. Zero disables it.
	SuggestAfter int `toml:"suggest_after"`
}

// ModelConfig describes the completion service backing handlers and policies.
type ModelConfig struct {
	// Provider is "openai", "anthropic" or "mock".
	Provider string `toml:"provider"`
	Name     string `toml:"name"`
	APIKey   string `toml:"api_key"`
}

// LoggingConfig mirrors logging.Config for file-based setup.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// duration wraps time.Duration with TOML string decoding ("30s", "1m").
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d duration) Duration() time.Duration { return time.Duration(d) }

// Default returns the baseline configuration used when no file is given.
func Default() *Config {
	return &Config{
		Router: RouterConfig{
			Policy:        "threshold",
			BaseThreshold: 0.6,
			ExitThreshold: 0.6,
			SuggestAfter:  8,
		},
		Model:   ModelConfig{Provider: "mock"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads, expands and parses a TOML config file. Missing keys keep their
// defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes raw TOML after environment expansion.
func Parse(raw []byte) (*Config, error) {
	expanded := expandEnv(string(raw))
	cfg := Default()
	if err := toml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.Router.Policy {
	case "threshold", "ownership", "sticky":
	default:
		return fmt.Errorf("unknown router policy %q", c.Router.Policy)
	}
	switch c.Model.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	if c.Router.BaseThreshold < 0 || c.Router.BaseThreshold > 1 {
		return fmt.Errorf("base_threshold %v out of [0,1]", c.Router.BaseThreshold)
	}
	if c.Router.ExitThreshold < 0 || c.Router.ExitThreshold > 1 {
		return fmt.Errorf("exit_threshold %v out of [0,1]", c.Router.ExitThreshold)
	}
	return nil
}

// expandEnv replaces ${VAR} references with environment values. Unset
// variables expand to the empty string.
func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
