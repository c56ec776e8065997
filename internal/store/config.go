package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode string `yaml:"mode"` // DRY_RUN or LIVE

	Server struct {
		Addr           string `yaml:"addr"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"server"`

	Resolver struct {
		Threshold float64 `yaml:"threshold"` // acceptance similarity, (0,1]
		Margin    float64 `yaml:"margin"`    // winner-vs-runner-up gap
	} `yaml:"resolver"`

	Confirmation struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"confirmation"`

	Directory struct {
		File           string `yaml:"file"`
		RefreshMinutes int    `yaml:"refresh_minutes"` // 0 disables the reload job
		KRXRefresh     bool   `yaml:"krx_refresh"`     // fetch listings from KRX instead of the file
	} `yaml:"directory"`

	KIS struct {
		Real bool `yaml:"real"` // false targets the paper-trading endpoints
	} `yaml:"kis"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Resolver.Threshold <= 0 || c.Resolver.Threshold > 1 {
		return fmt.Errorf("resolver.threshold must be in (0,1], got %.2f", c.Resolver.Threshold)
	}
	if c.Resolver.Margin < 0 || c.Resolver.Margin >= 1 {
		return fmt.Errorf("resolver.margin must be in [0,1), got %.2f", c.Resolver.Margin)
	}
	if c.Confirmation.TTLSeconds <= 0 {
		return errors.New("confirmation.ttl_seconds must be positive")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// Default returns a config with every policy knob at its tuned default,
// used when no config file is present and by tests.
func Default() *Config {
	var c Config
	c.Mode = "DRY_RUN"
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 15
	}
	if c.Resolver.Threshold == 0 {
		c.Resolver.Threshold = 0.60
	}
	if c.Resolver.Margin == 0 {
		c.Resolver.Margin = 0.15
	}
	if c.Confirmation.TTLSeconds == 0 {
		c.Confirmation.TTLSeconds = 60
	}
	if c.Directory.File == "" {
		c.Directory.File = "securities.yaml"
	}
}
