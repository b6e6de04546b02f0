package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dshills/termkeys/internal/input/key"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KEYTRACE_"

// LookupFunc reports the value of an environment variable.
type LookupFunc func(name string) (string, bool)

// envSetters maps environment variables to the setting they override.
var envSetters = map[string]func(*Config, string) error{
	EnvPrefix + "QUIT_KEY": func(c *Config, v string) error {
		ev, err := key.Parse(v)
		if err != nil {
			return err
		}
		c.Record.QuitKey = ev
		return nil
	},
	EnvPrefix + "FORMAT": func(c *Config, v string) error {
		c.Record.Format = v
		return nil
	},
	EnvPrefix + "OUTPUT": func(c *Config, v string) error {
		c.Record.Output = v
		return nil
	},
	EnvPrefix + "METRICS": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Record.Metrics = b
		return nil
	},
	EnvPrefix + "LOG_LEVEL": func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	},
	EnvPrefix + "LOG_FILE": func(c *Config, v string) error {
		c.Logging.File = v
		return nil
	},
}

// ApplyEnv overrides settings from environment variables found by lookup.
// Empty values are treated as set. A nil lookup uses os.LookupEnv.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for name, set := range envSetters {
		val, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(cfg, val); err != nil {
			return fmt.Errorf("environment %s=%q: %w", name, val, err)
		}
	}
	return cfg.Validate()
}

// LoadWithEnv loads path and then applies environment overrides.
func LoadWithEnv(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, nil); err != nil {
		return Default(), err
	}
	return cfg, nil
}
