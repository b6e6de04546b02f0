package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/termkeys/internal/input/key"
)

// Output formats supported by the recorder.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatTOML}
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds all keytrace settings.
type Config struct {
	Record  RecordConfig  `toml:"record"`
	Logging LoggingConfig `toml:"logging"`
}

// RecordConfig configures a recording session.
type RecordConfig struct {
	// QuitKey ends the session. It is written in key spec notation,
	// for example "<C-c>" or "Ctrl+Q".
	QuitKey key.Event `toml:"quit_key"`

	// Format is one of Formats().
	Format string `toml:"format"`

	// Output is the file events are written to; empty means stdout.
	Output string `toml:"output"`

	// Metrics prints a source summary when the session ends.
	Metrics bool `toml:"metrics"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`

	// File receives log output. When empty, logs are discarded while
	// the terminal is in use.
	File string `toml:"file"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Record: RecordConfig{
			QuitKey: key.NewRuneEvent('c', key.ModCtrl),
			Format:  FormatJSON,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error and yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return parse(path, bytes.NewReader(data), cfg)
}

// LoadFromReader reads TOML from r over the defaults.
func LoadFromReader(r io.Reader) (Config, error) {
	return parse("<reader>", r, Default())
}

// parse decodes TOML into cfg. Unknown keys are rejected.
func parse(source string, r io.Reader, cfg Config) (Config, error) {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Default(), newParseError(source, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}

func newParseError(source string, err error) *ParseError {
	pe := &ParseError{
		Path:    source,
		Message: err.Error(),
		Err:     err,
	}

	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) && len(strictErr.Errors) > 0 {
		first := strictErr.Errors[0]
		pe.Line, pe.Column = first.Position()
		pe.Message = "unknown setting " + strings.Join(first.Key(), ".")
		return pe
	}

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		pe.Line, pe.Column = decodeErr.Position()
	}
	return pe
}

// Validate checks that every setting holds a usable value.
func (c Config) Validate() error {
	if !slices.Contains(Formats(), c.Record.Format) {
		return &ValidationError{
			Path:    "record.format",
			Value:   c.Record.Format,
			Message: "must be one of " + strings.Join(Formats(), ", "),
		}
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return &ValidationError{
			Path:    "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of " + strings.Join(logLevels, ", "),
		}
	}
	return nil
}

// Marshal encodes cfg as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
