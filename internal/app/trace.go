package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/termkeys/internal/config"
	"github.com/dshills/termkeys/internal/input/key"
)

// Header describes a recording session.
type Header struct {
	Session string    `json:"session" yaml:"session" toml:"session"`
	Started time.Time `json:"started" yaml:"started" toml:"started"`
	// QuitKey is nil when the session had no quit key.
	QuitKey *key.Event `json:"quit_key,omitempty" yaml:"quit_key,omitempty" toml:"quit_key,omitempty"`
}

// Record is one captured key. Key is authoritative; Code and Modifiers
// repeat its parts for readers that filter traces.
type Record struct {
	Seq       int          `json:"seq" yaml:"seq" toml:"seq"`
	ElapsedMS int64        `json:"elapsed_ms" yaml:"elapsed_ms" toml:"elapsed_ms"`
	Key       key.Event    `json:"key" yaml:"key" toml:"key"`
	Code      key.Code     `json:"code" yaml:"code" toml:"code"`
	Modifiers key.Modifier `json:"modifiers" yaml:"modifiers" toml:"modifiers"`
}

// NewRecord builds the record for ev.
func NewRecord(seq int, elapsed time.Duration, ev key.Event) Record {
	return Record{
		Seq:       seq,
		ElapsedMS: elapsed.Milliseconds(),
		Key:       ev,
		Code:      ev.Code,
		Modifiers: ev.Modifiers,
	}
}

// Encoder writes a trace: one header followed by records.
type Encoder interface {
	WriteHeader(h Header) error
	WriteRecord(r Record) error
	// Close flushes buffered output. It does not close the writer.
	Close() error
}

// NewEncoder returns an encoder for format, one of config.Formats().
//
// JSON traces are newline-delimited objects, YAML traces are a stream of
// documents and TOML traces are top-level header keys followed by an
// [[events]] table per record.
func NewEncoder(format string, w io.Writer) (Encoder, error) {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return &jsonEncoder{enc: enc}, nil
	case config.FormatYAML:
		return &yamlEncoder{enc: yaml.NewEncoder(w)}, nil
	case config.FormatTOML:
		return &tomlEncoder{w: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type jsonEncoder struct {
	enc *json.Encoder
}

func (e *jsonEncoder) WriteHeader(h Header) error { return e.enc.Encode(h) }
func (e *jsonEncoder) WriteRecord(r Record) error { return e.enc.Encode(r) }
func (e *jsonEncoder) Close() error               { return nil }

type yamlEncoder struct {
	enc *yaml.Encoder
}

func (e *yamlEncoder) WriteHeader(h Header) error { return e.enc.Encode(h) }
func (e *yamlEncoder) WriteRecord(r Record) error { return e.enc.Encode(r) }
func (e *yamlEncoder) Close() error               { return e.enc.Close() }

type tomlEncoder struct {
	w io.Writer
}

// tomlEvents wraps records so each one marshals as an [[events]] table.
type tomlEvents struct {
	Events []Record `toml:"events"`
}

func (e *tomlEncoder) WriteHeader(h Header) error {
	return e.write(h)
}

func (e *tomlEncoder) WriteRecord(r Record) error {
	return e.write(tomlEvents{Events: []Record{r}})
}

func (e *tomlEncoder) write(v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = e.w.Write(data)
	return err
}

func (e *tomlEncoder) Close() error { return nil }

// Trace is a decoded recording.
type Trace struct {
	Header  Header
	Records []Record
}

// Events returns the recorded key events in order.
func (t Trace) Events() []key.Event {
	events := make([]key.Event, len(t.Records))
	for i, r := range t.Records {
		events[i] = r.Key
	}
	return events
}

// tomlTrace is the whole-document form of a TOML trace.
type tomlTrace struct {
	Session string     `toml:"session"`
	Started time.Time  `toml:"started"`
	QuitKey *key.Event `toml:"quit_key"`
	Events  []Record   `toml:"events"`
}

// DecodeTrace reads a trace written by NewEncoder.
func DecodeTrace(format string, r io.Reader) (Trace, error) {
	switch format {
	case config.FormatJSON:
		return decodeStream(json.NewDecoder(r))
	case config.FormatYAML:
		return decodeStream(yaml.NewDecoder(r))
	case config.FormatTOML:
		var doc tomlTrace
		if err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return Trace{}, fmt.Errorf("decoding trace: %w", err)
		}
		if doc.Session == "" {
			return Trace{}, errors.New("decoding trace: missing session header")
		}
		return Trace{
			Header:  Header{Session: doc.Session, Started: doc.Started, QuitKey: doc.QuitKey},
			Records: doc.Events,
		}, nil
	default:
		return Trace{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type streamDecoder interface {
	Decode(v any) error
}

func decodeStream(dec streamDecoder) (Trace, error) {
	var t Trace
	if err := dec.Decode(&t.Header); err != nil {
		return Trace{}, fmt.Errorf("decoding trace header: %w", err)
	}

	for {
		var r Record
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return Trace{}, fmt.Errorf("decoding record %d: %w", len(t.Records)+1, err)
		}
		t.Records = append(t.Records, r)
	}
}
