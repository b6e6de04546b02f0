package termkey

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/termkeys/internal/backend"
	"github.com/dshills/termkeys/internal/input"
	"github.com/dshills/termkeys/internal/input/key"
)

// Source reads key events from a backend. It owns the backend: Close
// shuts it down.
type Source struct {
	backend backend.Backend
	metrics *input.Metrics

	keys   chan stampedKey
	done   chan struct{}
	polled chan struct{}

	closeOnce sync.Once
}

type stampedKey struct {
	event key.Event
	at    time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithMetrics records source activity into m.
func WithMetrics(m *input.Metrics) Option {
	return func(s *Source) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewSource starts reading from an initialized backend.
func NewSource(b backend.Backend, opts ...Option) *Source {
	s := &Source{
		backend: b,
		metrics: input.NewMetrics(),
		keys:    make(chan stampedKey),
		done:    make(chan struct{}),
		polled:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.poll()
	return s
}

// Open initializes b and starts reading from it.
func Open(b backend.Backend, opts ...Option) (*Source, error) {
	if err := b.Init(); err != nil {
		return nil, fmt.Errorf("initializing backend: %w", err)
	}
	return NewSource(b, opts...), nil
}

func (s *Source) poll() {
	defer close(s.polled)

	for {
		ev, ok := s.backend.PollEvent()
		if !ok {
			return
		}

		if ev.Type == backend.EventNone {
			s.metrics.RecordUntranslated()
			continue
		}

		k, ok := EventFromBackend(ev)
		if !ok {
			s.metrics.RecordSkipped()
			continue
		}

		select {
		case s.keys <- stampedKey{event: k, at: time.Now()}:
		case <-s.done:
			return
		}
	}
}

// ReadKey returns the next key event. Non-key events are skipped. It
// returns input.ErrClosed once the source is closed or the backend stops
// delivering events.
func (s *Source) ReadKey(ctx context.Context) (key.Event, error) {
	select {
	case <-s.done:
		return key.Event{}, input.ErrClosed
	default:
	}

	select {
	case st := <-s.keys:
		s.metrics.RecordKeyRead(time.Since(st.at))
		return st.event, nil
	case <-s.polled:
		return key.Event{}, input.ErrClosed
	case <-s.done:
		return key.Event{}, input.ErrClosed
	case <-ctx.Done():
		return key.Event{}, ctx.Err()
	}
}

// SendKey posts a synthetic key event to the backend.
func (s *Source) SendKey(event key.Event) error {
	select {
	case <-s.done:
		return input.ErrClosed
	default:
	}

	if err := s.backend.PostEvent(EventToBackend(event)); err != nil {
		return fmt.Errorf("sending %s: %w", event, err)
	}
	s.metrics.RecordKeySent()
	return nil
}

// Metrics returns the source's metrics.
func (s *Source) Metrics() *input.Metrics {
	return s.metrics
}

// Close stops reading, shuts down the backend and waits for the polling
// goroutine to exit.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.backend.Shutdown()
	})
	<-s.polled
	return nil
}

var (
	_ input.KeySource = (*Source)(nil)
	_ input.KeySink   = (*Source)(nil)
)
