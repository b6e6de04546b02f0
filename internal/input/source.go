package input

import (
	"context"
	"errors"
	"sync"

	"github.com/dshills/termkeys/internal/input/key"
)

var (
	// ErrClosed is returned by sources and sinks that have been closed.
	ErrClosed = errors.New("input: source closed")

	// ErrFull is returned when a sink cannot accept another event.
	ErrFull = errors.New("input: queue full")
)

// KeySource delivers key events.
type KeySource interface {
	// ReadKey blocks until a key event is available, ctx is done, or the
	// source is closed. A closed source returns ErrClosed.
	ReadKey(ctx context.Context) (key.Event, error)
}

// KeySink accepts synthetic key events.
type KeySink interface {
	SendKey(event key.Event) error
}

// ChannelSource is a KeySource and KeySink backed by a buffered channel.
// Events sent before Close are still delivered after it; once they are
// drained ReadKey returns ErrClosed.
type ChannelSource struct {
	mu     sync.Mutex
	events chan key.Event
	done   chan struct{}
	closed bool
}

// NewChannelSource creates a source that buffers up to size events.
func NewChannelSource(size int) *ChannelSource {
	if size < 1 {
		size = 1
	}
	return &ChannelSource{
		events: make(chan key.Event, size),
		done:   make(chan struct{}),
	}
}

// Replay returns a closed source that yields events in order.
func Replay(events ...key.Event) *ChannelSource {
	s := NewChannelSource(len(events))
	for _, ev := range events {
		s.events <- ev
	}
	s.Close()
	return s
}

// SendKey queues event. It does not block.
func (s *ChannelSource) SendKey(event key.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	select {
	case s.events <- event:
		return nil
	default:
		return ErrFull
	}
}

func (s *ChannelSource) ReadKey(ctx context.Context) (key.Event, error) {
	select {
	case ev := <-s.events:
		return ev, nil
	case <-ctx.Done():
		return key.Event{}, ctx.Err()
	case <-s.done:
		// Drain anything sent before Close.
		select {
		case ev := <-s.events:
			return ev, nil
		default:
			return key.Event{}, ErrClosed
		}
	}
}

// Close stops accepting events. It is safe to call more than once.
func (s *ChannelSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

// Pending returns the number of buffered events.
func (s *ChannelSource) Pending() int {
	return len(s.events)
}

var (
	_ KeySource = (*ChannelSource)(nil)
	_ KeySink   = (*ChannelSource)(nil)
)
