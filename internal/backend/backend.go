// Package backend provides the terminal backend abstraction for input.
//
// The types in this package are the backend's native event vocabulary.
// Editor logic should not use them directly; package termkey converts them
// to the terminal-agnostic types in package key.
package backend

import (
	"errors"
	"sync"
)

var (
	// ErrUnsupportedKey indicates the terminal cannot represent a key.
	ErrUnsupportedKey = errors.New("key not supported by terminal")

	// ErrQueueFull indicates a posted event was dropped.
	ErrQueueFull = errors.New("event queue full")
)

// Backend defines the interface for terminal input backends.
type Backend interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	// Must be called when done with the backend.
	Shutdown()

	// Size returns the current terminal dimensions.
	Size() (width, height int)

	// PollEvent waits for and returns the next terminal event.
	// This is a blocking call. After Shutdown it returns an EventNone
	// event with ok set to false.
	PollEvent() (ev Event, ok bool)

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event) error
}

// NullBackend is a channel-backed backend for testing.
type NullBackend struct {
	mu            sync.Mutex
	width, height int
	events        chan Event
	done          chan struct{}
	closeOnce     sync.Once
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
		done:   make(chan struct{}),
	}
}

func (b *NullBackend) Init() error { return nil }

// Shutdown unblocks pending PollEvent calls.
func (b *NullBackend) Shutdown() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *NullBackend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *NullBackend) PollEvent() (Event, bool) {
	select {
	case ev := <-b.events:
		return ev, true
	case <-b.done:
		return Event{}, false
	}
}

func (b *NullBackend) PostEvent(event Event) error {
	select {
	case b.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Resize simulates a terminal resize for testing.
func (b *NullBackend) Resize(width, height int) error {
	b.mu.Lock()
	b.width = width
	b.height = height
	b.mu.Unlock()
	return b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
