package app

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/termkeys/internal/backend"
	"github.com/dshills/termkeys/internal/config"
	"github.com/dshills/termkeys/internal/input"
	"github.com/dshills/termkeys/internal/input/key"
	"github.com/dshills/termkeys/internal/input/termkey"
)

// fakeClock advances one second per call.
func fakeClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(time.Second)
		return now
	}
}

// memEncoder keeps everything written to it.
type memEncoder struct {
	header  Header
	records []Record
	closed  bool
	failAt  int
}

func (e *memEncoder) WriteHeader(h Header) error { e.header = h; return nil }

func (e *memEncoder) WriteRecord(r Record) error {
	if e.failAt > 0 && r.Seq == e.failAt {
		return errors.New("write failed")
	}
	e.records = append(e.records, r)
	return nil
}

func (e *memEncoder) Close() error { e.closed = true; return nil }

func TestRecorderStopsAtQuitKey(t *testing.T) {
	quit := key.MustParse("<C-c>")
	src := input.Replay(
		key.MustParse("a"),
		key.MustParse("<C-S-q>"),
		quit,
		key.MustParse("b"),
	)
	enc := &memEncoder{}

	var seen []Record
	rec := NewRecorder(src, enc,
		WithQuitKey(quit),
		WithSessionID("session-1"),
		WithClock(fakeClock()),
		WithOnRecord(func(r Record) { seen = append(seen, r) }),
	)

	sum, err := rec.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !sum.Quit || sum.Records != 2 || sum.Session != "session-1" {
		t.Errorf("unexpected summary %+v", sum)
	}
	if len(enc.records) != 2 || len(seen) != 2 {
		t.Fatalf("recorded %d, callback saw %d, want 2", len(enc.records), len(seen))
	}
	if enc.records[1].Key != key.NewRuneEvent('q', key.ModCtrl|key.ModShift) {
		t.Errorf("second record = %v", enc.records[1].Key)
	}
	if enc.records[0].ElapsedMS != 1000 || enc.records[1].ElapsedMS != 2000 {
		t.Errorf("elapsed = %d, %d", enc.records[0].ElapsedMS, enc.records[1].ElapsedMS)
	}
	if enc.header.Session != "session-1" || enc.header.QuitKey == nil || *enc.header.QuitKey != quit {
		t.Errorf("unexpected header %+v", enc.header)
	}
	if !enc.closed {
		t.Error("encoder was not closed")
	}
}

func TestRecorderEndsWhenSourceCloses(t *testing.T) {
	src := input.Replay(key.MustParse("x"), key.MustParse("<Esc>"))
	enc := &memEncoder{}

	sum, err := NewRecorder(src, enc).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.Quit || sum.Records != 2 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if _, err := uuid.Parse(sum.Session); err != nil {
		t.Errorf("generated session %q is not a UUID: %v", sum.Session, err)
	}
}

func TestRecorderContextCancel(t *testing.T) {
	src := input.NewChannelSource(1)
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewRecorder(src, &memEncoder{}).Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run error = %v, want DeadlineExceeded", err)
	}
}

func TestRecorderEncoderFailure(t *testing.T) {
	src := input.Replay(key.MustParse("a"), key.MustParse("b"))
	enc := &memEncoder{failAt: 2}

	sum, err := NewRecorder(src, enc).Run(context.Background())
	var ce *ComponentError
	if !errors.As(err, &ce) || ce.Component != "encoder" {
		t.Fatalf("Run error = %v, want encoder ComponentError", err)
	}
	if sum.Records != 1 {
		t.Errorf("Records = %d, want 1", sum.Records)
	}
	if !enc.closed {
		t.Error("encoder should be flushed even on failure")
	}
}

func TestRecorderAlreadyRunning(t *testing.T) {
	src := input.NewChannelSource(1)
	rec := NewRecorder(src, &memEncoder{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		rec.Run(context.Background())
	}()

	// Wait until the first Run holds the recorder.
	deadline := time.Now().Add(2 * time.Second)
	for !rec.running.Load() {
		if time.Now().After(deadline) {
			t.Fatal("recorder never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := rec.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run error = %v, want ErrAlreadyRunning", err)
	}

	src.Close()
	<-done
}

func TestRecordToTraceFormats(t *testing.T) {
	events := []key.Event{
		key.MustParse("<C-S-q>"),
		key.MustParse("<F0>"),
		key.MustParse("Enter"),
	}

	for _, format := range config.Formats() {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := NewEncoder(format, &buf)
			if err != nil {
				t.Fatalf("NewEncoder failed: %v", err)
			}

			_, err = NewRecorder(input.Replay(events...), enc, WithSessionID("s")).Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}

			tr, err := DecodeTrace(format, &buf)
			if err != nil {
				t.Fatalf("DecodeTrace failed: %v", err)
			}
			got := tr.Events()
			if len(got) != len(events) {
				t.Fatalf("decoded %d events, want %d", len(got), len(events))
			}
			for i := range events {
				if got[i] != events[i] {
					t.Errorf("event %d = %v, want %v", i, got[i], events[i])
				}
			}
		})
	}
}

// Keys typed on a simulated terminal end up in the trace unchanged.
func TestRecorderOverTerminal(t *testing.T) {
	nb := backend.NewNullBackend(80, 24)
	src, err := termkey.Open(nb)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	quit := key.MustParse("<C-c>")
	for _, ev := range []key.Event{
		key.NewEvent(key.Enter, key.ModNone),
		key.NewRuneEvent('q', key.ModCtrl|key.ModShift),
		quit,
	} {
		if err := src.SendKey(ev); err != nil {
			t.Fatalf("SendKey failed: %v", err)
		}
	}

	enc := &memEncoder{}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sum, err := NewRecorder(src, enc, WithQuitKey(quit)).Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !sum.Quit || len(enc.records) != 2 {
		t.Fatalf("summary %+v, records %d", sum, len(enc.records))
	}
	if enc.records[0].Key != key.NewEvent(key.Enter, key.ModNone) {
		t.Errorf("first record = %v", enc.records[0].Key)
	}
	if enc.records[1].Modifiers != key.ModCtrl|key.ModShift || enc.records[1].Code != key.Char('q') {
		t.Errorf("second record = %+v", enc.records[1])
	}
}
