package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/termkeys/internal/input"
	"github.com/dshills/termkeys/internal/input/key"
)

// Recorder reads keys from a source and writes them to an encoder until
// the quit key is pressed or the source closes.
type Recorder struct {
	src     input.KeySource
	enc     Encoder
	quit    key.Event
	hasQuit bool
	session string
	logger  *slog.Logger
	now     func() time.Time
	onKey   func(Record)

	running atomic.Bool
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithQuitKey ends recording when ev is read. The quit key is not recorded.
func WithQuitKey(ev key.Event) RecorderOption {
	return func(r *Recorder) {
		r.quit = ev
		r.hasQuit = true
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) RecorderOption {
	return func(r *Recorder) {
		if id != "" {
			r.session = id
		}
	}
}

// WithLogger sets the recorder's logger.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithOnRecord calls fn after each record is written.
func WithOnRecord(fn func(Record)) RecorderOption {
	return func(r *Recorder) {
		r.onKey = fn
	}
}

// NewRecorder creates a recorder.
func NewRecorder(src input.KeySource, enc Encoder, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		src:     src,
		enc:     enc,
		session: uuid.NewString(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the session id written in the trace header.
func (r *Recorder) Session() string {
	return r.session
}

// Summary describes a finished recording.
type Summary struct {
	Session  string
	Records  int
	Duration time.Duration
	// Quit is true when the quit key ended the session.
	Quit bool
}

// Run records until the quit key, the source closing, or ctx ending. The
// first two return a nil error; otherwise the error matches ctx.Err().
func (r *Recorder) Run(ctx context.Context) (Summary, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Summary{}, ErrAlreadyRunning
	}
	defer r.running.Store(false)

	start := r.now()
	sum := Summary{Session: r.session}

	hdr := Header{Session: r.session, Started: start.UTC()}
	if r.hasQuit {
		quit := r.quit
		hdr.QuitKey = &quit
	}
	if err := r.enc.WriteHeader(hdr); err != nil {
		return sum, NewComponentError("encoder", "write header", err)
	}
	r.logger.Info("recording started", "session", r.session, "quit", r.quit.String())

	err := r.loop(ctx, start, &sum)
	sum.Duration = r.now().Sub(start)

	var errs ErrorList
	switch {
	case errors.Is(err, ErrQuit):
		sum.Quit = true
	case errors.Is(err, input.ErrClosed):
	default:
		errs.Add(err)
	}
	if cerr := r.enc.Close(); cerr != nil {
		errs.Add(NewComponentError("encoder", "flush", cerr))
	}

	r.logger.Info("recording finished", "session", r.session, "records", sum.Records, "quit", sum.Quit)
	return sum, errs.AsError()
}

func (r *Recorder) loop(ctx context.Context, start time.Time, sum *Summary) error {
	for {
		ev, err := r.src.ReadKey(ctx)
		if err != nil {
			if errors.Is(err, input.ErrClosed) {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return NewComponentError("source", "read key", err)
		}

		if r.hasQuit && ev == r.quit {
			r.logger.Debug("quit key read", "key", ev.String())
			return ErrQuit
		}

		rec := NewRecord(sum.Records+1, r.now().Sub(start), ev)
		if err := r.enc.WriteRecord(rec); err != nil {
			return NewComponentError("encoder", "write record", err)
		}
		sum.Records++
		r.logger.Debug("key recorded", "seq", rec.Seq, "key", ev.String())

		if r.onKey != nil {
			r.onKey(rec)
		}
	}
}
