package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/termkeys/internal/app"
	"github.com/dshills/termkeys/internal/config"
	"github.com/dshills/termkeys/internal/input"
)

type replayOptions struct {
	*rootOptions

	from   string
	format string
	output string
}

func newReplayCmd(root *rootOptions) *cobra.Command {
	opts := &replayOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Re-encode a recorded trace",
		Long: `Replay feeds the keys of a recorded trace through the recorder again and
writes them in the requested format. Sequence numbers are renumbered;
the session id, start time and per-key timing are kept.`,
		Example: `  keytrace replay session.json --format toml
  keytrace replay --from yaml - < session.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "", "Input format (default from file extension)")
	f.StringVarP(&opts.format, "format", "f", config.FormatJSON, "Output format (json, yaml, toml)")
	f.StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

// formatForPath guesses a trace format from the file extension.
func formatForPath(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return config.FormatJSON, true
	case ".yaml", ".yml":
		return config.FormatYAML, true
	case ".toml":
		return config.FormatTOML, true
	}
	return "", false
}

func (o *replayOptions) run(ctx context.Context, path string) error {
	from := o.from
	if from == "" {
		var ok bool
		if from, ok = formatForPath(path); !ok {
			return fmt.Errorf("cannot tell the format of %q, use --from", path)
		}
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	trace, err := app.DecodeTrace(from, r)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if o.output == "" {
		return o.replay(ctx, trace, o.stdout)
	}
	f, err := os.Create(o.output)
	if err != nil {
		return err
	}
	if err := o.replay(ctx, trace, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// replay re-encodes trace to w through a Recorder whose clock follows the
// recorded timing.
func (o *replayOptions) replay(ctx context.Context, trace app.Trace, w io.Writer) error {
	enc, err := app.NewEncoder(o.format, w)
	if err != nil {
		return err
	}

	// Recorded traces never contain their quit key, so the source closing
	// ends the session.
	recOpts := []app.RecorderOption{
		app.WithSessionID(trace.Header.Session),
		app.WithClock(traceClock(trace)),
	}
	if q := trace.Header.QuitKey; q != nil {
		recOpts = append(recOpts, app.WithQuitKey(*q))
	}
	src := input.Replay(trace.Events()...)
	_, err = app.NewRecorder(src, enc, recOpts...).Run(ctx)
	return err
}

// traceClock returns a clock that reproduces trace's timing for a
// Recorder: the first reading is the start time, each following reading
// is the next record's time, and once records run out it stays on the
// last one.
func traceClock(trace app.Trace) func() time.Time {
	start := trace.Header.Started
	times := make([]time.Time, 0, len(trace.Records)+1)
	times = append(times, start)
	for _, r := range trace.Records {
		times = append(times, start.Add(time.Duration(r.ElapsedMS)*time.Millisecond))
	}

	var mu sync.Mutex
	next := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := times[min(next, len(times)-1)]
		next++
		return t
	}
}
