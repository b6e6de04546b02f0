package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/termkeys/internal/app"
	"github.com/dshills/termkeys/internal/backend"
	"github.com/dshills/termkeys/internal/config"
	"github.com/dshills/termkeys/internal/input"
	"github.com/dshills/termkeys/internal/input/key"
	"github.com/dshills/termkeys/internal/input/termkey"
)

// openBackend creates the backend keys are read from. Tests replace it.
var openBackend = func() (backend.Backend, error) {
	t, err := backend.NewTerminal()
	if err != nil {
		return nil, err
	}
	return t, nil
}

// statusDisplay is implemented by backends that can show a status screen.
type statusDisplay interface {
	DrawLines(lines []string)
}

type recordOptions struct {
	*rootOptions

	format  string
	output  string
	quit    string
	metrics bool
	watch   bool
}

func newRecordCmd(root *rootOptions) *cobra.Command {
	opts := &recordOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record key presses until the quit key",
		Long: `Record puts the terminal in raw mode and writes every key it receives
to a trace until the quit key is pressed (default <C-c>).

Without --output the trace is written to stdout after the terminal is
restored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", config.FormatJSON, "Trace format (json, yaml, toml)")
	f.StringVarP(&opts.output, "output", "o", "", "Trace file (default stdout)")
	f.StringVarP(&opts.quit, "quit", "q", "", "Key that stops recording, e.g. \"<C-c>\" or \"Ctrl+Q\"")
	f.BoolVar(&opts.metrics, "metrics", false, "Print source metrics when recording ends")
	f.BoolVar(&opts.watch, "watch", false, "Reload logging settings when the config file changes")
	return cmd
}

// applyFlags overrides cfg with explicitly set flags.
func (o *recordOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Record.Format = o.format
	}
	if f.Changed("output") {
		cfg.Record.Output = o.output
	}
	if f.Changed("metrics") {
		cfg.Record.Metrics = o.metrics
	}
	if f.Changed("quit") {
		ev, err := key.Parse(o.quit)
		if err != nil {
			return fmt.Errorf("--quit %q: %w", o.quit, err)
		}
		cfg.Record.QuitKey = ev
	}
	return cfg.Validate()
}

func (o *recordOptions) run(cmd *cobra.Command) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := o.applyFlags(cmd, &cfg); err != nil {
		return err
	}

	b, err := openBackend()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	_, isTerminal := b.(*backend.Terminal)

	logger, err := o.newLogger(cfg, isTerminal)
	if err != nil {
		return err
	}
	defer logger.Close()
	if t, ok := b.(*backend.Terminal); ok {
		t.SetLogger(logger.WithComponent("terminal"))
	}

	out, flush, err := o.openOutput(cfg.Record.Output)
	if err != nil {
		return err
	}

	enc, err := app.NewEncoder(cfg.Record.Format, out)
	if err != nil {
		flush()
		return err
	}

	metrics := input.NewMetrics()
	metrics.SetEnabled(cfg.Record.Metrics)
	src, err := termkey.Open(b, termkey.WithMetrics(metrics))
	if err != nil {
		flush()
		return err
	}

	// The watcher logs through logger, so it must stop before the
	// deferred Close above.
	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(cmd.Context())
	defer func() {
		cancel()
		wg.Wait()
	}()

	if o.watch && o.configPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.watchConfig(ctx, logger)
		}()
	}

	display, _ := b.(statusDisplay)
	status := newStatusView(cfg.Record.QuitKey)

	rec := app.NewRecorder(src, enc,
		app.WithQuitKey(cfg.Record.QuitKey),
		app.WithLogger(logger.WithComponent("recorder")),
		app.WithOnRecord(func(r app.Record) {
			status.update(r)
			if display != nil {
				display.DrawLines(status.lines())
			}
		}),
	)
	status.session = rec.Session()
	if display != nil {
		display.DrawLines(status.lines())
	}

	sum, runErr := rec.Run(ctx)

	// Restore the terminal before anything reaches stdout.
	if err := src.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if err := flush(); err != nil && runErr == nil {
		runErr = err
	}
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	fmt.Fprintf(o.stderr, "recorded %d keys in %s (session %s)\n",
		sum.Records, sum.Duration.Round(time.Millisecond), sum.Session)
	if cfg.Record.Metrics {
		writeMetrics(o.stderr, metrics.Snapshot())
	}
	return runErr
}

// openOutput returns the trace writer and a function that flushes and
// closes it. Stdout output is held until flush so it does not mix with
// the terminal screen.
func (o *recordOptions) openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		buf := new(bytes.Buffer)
		return buf, func() error {
			_, err := o.stdout.Write(buf.Bytes())
			return err
		}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace file: %w", err)
	}
	w := bufio.NewWriter(f)
	return w, func() error {
		if err := w.Flush(); err != nil {
			f.Close()
			return fmt.Errorf("writing trace file: %w", err)
		}
		return f.Close()
	}, nil
}

func (o *recordOptions) watchConfig(ctx context.Context, logger *app.Logger) {
	log := logger.WithComponent("config")
	err := config.Watch(ctx, o.configPath, func(cfg config.Config, err error) {
		o.reloadLogging(logger, log, cfg, err)
	}, config.WithLoader(config.LoadWithEnv))
	if err != nil {
		log.Debug("config watch not started", "error", err)
	}
}

// reloadLogging applies a reloaded config to logger. An explicit
// --log-level still wins over the file.
func (o *recordOptions) reloadLogging(logger *app.Logger, log *slog.Logger, cfg config.Config, err error) {
	if err != nil {
		log.Warn("config reload failed", "error", err)
		return
	}
	level := cfg.Logging.Level
	if o.levelSet {
		level = o.logLevel
	}
	logger.SetLevel(level)
	log.Info("config reloaded", "level", level)
}

func writeMetrics(w io.Writer, snap input.MetricsSnapshot) {
	fmt.Fprintf(w, "keys read:     %d\n", snap.KeysRead)
	fmt.Fprintf(w, "untranslated:  %d\n", snap.Untranslated)
	fmt.Fprintf(w, "skipped:       %d\n", snap.Skipped)
	fmt.Fprintf(w, "avg latency:   %s\n", snap.AvgLatency)
	fmt.Fprintf(w, "p99 latency:   %s\n", snap.P99Latency)
	fmt.Fprintf(w, "peak latency:  %s\n", snap.PeakLatency)
}

// statusView is the text shown while recording.
type statusView struct {
	session string
	quit    key.Event
	count   int
	last    app.Record
}

func newStatusView(quit key.Event) *statusView {
	return &statusView{quit: quit}
}

func (s *statusView) update(r app.Record) {
	s.count = r.Seq
	s.last = r
}

func (s *statusView) lines() []string {
	lines := []string{
		"keytrace " + s.session,
		fmt.Sprintf("press %s to stop", s.quit.VimString()),
		"",
	}
	if s.count == 0 {
		return append(lines, "waiting for keys")
	}
	return append(lines,
		fmt.Sprintf("keys: %d", s.count),
		fmt.Sprintf("last: %s  %s", s.last.Key.VimString(), s.last.Key.String()),
		fmt.Sprintf("code: %s  modifiers: %s", s.last.Code, s.last.Modifiers),
	)
}
