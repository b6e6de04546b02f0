package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/termkeys/internal/app"
	"github.com/dshills/termkeys/internal/config"
)

type rootOptions struct {
	configPath string
	logLevel   string
	// levelSet records that --log-level was given, so config reloads
	// keep it.
	levelSet bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "keytrace",
		Short: "Record and inspect terminal key events",
		Long: `keytrace records the keys a terminal delivers, in a terminal-independent
notation, and writes them as JSON, YAML or TOML traces.

Key specs accept Vim notation ("<C-S-q>", "<CR>", "<F12>") and modifier
notation ("Ctrl+Shift+Q", "Alt+F4").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(versionTemplate())

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "Path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRecordCmd(opts),
		newParseCmd(opts),
		newReplayCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

func versionTemplate() string {
	if commit != "unknown" && commit != "" {
		return fmt.Sprintf("keytrace %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("keytrace %s\n", version)
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(opts.stdout, versionTemplate())
			return err
		},
	}
}

// defaultConfigPath returns the per-user config file location, or "" if
// it cannot be determined.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "keytrace", "config.toml")
}

// loadConfig reads the config file and environment, then applies the
// --log-level flag.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadWithEnv(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		o.levelSet = true
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the logger for cfg. Without a log file, output goes
// to stderr unless the terminal is in use.
func (o *rootOptions) newLogger(cfg config.Config, terminal bool) (*app.Logger, error) {
	lc := app.LoggerConfig{Level: cfg.Logging.Level, File: cfg.Logging.File}
	if !terminal {
		lc.Output = o.stderr
	}
	return app.NewLogger(lc)
}
