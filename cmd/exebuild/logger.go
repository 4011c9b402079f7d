package main

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/atlanticdynamic/exebuild/internal/config"
	"github.com/atlanticdynamic/exebuild/internal/fancy"
	"github.com/atlanticdynamic/exebuild/internal/logging"
	"github.com/urfave/cli/v3"
)

var (
	logOutputMu sync.Mutex
	logOutput   io.WriteCloser
)

// setupLogging installs the default slog handler from the global flags.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("no-color") {
		fancy.DisableColor()
	}

	out, err := logging.OpenOutput(cmd.String("log-output"))
	if err != nil {
		return ctx, cli.Exit(err, exitUsage)
	}
	logOutputMu.Lock()
	logOutput = out
	logOutputMu.Unlock()

	if _, err := logging.SetupLogger(cmd.String("log-level"), cmd.String("log-format"), out); err != nil {
		return ctx, cli.Exit(err, exitUsage)
	}
	return ctx, nil
}

// applyProfileLogging lets a profile's [logging] section win over the
// defaults, but never over flags given on the command line.
func applyProfileLogging(cmd *cli.Command, p *config.Profile) {
	level, format := cmd.String("log-level"), cmd.String("log-format")
	changed := false
	if p.Logging.Level != "" && !cmd.IsSet("log-level") {
		level, changed = p.Logging.Level, true
	}
	if p.Logging.Format != "" && !cmd.IsSet("log-format") {
		format, changed = p.Logging.Format, true
	}
	if !changed {
		return
	}

	logOutputMu.Lock()
	out := logOutput
	logOutputMu.Unlock()
	if _, err := logging.SetupLogger(level, format, out); err != nil {
		slog.Warn("Ignoring profile logging settings", "error", err)
	}
}

func closeLogging(context.Context, *cli.Command) error {
	logOutputMu.Lock()
	defer logOutputMu.Unlock()
	if logOutput == nil {
		return nil
	}
	err := logOutput.Close()
	logOutput = nil
	return err
}
