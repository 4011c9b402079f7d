package controller

import (
	"log/slog"

	"github.com/atlanticdynamic/exebuild/internal/build"
	"github.com/atlanticdynamic/exebuild/internal/probe"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets a custom logger for the Controller instance.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
		c.handler = logger.Handler()
	}
}

// WithLogHandler sets a custom log handler for the Controller instance.
// Session event logs forward to the same handler.
func WithLogHandler(handler slog.Handler) Option {
	return func(c *Controller) {
		c.logger = slog.New(handler)
		c.handler = handler
	}
}

// WithBuilder replaces the command builder, e.g. to change the launcher.
func WithBuilder(b build.Builder) Option {
	return func(c *Controller) {
		c.builder = b
	}
}

// WithRunner replaces the process runner.
func WithRunner(r ProcessRunner) Option {
	return func(c *Controller) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithInstaller sets how Install installs the packaging tool.
func WithInstaller(i probe.Installer) Option {
	return func(c *Controller) {
		c.installer = i
	}
}

// WithHistory records every finished session.
func WithHistory(h HistoryRecorder) Option {
	return func(c *Controller) {
		c.history = h
	}
}
