package probe

import (
	"log/slog"
	"time"

	"github.com/Masterminds/semver/v3"
)

type Option func(*ToolProbe)

// WithLogger sets a custom logger for the ToolProbe instance.
func WithLogger(logger *slog.Logger) Option {
	return func(p *ToolProbe) {
		p.logger = logger
	}
}

// WithLogHandler sets a custom log handler for the ToolProbe instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(p *ToolProbe) {
		p.logger = slog.New(handler)
	}
}

// WithConstraint requires the reported version to satisfy c.
func WithConstraint(c *semver.Constraints) Option {
	return func(p *ToolProbe) {
		p.constraint = c
	}
}

// WithTimeout bounds each version check.
func WithTimeout(d time.Duration) Option {
	return func(p *ToolProbe) {
		if d > 0 {
			p.timeout = d
		}
	}
}
