package session

import (
	"log/slog"
	"time"
)

type Option func(*Runner)

// WithLogger sets a custom logger for the Runner instance.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithLogHandler sets a custom log handler for the Runner instance.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Runner) {
		r.logger = slog.New(handler)
	}
}

// WithGrace sets how long the follower may run after a stopped session finished.
func WithGrace(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.grace = d
		}
	}
}

// WithOnDone registers fn to be called when Run returns. The command uses
// it to cancel the supervisor's context.
func WithOnDone(fn func()) Option {
	return func(r *Runner) {
		if fn != nil {
			r.onDone = fn
		}
	}
}
