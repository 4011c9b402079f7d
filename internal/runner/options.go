package runner

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

// WithDrainGrace bounds how long the runner keeps reading after the
// child has exited, for pipes held open by grandchildren.
func WithDrainGrace(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.drainGrace = d
		}
	}
}

// WithDir sets the working directory of spawned processes.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}
