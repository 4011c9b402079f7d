// Package console prints a session's log lines to a terminal, draining
// the sink on a fixed cadence until the session's terminal status arrives.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/fancy"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
)

// ErrNoStatus is returned when following stops before the terminal status arrived.
var ErrNoStatus = errors.New("session ended without a terminal status")

// Renderer writes log lines to an io.Writer.
type Renderer struct {
	out        io.Writer
	interval   time.Duration
	timestamps bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithInterval sets how often the sink is drained.
func WithInterval(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithTimestamps prefixes every line with its arrival time.
func WithTimestamps(on bool) Option {
	return func(r *Renderer) {
		r.timestamps = on
	}
}

// New creates a Renderer writing to out.
func New(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:      out,
		interval: logsink.DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes a single line.
func (r *Renderer) Render(line logsink.Line) {
	text := fancy.LineText(line)
	if line.Kind == logsink.KindInfo && strings.HasPrefix(line.Text, "Command:") {
		head, cmd, _ := strings.Cut(line.Text, "\n")
		text = fancy.KindStyle(logsink.KindInfo).Render(head)
		if cmd != "" {
			text += "\n" + fancy.CommandText(cmd)
		}
	}
	if line.Kind == logsink.KindStatus {
		text = "\n" + text
	}
	if r.timestamps && line.Kind != logsink.KindStatus {
		text = fancy.PathText(line.Time.Format(time.TimeOnly)) + " " + text
	}
	_, _ = fmt.Fprintln(r.out, text)
}

// Follow renders lines from d until the terminal status of sessionID has
// been printed, and returns that status. Lines of other sessions are
// printed as they come. If ctx ends first, whatever was already queued is
// printed and ErrNoStatus is returned.
func (r *Renderer) Follow(ctx context.Context, d logsink.Drainer, sessionID string) (logsink.Status, error) {
	var (
		final logsink.Status
		found bool
	)

	logsink.Poll(ctx, d, r.interval, func(batch []logsink.Line) bool {
		for _, line := range batch {
			r.Render(line)
			if line.Kind == logsink.KindStatus && line.SessionID == sessionID && line.Status != nil {
				final = *line.Status
				found = true
			}
		}
		return !found
	})

	if !found {
		return logsink.Status{}, fmt.Errorf("%w: %w", ErrNoStatus, context.Cause(ctx))
	}
	return final, nil
}
