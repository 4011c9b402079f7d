// Package logsink decouples the goroutine reading a child process from
// whatever displays its output. Producers push lines without ever
// blocking; a single consumer drains them on its own cadence.
package logsink

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is the consumer drain cadence.
const DefaultPollInterval = 60 * time.Millisecond

// Pusher is the producer side of a Sink.
type Pusher interface {
	Push(line Line)
}

// Drainer is the consumer side of a Sink.
type Drainer interface {
	Drain() []Line
}

var (
	_ Pusher  = (*Sink)(nil)
	_ Drainer = (*Sink)(nil)
)

// Sink is an unbounded FIFO of Lines, safe for concurrent Push and Drain.
type Sink struct {
	mu    sync.Mutex
	queue []Line
	seq   uint64
	now   func() time.Time
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{now: time.Now}
}

// Push appends line. It never blocks on the consumer and never fails.
func (s *Sink) Push(line Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	line.Seq = s.seq
	if line.Time.IsZero() {
		line.Time = s.now()
	}
	s.queue = append(s.queue, line)
}

// Drain removes and returns every queued line in arrival order. It
// returns nil when nothing is queued.
func (s *Sink) Drain() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil
	}
	out := s.queue
	s.queue = nil
	return out
}

// Len returns the number of queued lines.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Poll drains d every interval and hands non-empty batches to fn until
// ctx is done or fn returns false. A last drain runs before returning
// so nothing pushed before cancellation is lost.
func Poll(ctx context.Context, d Drainer, interval time.Duration, fn func([]Line) bool) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if batch := d.Drain(); len(batch) > 0 {
				fn(batch)
			}
			return
		case <-ticker.C:
			batch := d.Drain()
			if len(batch) == 0 {
				continue
			}
			if !fn(batch) {
				return
			}
		}
	}
}
