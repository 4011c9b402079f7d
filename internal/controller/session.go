package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/build"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/atlanticdynamic/exebuild/internal/runner"
	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"
	"github.com/robbyt/go-loglater/storage"
)

// SessionKind tells build sessions from install sessions.
type SessionKind string

const (
	KindBuild   SessionKind = "build"
	KindInstall SessionKind = "install"
)

// Session is one build or install attempt, from Start to its terminal status.
type Session struct {
	// ID is the unique identifier for this session
	ID        uuid.UUID
	Kind      SessionKind
	Config    build.Config
	Command   build.CommandLine
	Warnings  []string
	StartedAt time.Time

	token *runner.Token
	done  chan struct{}

	// Logging with history tracking
	logger       *slog.Logger
	logCollector *loglater.LogCollector

	mu         sync.Mutex
	status     *logsink.Status
	finishedAt time.Time
}

func newSession(kind SessionKind, cfg build.Config, handler slog.Handler) *Session {
	id := uuid.Must(uuid.NewV6())
	logCollector := loglater.NewLogCollector(handler)

	s := &Session{
		ID:           id,
		Kind:         kind,
		Config:       cfg,
		StartedAt:    time.Now(),
		token:        runner.NewToken(),
		done:         make(chan struct{}),
		logCollector: logCollector,
		logger:       slog.New(logCollector).With("id", id, "kind", kind),
	}
	s.logger.Info("Session created", "script", cfg.ScriptPath)
	return s
}

// Done is closed once the terminal status has been pushed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Status returns the terminal status, and false while the session is still running.
func (s *Session) Status() (logsink.Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == nil {
		return logsink.Status{}, false
	}
	return *s.status, true
}

// FinishedAt is zero until the session has finished.
func (s *Session) FinishedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedAt
}

// Duration is the wall time of a finished session, or the elapsed time so far.
func (s *Session) Duration() time.Duration {
	if end := s.FinishedAt(); !end.IsZero() {
		return end.Sub(s.StartedAt)
	}
	return time.Since(s.StartedAt)
}

// CancelRequested reports whether Cancel was called for this session.
func (s *Session) CancelRequested() bool {
	return s.token.Requested()
}

// withToken derives a context that also ends when a cancel is requested.
func (s *Session) withToken(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-s.token.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// PlaybackLogs replays the session's event log into handler.
func (s *Session) PlaybackLogs(handler slog.Handler) error {
	return s.logCollector.PlayLogs(handler)
}

// Events returns the recorded session events.
func (s *Session) Events() []storage.Record {
	return s.logCollector.GetLogs()
}

func (s *Session) String() string {
	return fmt.Sprintf("%s session %s", s.Kind, s.ID)
}

// finished reports whether the terminal status has been set.
func (s *Session) finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status != nil
}

// complete records st and returns false when a status was already set.
func (s *Session) complete(st logsink.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != nil {
		return false
	}
	s.status = &st
	s.finishedAt = time.Now()
	return true
}

// sessionPusher stamps every line with the session ID.
type sessionPusher struct {
	id   string
	next logsink.Pusher
}

func (p sessionPusher) Push(line logsink.Line) {
	if line.SessionID == "" {
		line.SessionID = p.id
	}
	p.next.Push(line)
}
