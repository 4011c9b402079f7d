// Package session wraps one controller session as a supervisor runnable,
// so process signals stop the child gracefully and the command returns
// only after the session's terminal status was shown.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/controller"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/robbyt/go-fsm"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable  = (*Runner)(nil)
	_ supervisor.Stateable = (*Runner)(nil)
)

// DefaultGrace bounds how long the follower may keep running after a
// stopped session has finished.
const DefaultGrace = 500 * time.Millisecond

// ErrNotStarted is returned by Status before a session has finished.
var ErrNotStarted = errors.New("session has not finished")

// Canceller is the part of the controller the runnable needs to stop a session.
type Canceller interface {
	Cancel(s *controller.Session) error
}

// StartFunc begins a session. The context bounds the whole run.
type StartFunc func(ctx context.Context) (*controller.Session, error)

// FollowFunc shows a session's lines until its terminal status has been
// shown, the user leaves, or ctx ends.
type FollowFunc func(ctx context.Context, s *controller.Session) error

type Runner struct {
	ctrl   Canceller
	start  StartFunc
	follow FollowFunc
	grace  time.Duration
	onDone func()

	logger *slog.Logger
	fsm    *fsm.Machine

	mu        sync.Mutex
	session   *controller.Session
	runCancel context.CancelFunc
	stopping  bool
	err       error
}

// New creates a Runner that starts a session with start and shows it with follow.
func New(ctrl Canceller, start StartFunc, follow FollowFunc, opts ...Option) (*Runner, error) {
	if ctrl == nil || start == nil || follow == nil {
		return nil, errors.New("session runner requires a controller, a start and a follow function")
	}
	r := &Runner{
		ctrl:   ctrl,
		start:  start,
		follow: follow,
		grace:  DefaultGrace,
		onDone: func() {},
		logger: slog.Default().WithGroup("session.Runner"),
	}
	for _, opt := range opts {
		opt(r)
	}

	machine, err := fsm.New(r.logger.WithGroup("fsm").Handler(), fsm.StatusNew, fsm.TypicalTransitions)
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	r.fsm = machine
	return r, nil
}

// String implements the supervisor.Runnable interface
func (r *Runner) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return "session.Runner"
	}
	return fmt.Sprintf("session.Runner(%s)", r.session.ID)
}

// Run implements the supervisor.Runnable interface. It returns once the
// session finished and the follower returned.
func (r *Runner) Run(ctx context.Context) error {
	defer r.onDone()

	if err := r.fsm.Transition(fsm.StatusBooting); err != nil {
		return fmt.Errorf("failed to transition to booting state: %w", err)
	}

	r.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	r.runCancel = cancel
	if r.stopping {
		cancel()
	}
	r.mu.Unlock()
	defer cancel()

	s, err := r.start(runCtx)
	if err != nil {
		r.setErr(err)
		r.fsm.TransitionBool(fsm.StatusError)
		return fmt.Errorf("failed to start session: %w", err)
	}

	r.mu.Lock()
	r.session = s
	r.mu.Unlock()
	if !r.fsm.TransitionBool(fsm.StatusRunning) {
		r.logger.Debug("Session started while stopping", "session", s.ID)
	}

	if err := r.followUntilDone(ctx, s); err != nil {
		r.logger.Warn("Follower ended with an error", "error", err)
	}

	if r.fsm.GetState() != fsm.StatusStopping {
		r.fsm.TransitionBool(fsm.StatusStopping)
	}
	if err := r.fsm.Transition(fsm.StatusStopped); err != nil {
		return fmt.Errorf("failed to transition to stopped state: %w", err)
	}
	return nil
}

// followUntilDone runs the follower and waits for the session to finish.
// A follower that leaves early cancels the session; a stopped session
// gives the follower a grace period to show the terminal status.
func (r *Runner) followUntilDone(ctx context.Context, s *controller.Session) error {
	followCtx, cancelFollow := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelFollow()

	followErr := make(chan error, 1)
	go func() {
		followErr <- r.follow(followCtx, s)
	}()

	select {
	case err := <-followErr:
		if _, done := s.Status(); !done {
			r.logger.Debug("Follower left before the session finished")
			r.cancelSession(s)
			<-s.Done()
		}
		return err
	case <-s.Done():
	}

	if r.Stopping() {
		timer := time.AfterFunc(r.grace, cancelFollow)
		defer timer.Stop()
	}
	return <-followErr
}

func (r *Runner) cancelSession(s *controller.Session) {
	err := r.ctrl.Cancel(s)
	switch {
	case err == nil:
		r.logger.Info("Session cancel requested", "session", s.ID)
	case errors.Is(err, controller.ErrNoActiveRun):
	default:
		r.logger.Warn("Failed to cancel session", "session", s.ID, "error", err)
	}
}

// Stop implements the supervisor.Runnable interface. It requests a
// graceful cancel and does not wait; Run returns once the child is gone.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopping {
		r.mu.Unlock()
		return
	}
	r.stopping = true
	s := r.session
	cancel := r.runCancel
	r.mu.Unlock()

	r.logger.Debug("Stopping Runner")
	r.fsm.TransitionBool(fsm.StatusStopping)

	switch {
	case s != nil:
		r.cancelSession(s)
	case cancel != nil:
		cancel()
	}
}

// Stopping reports whether Stop was called.
func (r *Runner) Stopping() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopping
}

// Session returns the started session, or nil.
func (r *Runner) Session() *controller.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Status returns the terminal status of the finished session. When the
// session could not be started it returns the start error.
func (r *Runner) Status() (logsink.Status, error) {
	r.mu.Lock()
	s, err := r.session, r.err
	r.mu.Unlock()

	if err != nil {
		return logsink.Status{}, err
	}
	if s == nil {
		return logsink.Status{}, ErrNotStarted
	}
	st, ok := s.Status()
	if !ok {
		return logsink.Status{}, ErrNotStarted
	}
	return st, nil
}

func (r *Runner) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
