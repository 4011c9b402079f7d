// Package controller owns the lifecycle of build and install sessions. It
// allows one run at a time, turns every outcome into exactly one terminal
// status line, and exposes the predicates a front end needs to enable or
// disable its start and stop actions.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/atlanticdynamic/exebuild/internal/build"
	"github.com/atlanticdynamic/exebuild/internal/controller/finitestate"
	"github.com/atlanticdynamic/exebuild/internal/history"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/atlanticdynamic/exebuild/internal/probe"
	"github.com/atlanticdynamic/exebuild/internal/runner"
)

const (
	msgStarted         = "Compilation started..."
	msgInstalling      = "Installing PyInstaller..."
	msgCancelled       = "Process stopped by user."
	msgAlreadyInstalls = "PyInstaller is already installed."
	msgInstalled       = "PyInstaller installed successfully."
	msgUnverified      = "Installation finished but PyInstaller could not be verified."
)

// ProcessRunner runs one command to completion.
type ProcessRunner interface {
	Run(ctx context.Context, cmd build.CommandLine, sink logsink.Pusher, token runner.CancelToken) runner.Outcome
}

// HistoryRecorder persists finished sessions.
type HistoryRecorder interface {
	Record(rec history.Record) error
}

// Controller coordinates the builder, prober and runner for one session at a time.
type Controller struct {
	logger    *slog.Logger
	handler   slog.Handler
	fsm       finitestate.Machine
	builder   build.Builder
	runner    ProcessRunner
	prober    probe.Prober
	installer probe.Installer
	history   HistoryRecorder
	sink      logsink.Pusher

	// mu serializes session hand-off: a session's terminal status is
	// pushed before the next Start can move the machine out of Idle.
	mu      sync.Mutex
	current *Session
	wg      sync.WaitGroup
}

// New creates a Controller that reports to sink and checks tool presence with prober.
func New(sink logsink.Pusher, prober probe.Prober, opts ...Option) (*Controller, error) {
	if sink == nil {
		return nil, ErrNilSink
	}
	if prober == nil {
		prober = probe.NewToolProbe(build.DefaultLauncher(build.DefaultInterpreter()))
	}

	logger := slog.Default().WithGroup("controller.Controller")
	c := &Controller{
		logger:    logger,
		handler:   logger.Handler(),
		builder:   build.DefaultBuilder(),
		prober:    prober,
		installer: probe.NewInstaller(build.DefaultInterpreter()),
		sink:      sink,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = runner.New(runner.WithLogHandler(c.handler))
	}

	machine, err := finitestate.New(c.handler)
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	c.fsm = machine
	return c, nil
}

func (c *Controller) String() string {
	return "controller.Controller"
}

// State returns the current lifecycle state.
func (c *Controller) State() string {
	return c.fsm.GetState()
}

// StateChan emits the lifecycle state whenever it changes.
func (c *Controller) StateChan(ctx context.Context) <-chan string {
	return c.fsm.GetStateChan(ctx)
}

// CanStart reports whether Start or Install would be accepted.
func (c *Controller) CanStart() bool {
	return c.fsm.GetState() == finitestate.StatusIdle
}

// CanCancel reports whether there is a running session to cancel.
func (c *Controller) CanCancel() bool {
	return c.fsm.GetState() == finitestate.StatusRunning
}

// Current returns the active session, or the most recent one once it has finished.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Wait blocks until every background run has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Start begins a build of cfg. It only returns an error when another run
// is active; precondition failures, a missing tool and launch failures are
// reported as the session's terminal status. The script is checked before
// Start returns; the tool check and the build itself run in the background.
// ctx bounds the whole run; cancelling it stops the session like Cancel does.
func (c *Controller) Start(ctx context.Context, cfg build.Config) (*Session, error) {
	s, err := c.begin(KindBuild, cfg)
	if err != nil {
		return nil, err
	}
	out := sessionPusher{id: s.ID.String(), next: c.sink}

	if err := cfg.Validate(); err != nil {
		s.logger.Warn("Build configuration rejected", "error", err)
		out.Push(logsink.Error("", "Pick a valid .py file: "+err.Error()))
		c.finish(s, logsink.Status{Kind: logsink.StatusPrecondition, ExitCode: -1, Message: err.Error()})
		return s, nil
	}

	c.spawn(func() {
		if !c.probeTool(ctx, s) {
			c.toolMissing(ctx, s, out)
			return
		}

		cmd, warnings := c.builder.Build(cfg)
		s.Command = cmd
		s.Warnings = warnings
		for _, w := range warnings {
			s.logger.Warn(w)
			out.Push(logsink.Warning("", w))
		}

		c.execute(ctx, s, func(ctx context.Context) logsink.Status {
			out.Push(logsink.Info("", msgStarted))
			out.Push(logsink.Info("", "Command:\n  "+cmd.Preview))
			st := c.classify(c.runner.Run(ctx, cmd, out, s.token))
			if st.Kind == logsink.StatusSuccess && !cancelRequested(ctx, s) {
				out.Push(logsink.Info("", fmt.Sprintf("Done. Your executable should be in %q.", distDir(cfg))))
			}
			return st
		})
	})
	return s, nil
}

// Install installs the packaging tool through the same runner and sink
// used for builds, then verifies the result with the prober.
func (c *Controller) Install(ctx context.Context) (*Session, error) {
	s, err := c.begin(KindInstall, build.Config{})
	if err != nil {
		return nil, err
	}
	out := sessionPusher{id: s.ID.String(), next: c.sink}
	s.Command = c.installer.Command()

	c.spawn(func() {
		if c.probeTool(ctx, s) {
			s.logger.Info("Packaging tool already present")
			c.finish(s, logsink.Status{Kind: logsink.StatusSuccess, Message: msgAlreadyInstalls})
			return
		}

		c.execute(ctx, s, func(ctx context.Context) logsink.Status {
			out.Push(logsink.Info("", msgInstalling))
			out.Push(logsink.Info("", "Command:\n  "+s.Command.Preview))
			st := c.classify(c.runner.Run(ctx, s.Command, out, s.token))
			if st.Kind != logsink.StatusSuccess {
				return st
			}
			if !c.probeTool(ctx, s) {
				return logsink.Status{Kind: logsink.StatusFailure, ExitCode: st.ExitCode, Message: msgUnverified}
			}
			return logsink.Status{Kind: logsink.StatusSuccess, ExitCode: st.ExitCode, Message: msgInstalled}
		})
	})
	return s, nil
}

// Cancel asks the running child of s to stop. Calling it again for the
// same session is a no-op.
func (c *Controller) Cancel(s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.finished() {
		return ErrNoActiveRun
	}
	if s != c.current {
		return ErrSessionMismatch
	}

	if !s.token.Requested() {
		s.logger.Info("Cancel requested")
	}
	s.token.Request()
	if c.fsm.GetState() == finitestate.StatusRunning {
		if err := c.fsm.TransitionIfCurrentState(finitestate.StatusRunning, finitestate.StatusTerminating); err != nil {
			c.logger.Debug("Terminating transition skipped", "error", err)
		}
	}
	return nil
}

// begin claims the controller for a new session.
func (c *Controller) begin(kind SessionKind, cfg build.Config) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fsm.TransitionIfCurrentState(finitestate.StatusIdle, finitestate.StatusValidating); err != nil {
		return nil, fmt.Errorf("%w: state is %s", ErrRunActive, c.fsm.GetState())
	}
	s := newSession(kind, cfg, c.handler)
	c.current = s
	return s, nil
}

// spawn runs fn on its own goroutine, tracked by Wait.
func (c *Controller) spawn(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// probeTool asks the prober whether the tool runs. The check is abandoned
// as soon as the session is cancelled.
func (c *Controller) probeTool(ctx context.Context, s *Session) bool {
	ctx, cancel := s.withToken(ctx)
	defer cancel()
	return c.prober.IsAvailable(ctx)
}

// toolMissing finishes s after a failed tool check, which counts as a
// cancellation when one was requested while the check ran.
func (c *Controller) toolMissing(ctx context.Context, s *Session, out logsink.Pusher) {
	if cancelRequested(ctx, s) {
		c.finish(s, cancelledStatus())
		return
	}
	s.logger.Warn("Packaging tool not found")
	hint := c.installer.Hint()
	out.Push(logsink.Error("", hint))
	c.finish(s, logsink.Status{Kind: logsink.StatusToolMissing, ExitCode: -1, Message: hint})
}

// execute moves to Running, calls run and finishes s with its status. A
// cancel request seen at any point before the status is set wins over the
// result of run, except for a launch failure.
func (c *Controller) execute(ctx context.Context, s *Session, run func(context.Context) logsink.Status) {
	c.mu.Lock()
	if cancelRequested(ctx, s) {
		c.finishLocked(s, cancelledStatus())
		c.mu.Unlock()
		return
	}
	if err := c.fsm.Transition(finitestate.StatusRunning); err != nil {
		c.logger.Error("Failed to enter running state", "error", err)
		st := logsink.Status{Kind: logsink.StatusLaunchFailed, ExitCode: -1, Message: err.Error()}
		c.finishLocked(s, st)
		c.mu.Unlock()
		return
	}
	s.logger.Info("Session running", "cmd", s.Command.Preview)
	c.mu.Unlock()

	st := run(ctx)
	if st.Kind != logsink.StatusLaunchFailed && st.Kind != logsink.StatusCancelled && cancelRequested(ctx, s) {
		s.logger.Info("Cancel arrived after the child finished", "status", string(st.Kind))
		st = cancelledStatus()
	}
	c.finish(s, st)
}

func (c *Controller) finish(s *Session, st logsink.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishLocked(s, st)
}

// finishLocked returns the machine to Idle and pushes the terminal status
// line. c.mu must be held.
func (c *Controller) finishLocked(s *Session, st logsink.Status) {
	if !s.complete(st) {
		return
	}

	if c.fsm.GetState() != finitestate.StatusIdle {
		if err := c.fsm.Transition(finitestate.StatusIdle); err != nil {
			c.logger.Error("Failed to return to idle state", "error", err)
		}
	}

	s.logger.Info("Session finished", "status", string(st.Kind), "exitCode", st.ExitCode, "duration", s.Duration())
	c.sink.Push(logsink.Terminal(s.ID.String(), st))

	if c.history != nil {
		if err := c.history.Record(recordOf(s, st)); err != nil {
			c.logger.Warn("Failed to record session history", "id", s.ID, "error", err)
		}
	}
	close(s.done)
}

// classify maps a runner outcome onto a terminal status.
func (c *Controller) classify(out runner.Outcome) logsink.Status {
	switch out.Kind {
	case runner.Cancelled:
		return cancelledStatus()
	case runner.LaunchFailed:
		msg := "could not start the process"
		if out.Err != nil {
			msg = out.Err.Error()
		}
		return logsink.Status{Kind: logsink.StatusLaunchFailed, ExitCode: -1, Message: msg}
	}

	if out.Err != nil {
		return logsink.Status{Kind: logsink.StatusFailure, ExitCode: out.ExitCode, Message: out.Err.Error()}
	}
	if out.ExitCode != 0 {
		return logsink.Status{
			Kind:     logsink.StatusFailure,
			ExitCode: out.ExitCode,
			Message:  fmt.Sprintf("Finished with error (code %d). Check the log above.", out.ExitCode),
		}
	}
	return logsink.Status{Kind: logsink.StatusSuccess, Message: "Build finished."}
}

func cancelRequested(ctx context.Context, s *Session) bool {
	return s.token.Requested() || ctx.Err() != nil
}

func cancelledStatus() logsink.Status {
	return logsink.Status{Kind: logsink.StatusCancelled, ExitCode: -1, Message: msgCancelled}
}

func distDir(cfg build.Config) string {
	if cfg.OutputDir != "" {
		return cfg.OutputDir
	}
	return "dist"
}

func recordOf(s *Session, st logsink.Status) history.Record {
	return history.Record{
		ID:         s.ID.String(),
		Kind:       string(s.Kind),
		Script:     s.Config.ScriptPath,
		Command:    s.Command.Preview,
		Warnings:   s.Warnings,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt(),
		Status:     st.Kind,
		ExitCode:   st.ExitCode,
		Message:    st.Message,
	}
}
