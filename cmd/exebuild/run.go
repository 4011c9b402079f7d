package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/atlanticdynamic/exebuild/cmd/exebuild/session"
	"github.com/atlanticdynamic/exebuild/internal/config"
	"github.com/atlanticdynamic/exebuild/internal/console"
	"github.com/atlanticdynamic/exebuild/internal/controller"
	"github.com/atlanticdynamic/exebuild/internal/fancy"
	"github.com/atlanticdynamic/exebuild/internal/history"
	"github.com/atlanticdynamic/exebuild/internal/logging"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/atlanticdynamic/exebuild/internal/probe"
	"github.com/atlanticdynamic/exebuild/internal/tui"
	"github.com/robbyt/go-supervisor/supervisor"
	"github.com/urfave/cli/v3"
)

// runEnv is the set of components one command invocation drives.
type runEnv struct {
	profile *config.Profile
	handler slog.Handler
	sink    *logsink.Sink
	prober  *probe.ToolProbe
	ctrl    *controller.Controller
	store   *history.Store
}

// newRunEnv wires the components for p. When handler is nil the default
// handler is used. extra options are applied after the profile's.
func newRunEnv(p *config.Profile, handler slog.Handler, withHistory bool, extra ...controller.Option) (*runEnv, error) {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	env := &runEnv{
		profile: p,
		handler: handler,
		sink:    logsink.New(),
		prober:  probe.NewToolProbe(p.Launcher(), append(p.ProbeOptions(), probe.WithLogHandler(handler))...),
	}

	opts := []controller.Option{
		controller.WithLogHandler(handler),
		controller.WithBuilder(p.Builder()),
		controller.WithInstaller(p.Installer()),
	}
	if withHistory && p.HistoryEnabled() {
		path := p.History.Path
		if path == "" {
			path = history.DefaultPath()
		}
		store, err := history.Open(path, history.WithLogHandler(handler))
		if err != nil {
			slog.Warn("Session history disabled", "path", path, "error", err)
		} else {
			env.store = store
			opts = append(opts, controller.WithHistory(store))
		}
	}

	ctrl, err := controller.New(env.sink, env.prober, append(opts, extra...)...)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}
	env.ctrl = ctrl
	return env, nil
}

// Close prunes and closes the history store.
func (e *runEnv) Close() {
	if e.store == nil {
		return
	}
	if keep := e.profile.History.Keep; keep > 0 {
		if n, err := e.store.Prune(keep); err != nil {
			slog.Warn("Failed to prune session history", "error", err)
		} else if n > 0 {
			slog.Debug("Pruned session history", "removed", n)
		}
	}
	if err := e.store.Close(); err != nil {
		slog.Warn("Failed to close session history", "error", err)
	}
	e.store = nil
}

// run starts a session under a supervisor, follows it on the terminal and
// returns its terminal status. SIGINT and SIGTERM stop the child gracefully.
func (e *runEnv) run(ctx context.Context, cmd *cli.Command, start session.StartFunc) (logsink.Status, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner, err := session.New(e.ctrl, start, e.follower(cmd),
		session.WithLogHandler(e.handler),
		session.WithOnDone(cancel),
	)
	if err != nil {
		return logsink.Status{}, err
	}

	super, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(e.handler),
		supervisor.WithRunnables(runner),
	)
	if err != nil {
		return logsink.Status{}, fmt.Errorf("failed to create supervisor: %w", err)
	}
	runErr := super.Run()

	st, err := runner.Status()
	if err != nil {
		return logsink.Status{}, err
	}
	if runErr != nil {
		slog.Warn("Supervisor reported an error", "error", runErr)
	}

	if cmd.Bool("events") {
		e.printEvents(cmd, runner.Session())
	}
	return st, nil
}

func (e *runEnv) follower(cmd *cli.Command) session.FollowFunc {
	w := writerOf(cmd)
	interval := e.profile.DrainInterval()

	if cmd.Bool("tui") {
		return func(ctx context.Context, s *controller.Session) error {
			m, err := tui.Run(ctx, tui.New(e.ctrl, s, e.sink, interval), nil, nil)
			if st, ok := m.Status(); ok {
				fmt.Fprintln(w, fancy.StatusText(st))
			}
			return err
		}
	}

	r := console.New(w,
		console.WithInterval(interval),
		console.WithTimestamps(cmd.Bool("timestamps")),
	)
	return func(ctx context.Context, s *controller.Session) error {
		_, err := r.Follow(ctx, e.sink, s.ID.String())
		return err
	}
}

// printEvents replays the session's operational log at debug level.
func (e *runEnv) printEvents(cmd *cli.Command, s *controller.Session) {
	if s == nil {
		return
	}
	handler, err := logging.NewHandler("debug", cmd.String("log-format"), os.Stderr)
	if err != nil {
		slog.Warn("Cannot print session events", "error", err)
		return
	}
	if err := s.PlaybackLogs(handler); err != nil {
		slog.Warn("Failed to replay session events", "error", err)
	}
}
