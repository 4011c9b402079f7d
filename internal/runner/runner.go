// Package runner executes one child process at a time, streaming its
// merged stdout and stderr line by line into a log sink and honoring
// cooperative cancellation with a graceful terminate.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/build"
	"github.com/atlanticdynamic/exebuild/internal/logsink"
)

// DefaultDrainGrace is how long output is still read after the child exits.
const DefaultDrainGrace = 2 * time.Second

// MaxLineLength caps a single pushed line. Longer output without a newline
// is split into consecutive lines of at most this many bytes.
const MaxLineLength = 64 * 1024

// Runner spawns child processes. It is safe to share, but the
// controller only ever has one Run in flight.
type Runner struct {
	logger     *slog.Logger
	drainGrace time.Duration
	dir        string
	env        []string

	mu     sync.Mutex
	active *execution
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger:     slog.Default().WithGroup("runner.Runner"),
		drainGrace: DefaultDrainGrace,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// execution owns the process handle for the duration of one Run.
type execution struct {
	proc   *os.Process
	logger *slog.Logger
	once   sync.Once
}

// terminate signals the process at most once.
func (e *execution) terminate() {
	e.once.Do(func() {
		e.logger.Info("Terminating child process", "pid", e.proc.Pid)
		if err := terminate(e.proc); err != nil && !errors.Is(err, os.ErrProcessDone) {
			e.logger.Warn("Failed to signal child process", "pid", e.proc.Pid, "error", err)
		}
	})
}

// Active reports whether a child process is currently owned by the runner.
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// PID returns the pid of the running child, or 0.
func (r *Runner) PID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return 0
	}
	return r.active.proc.Pid
}

func (r *Runner) setActive(e *execution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = e
}

// Run executes cmd, pushing each line of output to sink as it arrives.
// Cancelling ctx has the same effect as requesting token. Run never
// returns an error; failures are folded into the Outcome and reported
// to the sink.
func (r *Runner) Run(
	ctx context.Context,
	cmd build.CommandLine,
	sink logsink.Pusher,
	token CancelToken,
) Outcome {
	if token == nil {
		token = NewToken()
	}
	if cmd.IsEmpty() {
		return r.launchFailed(sink, cmd, fmt.Errorf("%w: empty command line", ErrLaunch))
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return r.launchFailed(sink, cmd, fmt.Errorf("%w: %w", ErrLaunch, err))
	}

	child := exec.Command(cmd.Name(), cmd.Args()...)
	child.Stdout = pw
	child.Stderr = pw
	child.Dir = r.dir
	if len(r.env) > 0 {
		child.Env = append(os.Environ(), r.env...)
	}

	if err := child.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return r.launchFailed(sink, cmd, fmt.Errorf("%w: %w", ErrLaunch, err))
	}
	// the child holds its own copy of the write end
	_ = pw.Close()

	exe := &execution{proc: child.Process, logger: r.logger}
	r.setActive(exe)
	defer r.setActive(nil)

	r.logger.Debug("Child process started", "pid", child.Process.Pid, "cmd", cmd.Preview)

	readDone := make(chan error, 1)
	go func() {
		readDone <- r.pump(pr, sink, token, exe)
	}()

	watchDone := make(chan struct{})
	go func() {
		select {
		case <-token.Done():
			exe.terminate()
		case <-ctx.Done():
			exe.terminate()
		case <-watchDone:
		}
	}()

	waitErr := child.Wait()
	close(watchDone)

	select {
	case err := <-readDone:
		if err != nil {
			r.logger.Warn("Error reading child output", "error", err)
		}
	case <-time.After(r.drainGrace):
		r.logger.Warn("Output pipe still open after child exit, closing it", "grace", r.drainGrace)
		_ = pr.Close()
		<-readDone
	}
	_ = pr.Close()

	code := exitCode(waitErr)
	r.logger.Debug("Child process exited", "pid", child.Process.Pid, "code", code)

	if token.Requested() || ctx.Err() != nil {
		return Outcome{Kind: Cancelled, ExitCode: code}
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		waitErr = nil
	}
	return Outcome{Kind: Completed, ExitCode: code, Err: waitErr}
}

// pump reads rd until EOF, pushing each line. Before every read it checks
// the token so a chatty child is signalled promptly.
func (r *Runner) pump(rd io.Reader, sink logsink.Pusher, token CancelToken, exe *execution) error {
	br := bufio.NewReaderSize(rd, MaxLineLength)
	for {
		if token.Requested() {
			exe.terminate()
		}

		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			sink.Push(logsink.Output("", normalize(string(chunk))))
		}
		if err != nil {
			switch {
			case errors.Is(err, bufio.ErrBufferFull):
				continue
			case errors.Is(err, io.EOF), errors.Is(err, os.ErrClosed):
				return nil
			}
			return err
		}
	}
}

func (r *Runner) launchFailed(sink logsink.Pusher, cmd build.CommandLine, err error) Outcome {
	r.logger.Error("Could not launch child process", "cmd", cmd.Preview, "error", err)

	msg := fmt.Sprintf("could not run %s: %v", cmd.Name(), err)
	if errors.Is(err, exec.ErrNotFound) {
		msg = fmt.Sprintf("executable %q not found; check that Python and PyInstaller are installed", cmd.Name())
	}
	sink.Push(logsink.Error("", msg))

	return Outcome{Kind: LaunchFailed, ExitCode: -1, Err: err}
}

func normalize(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return strings.ToValidUTF8(line, "�")
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
