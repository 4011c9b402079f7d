package runner

import (
	"errors"
	"fmt"
)

// ErrLaunch wraps every failure to start the child process.
var ErrLaunch = errors.New("failed to launch process")

// OutcomeKind is how a run ended.
type OutcomeKind int

const (
	// Completed means the child exited on its own; see ExitCode.
	Completed OutcomeKind = iota
	// Cancelled means cancellation was requested before the run ended.
	Cancelled
	// LaunchFailed means no child process was ever started.
	LaunchFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case LaunchFailed:
		return "launch_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of Runner.Run.
type Outcome struct {
	Kind OutcomeKind
	// ExitCode is the child's exit status, or -1 when it was not started
	// or was ended by a signal.
	ExitCode int
	// Err holds the launch error for LaunchFailed and any wait error otherwise.
	Err error
}

// Success reports whether the child completed with exit code 0.
func (o Outcome) Success() bool {
	return o.Kind == Completed && o.ExitCode == 0
}
