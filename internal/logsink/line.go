package logsink

import (
	"fmt"
	"time"
)

// Kind classifies a Line for display.
type Kind int

const (
	// KindOutput is one line of the child's merged stdout/stderr.
	KindOutput Kind = iota
	// KindInfo is a progress message from the controller.
	KindInfo
	// KindWarning is a non-fatal problem, e.g. an unusable icon.
	KindWarning
	// KindError is a failure message that precedes a terminal status.
	KindError
	// KindStatus carries the single terminal status of a session.
	KindStatus
)

func (k Kind) String() string {
	switch k {
	case KindOutput:
		return "output"
	case KindInfo:
		return "info"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	case KindStatus:
		return "status"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StatusKind is the terminal classification of a session.
type StatusKind string

const (
	StatusSuccess      StatusKind = "success"
	StatusFailure      StatusKind = "failure"
	StatusCancelled    StatusKind = "cancelled"
	StatusPrecondition StatusKind = "precondition_error"
	StatusToolMissing  StatusKind = "tool_missing"
	StatusLaunchFailed StatusKind = "launch_failed"
)

// Status is the final event of a session.
type Status struct {
	Kind StatusKind
	// ExitCode is the child's exit code for Success and Failure, -1 otherwise.
	ExitCode int
	Message  string
}

// IsError reports whether the status represents something the user has to fix.
func (s Status) IsError() bool {
	return s.Kind != StatusSuccess && s.Kind != StatusCancelled
}

func (s Status) String() string {
	if s.Kind == StatusFailure {
		return fmt.Sprintf("%s (code %d): %s", s.Kind, s.ExitCode, s.Message)
	}
	return fmt.Sprintf("%s: %s", s.Kind, s.Message)
}

// Line is one unit of streamed text.
type Line struct {
	// Seq is assigned by the Sink and increases by one per push.
	Seq       uint64
	Time      time.Time
	SessionID string
	Kind      Kind
	Text      string

	// Status is set only for KindStatus lines.
	Status *Status
}

// Output builds a KindOutput line.
func Output(sessionID, text string) Line {
	return Line{SessionID: sessionID, Kind: KindOutput, Text: text}
}

// Info builds a KindInfo line.
func Info(sessionID, text string) Line {
	return Line{SessionID: sessionID, Kind: KindInfo, Text: text}
}

// Warning builds a KindWarning line.
func Warning(sessionID, text string) Line {
	return Line{SessionID: sessionID, Kind: KindWarning, Text: text}
}

// Error builds a KindError line.
func Error(sessionID, text string) Line {
	return Line{SessionID: sessionID, Kind: KindError, Text: text}
}

// Terminal builds the KindStatus line for st.
func Terminal(sessionID string, st Status) Line {
	return Line{SessionID: sessionID, Kind: KindStatus, Text: st.Message, Status: &st}
}
