package main

import (
	"github.com/atlanticdynamic/exebuild/internal/logsink"
	"github.com/urfave/cli/v3"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitCancelled = 130
)

// exitCode maps a terminal status to the process exit code.
func exitCode(st logsink.Status) int {
	switch st.Kind {
	case logsink.StatusSuccess:
		return exitOK
	case logsink.StatusFailure:
		if st.ExitCode > 0 {
			return st.ExitCode
		}
		return exitFailure
	case logsink.StatusCancelled:
		return exitCancelled
	default:
		return exitUsage
	}
}

// statusErr turns a terminal status into the command's error. The status
// has already been printed, so the exit error carries no message.
func statusErr(st logsink.Status) error {
	code := exitCode(st)
	if code == exitOK {
		return nil
	}
	return cli.Exit("", code)
}
