package controller

import "errors"

var (
	// ErrRunActive is returned by Start and Install while another session is in flight.
	ErrRunActive = errors.New("a run is already active")

	// ErrNoActiveRun is returned by Cancel when nothing is running.
	ErrNoActiveRun = errors.New("no active run")

	// ErrSessionMismatch is returned by Cancel for a session that is not the active one.
	ErrSessionMismatch = errors.New("session is not the active run")

	ErrNilSink = errors.New("log sink is nil")
)
