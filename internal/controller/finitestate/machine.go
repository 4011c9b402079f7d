// Package finitestate tracks the build controller lifecycle.
//
// A run moves Idle -> Validating -> Running -> (Terminating ->) Idle.
// Validation failures return straight to Idle without ever starting a child.
package finitestate

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-fsm"
)

const (
	StatusIdle        = "Idle"
	StatusValidating  = "Validating"
	StatusRunning     = "Running"
	StatusTerminating = "Terminating"
)

// ControllerTransitions lists the legal moves between controller states.
var ControllerTransitions = map[string][]string{
	StatusIdle:        {StatusValidating},
	StatusValidating:  {StatusIdle, StatusRunning},
	StatusRunning:     {StatusTerminating, StatusIdle},
	StatusTerminating: {StatusIdle},
}

// Machine is the subset of fsm.Machine the controller relies on.
type Machine interface {
	// Transition attempts to transition the state machine to the specified state.
	Transition(state string) error

	// TransitionBool attempts to transition the state machine to the specified state.
	TransitionBool(state string) bool

	// TransitionIfCurrentState attempts to transition the state machine to the specified state
	TransitionIfCurrentState(currentState, newState string) error

	// GetState returns the current state of the state machine.
	GetState() string

	// GetStateChan returns a channel that emits the state machine's state whenever it changes.
	// The channel is closed when the provided context is canceled.
	GetStateChan(ctx context.Context) <-chan string
}

// New creates a controller state machine starting in Idle.
func New(handler slog.Handler) (Machine, error) {
	machine, err := fsm.New(handler, StatusIdle, ControllerTransitions)
	if err != nil {
		return nil, err
	}
	return machine, nil
}
