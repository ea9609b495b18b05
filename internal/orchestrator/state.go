package orchestrator

import (
	"errors"
	"fmt"

	"github.com/temirov/lasso/internal/execshell"
)

const invalidTransitionErrorTemplateConstant = "%w: %s -> %s"

// ErrInvalidTransition indicates an attempt to leave a terminal state or skip the running state.
var ErrInvalidTransition = errors.New("invalid task state transition")

// TaskState is the lifecycle position of one report entry.
type TaskState string

// Task states. Unresolved entries never enter the lifecycle.
const (
	StateUnresolved  TaskState = "unresolved"
	StatePending     TaskState = "pending"
	StateRunning     TaskState = "running"
	StateCompleted   TaskState = "completed"
	StateSpawnFailed TaskState = "spawn_failed"
	StateTimedOut    TaskState = "timed_out"
	StateCancelled   TaskState = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (state TaskState) Terminal() bool {
	switch state {
	case StateUnresolved, StateCompleted, StateSpawnFailed, StateTimedOut, StateCancelled:
		return true
	default:
		return false
	}
}

// transition moves a task to next. Pending may only move to Running or, when dispatch stopped, to Cancelled.
// Running may only move to a terminal state.
func (state TaskState) transition(next TaskState) (TaskState, error) {
	switch state {
	case StatePending:
		if next == StateRunning || next == StateCancelled {
			return next, nil
		}
	case StateRunning:
		if next.Terminal() && next != StateUnresolved {
			return next, nil
		}
	}
	return state, fmt.Errorf(invalidTransitionErrorTemplateConstant, ErrInvalidTransition, state, next)
}

func stateForOutcome(kind execshell.OutcomeKind) TaskState {
	switch kind {
	case execshell.OutcomeCompleted:
		return StateCompleted
	case execshell.OutcomeSpawnFailed:
		return StateSpawnFailed
	case execshell.OutcomeTimedOut:
		return StateTimedOut
	default:
		return StateCancelled
	}
}
