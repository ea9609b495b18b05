package execshell

import (
	"fmt"
	"time"
)

const (
	outcomeCompletedDescriptionTemplateConstant   = "exit %d"
	outcomeSpawnFailedDescriptionTemplateConstant = "spawn failed: %s"
	outcomeTimedOutDescriptionConstant            = "timed out"
	outcomeCancelledDescriptionConstant           = "cancelled"
	outcomeUnknownDescriptionConstant             = "unknown"
)

// OutcomeKind enumerates the terminal results of a single task.
type OutcomeKind string

// Supported outcome kinds.
const (
	OutcomeCompleted   OutcomeKind = "completed"
	OutcomeSpawnFailed OutcomeKind = "spawn_failed"
	OutcomeTimedOut    OutcomeKind = "timed_out"
	OutcomeCancelled   OutcomeKind = "cancelled"
)

// TaskOutcome is the terminal result of running one command in one repository.
// Only Completed outcomes carry an exit code and captured output; SpawnFailed carries a reason.
type TaskOutcome struct {
	Kind     OutcomeKind
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	Reason   string
}

// CompletedOutcome records a process that ran to exit.
func CompletedOutcome(result ExecutionResult, duration time.Duration) TaskOutcome {
	return TaskOutcome{
		Kind:     OutcomeCompleted,
		ExitCode: result.ExitCode,
		Stdout:   result.StandardOutput,
		Stderr:   result.StandardError,
		Duration: duration,
	}
}

// SpawnFailedOutcome records a process that could not be started.
func SpawnFailedOutcome(reason string, duration time.Duration) TaskOutcome {
	return TaskOutcome{Kind: OutcomeSpawnFailed, Reason: reason, Duration: duration}
}

// TimedOutOutcome records a process killed after exceeding its deadline. Partial output is discarded.
func TimedOutOutcome(duration time.Duration) TaskOutcome {
	return TaskOutcome{Kind: OutcomeTimedOut, Duration: duration}
}

// CancelledOutcome records a task that was stopped or never started because the run was cancelled.
func CancelledOutcome(duration time.Duration) TaskOutcome {
	return TaskOutcome{Kind: OutcomeCancelled, Duration: duration}
}

// Succeeded reports whether the process completed with a zero exit code.
func (outcome TaskOutcome) Succeeded() bool {
	return outcome.Kind == OutcomeCompleted && outcome.ExitCode == 0
}

// Describe renders a short human-readable summary.
func (outcome TaskOutcome) Describe() string {
	switch outcome.Kind {
	case OutcomeCompleted:
		return fmt.Sprintf(outcomeCompletedDescriptionTemplateConstant, outcome.ExitCode)
	case OutcomeSpawnFailed:
		return fmt.Sprintf(outcomeSpawnFailedDescriptionTemplateConstant, outcome.Reason)
	case OutcomeTimedOut:
		return outcomeTimedOutDescriptionConstant
	case OutcomeCancelled:
		return outcomeCancelledDescriptionConstant
	default:
		return outcomeUnknownDescriptionConstant
	}
}
