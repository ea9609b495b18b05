package orchestrator

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/repos/shared"
	"github.com/temirov/lasso/internal/selection"
)

const (
	runStartedLogMessageConstant      = "orchestration started"
	runFinishedLogMessageConstant     = "orchestration finished"
	entryFinishedLogMessageConstant   = "repository finished"
	entryNotStartedLogMessageConstant = "repository not started"
	invalidTransitionLogMessage       = "task state transition rejected"
	logFieldModeConstant              = "mode"
	logFieldTargetsConstant           = "targets"
	logFieldFailuresConstant          = "failures"
	logFieldRepositoryConstant        = "repository"
	logFieldStateConstant             = "state"
	logFieldOutcomeConstant           = "outcome"
	logFieldDurationConstant          = "duration"
)

// ErrTaskNotConfigured indicates Run was called without a task.
var ErrTaskNotConfigured = errors.New("orchestration task not configured")

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers a lifecycle observer.
func WithObserver(observer Observer) Option {
	return func(orchestrator *Orchestrator) {
		if observer != nil {
			orchestrator.observer = observer
		}
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(clock shared.Clock) Option {
	return func(orchestrator *Orchestrator) {
		if clock != nil {
			orchestrator.clock = clock
		}
	}
}

// Orchestrator runs a Task against resolved targets.
type Orchestrator struct {
	logger   *zap.Logger
	observer Observer
	clock    shared.Clock
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(logger *zap.Logger, options ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	orchestrator := &Orchestrator{logger: logger, observer: noopObserver{}, clock: shared.SystemClock{}}
	for _, option := range options {
		option(orchestrator)
	}
	return orchestrator
}

// Run executes task for every resolved target and returns one entry per target in resolution order.
// Unresolved targets keep their position with StateUnresolved. Cancellation is reported through
// StateCancelled entries, never as an error.
func (orchestrator *Orchestrator) Run(executionContext context.Context, targets []selection.Target, task Task, mode ExecutionMode) (AggregateReport, error) {
	if task == nil {
		return AggregateReport{}, ErrTaskNotConfigured
	}

	aggregateReport := AggregateReport{Entries: make([]Entry, len(targets)), Started: orchestrator.clock.Now()}
	for targetIndex, target := range targets {
		entry := Entry{Index: targetIndex, Repository: target.Repository, State: StatePending}
		if !target.Resolved() {
			entry.State = StateUnresolved
			entry.ResolutionError = *target.Err
		}
		aggregateReport.Entries[targetIndex] = entry
	}

	orchestrator.logger.Debug(runStartedLogMessageConstant, zap.Stringer(logFieldModeConstant, mode), zap.Int(logFieldTargetsConstant, len(targets)))

	if mode.Kind() == ModeConcurrent {
		orchestrator.runConcurrently(executionContext, aggregateReport.Entries, task, mode.MaxParallelism())
	} else {
		orchestrator.runSerially(executionContext, aggregateReport.Entries, task)
	}

	aggregateReport.Finished = orchestrator.clock.Now()
	orchestrator.logger.Debug(
		runFinishedLogMessageConstant,
		zap.Int(logFieldTargetsConstant, len(targets)),
		zap.Int(logFieldFailuresConstant, aggregateReport.FailureCount()),
		zap.Duration(logFieldDurationConstant, aggregateReport.Duration()),
	)
	return aggregateReport, nil
}

func (orchestrator *Orchestrator) runSerially(executionContext context.Context, entries []Entry, task Task) {
	for entryIndex := range entries {
		if entries[entryIndex].State != StatePending {
			continue
		}
		if executionContext.Err() != nil {
			orchestrator.cancelPending(&entries[entryIndex])
			continue
		}
		orchestrator.execute(executionContext, &entries[entryIndex], task)
	}
}

func (orchestrator *Orchestrator) runConcurrently(executionContext context.Context, entries []Entry, task Task, maxParallelism int) {
	workerGroup := new(errgroup.Group)
	workerGroup.SetLimit(maxParallelism)

	for entryIndex := range entries {
		if entries[entryIndex].State != StatePending {
			continue
		}
		if executionContext.Err() != nil {
			orchestrator.cancelPending(&entries[entryIndex])
			continue
		}
		entry := &entries[entryIndex]
		workerGroup.Go(func() error {
			if executionContext.Err() != nil {
				orchestrator.cancelPending(entry)
				return nil
			}
			orchestrator.execute(executionContext, entry, task)
			return nil
		})
	}

	_ = workerGroup.Wait()
}

func (orchestrator *Orchestrator) execute(executionContext context.Context, entry *Entry, task Task) {
	if !orchestrator.moveTo(entry, StateRunning) {
		return
	}
	orchestrator.observer.TaskStarted(*entry)

	result := task.Execute(executionContext, entry.Repository)
	entry.Outcome = result.Outcome
	entry.Status = result.Status
	entry.StatusError = result.StatusError
	orchestrator.moveTo(entry, stateForOutcome(result.Outcome.Kind))

	orchestrator.logger.Debug(
		entryFinishedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, entry.Repository.Name),
		zap.String(logFieldStateConstant, string(entry.State)),
		zap.String(logFieldOutcomeConstant, entry.Outcome.Describe()),
		zap.Duration(logFieldDurationConstant, entry.Outcome.Duration),
	)
	orchestrator.observer.TaskFinished(*entry)
}

func (orchestrator *Orchestrator) cancelPending(entry *Entry) {
	if !orchestrator.moveTo(entry, StateCancelled) {
		return
	}
	entry.Outcome = execshell.CancelledOutcome(0)
	orchestrator.logger.Debug(entryNotStartedLogMessageConstant, zap.String(logFieldRepositoryConstant, entry.Repository.Name))
	orchestrator.observer.TaskFinished(*entry)
}

func (orchestrator *Orchestrator) moveTo(entry *Entry, next TaskState) bool {
	nextState, transitionError := entry.State.transition(next)
	if transitionError != nil {
		orchestrator.logger.Error(invalidTransitionLogMessage, zap.String(logFieldRepositoryConstant, entry.Repository.Name), zap.Error(transitionError))
		return false
	}
	entry.State = nextState
	return true
}
