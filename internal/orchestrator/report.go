package orchestrator

import (
	"time"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/status"
)

// Entry is the outcome of one resolution position.
type Entry struct {
	Index           int
	Repository      registry.RepositoryRef
	State           TaskState
	Outcome         execshell.TaskOutcome
	Status          *status.RepositoryStatus
	StatusError     error
	ResolutionError error
}

// Succeeded reports whether the entry ran to a zero exit and, for status runs, was classified.
func (entry Entry) Succeeded() bool {
	return entry.State == StateCompleted && entry.Outcome.Succeeded() && entry.StatusError == nil
}

// AggregateReport collects every entry of a run in resolution order.
type AggregateReport struct {
	Entries  []Entry
	Started  time.Time
	Finished time.Time
}

// Duration returns the wall-clock time of the run.
func (aggregateReport AggregateReport) Duration() time.Duration {
	return aggregateReport.Finished.Sub(aggregateReport.Started)
}

// FailureCount returns the number of entries that did not succeed.
func (aggregateReport AggregateReport) FailureCount() int {
	failureCount := 0
	for _, entry := range aggregateReport.Entries {
		if !entry.Succeeded() {
			failureCount++
		}
	}
	return failureCount
}

// Observer receives lifecycle notifications. Calls may arrive from several goroutines at once.
type Observer interface {
	TaskStarted(entry Entry)
	TaskFinished(entry Entry)
}

type noopObserver struct{}

func (noopObserver) TaskStarted(Entry) {}

func (noopObserver) TaskFinished(Entry) {}
