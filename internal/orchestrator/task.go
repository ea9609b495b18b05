package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/status"
)

var (
	// ErrTaskExecutorNotConfigured indicates a CommandTask without a runner.
	ErrTaskExecutorNotConfigured = errors.New("command task executor not configured")
	// ErrCommandSpecNotConfigured indicates a CommandTask without a command.
	ErrCommandSpecNotConfigured = errors.New("command task command not configured")
	// ErrClassifierNotConfigured indicates a StatusTask without a classifier.
	ErrClassifierNotConfigured = errors.New("status task classifier not configured")
)

// TaskResult is what a Task produced for one repository.
type TaskResult struct {
	Outcome     execshell.TaskOutcome
	Status      *status.RepositoryStatus
	StatusError error
}

// Task is the unit of work executed once per resolved repository. Implementations must be safe for
// concurrent use and must honor context cancellation.
type Task interface {
	Execute(executionContext context.Context, repository registry.RepositoryRef) TaskResult
}

// CommandExecutor runs one command in one working directory.
type CommandExecutor interface {
	Run(executionContext context.Context, workingDirectory string, spec execshell.CommandSpec, timeout time.Duration) execshell.TaskOutcome
}

// CommandTask runs the same CommandSpec in every repository.
type CommandTask struct {
	executor CommandExecutor
	spec     execshell.CommandSpec
	timeout  time.Duration
}

// NewCommandTask constructs a CommandTask. A positive timeout bounds every invocation.
func NewCommandTask(executor CommandExecutor, spec execshell.CommandSpec, timeout time.Duration) (*CommandTask, error) {
	if executor == nil {
		return nil, ErrTaskExecutorNotConfigured
	}
	if spec.IsZero() {
		return nil, ErrCommandSpecNotConfigured
	}
	return &CommandTask{executor: executor, spec: spec, timeout: timeout}, nil
}

// Execute runs the command with the repository as working directory.
func (task *CommandTask) Execute(executionContext context.Context, repository registry.RepositoryRef) TaskResult {
	return TaskResult{Outcome: task.executor.Run(executionContext, repository.Path, task.spec, task.timeout)}
}

// RepositoryClassifier classifies the state of one repository.
type RepositoryClassifier interface {
	Classify(executionContext context.Context, repository registry.RepositoryRef) status.Result
}

// StatusTask classifies every repository.
type StatusTask struct {
	classifier RepositoryClassifier
}

// NewStatusTask constructs a StatusTask.
func NewStatusTask(classifier RepositoryClassifier) (*StatusTask, error) {
	if classifier == nil {
		return nil, ErrClassifierNotConfigured
	}
	return &StatusTask{classifier: classifier}, nil
}

// Execute classifies the repository.
func (task *StatusTask) Execute(executionContext context.Context, repository registry.RepositoryRef) TaskResult {
	result := task.classifier.Classify(executionContext, repository)
	return TaskResult{Outcome: result.Outcome, Status: result.Status, StatusError: result.Err}
}
