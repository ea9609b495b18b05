package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/repos/shared"
)

const (
	taskStartedLogMessageConstant     = "task started"
	taskCompletedLogMessageConstant   = "task completed"
	taskSpawnFailedLogMessageConstant = "task could not start"
	taskTimedOutLogMessageConstant    = "task timed out"
	taskCancelledLogMessageConstant   = "task cancelled"
	logFieldProgramConstant           = "program"
	logFieldArgumentsConstant         = "arguments"
	logFieldWorkingDirectoryConstant  = "working_directory"
	logFieldExitCodeConstant          = "exit_code"
	logFieldDurationConstant          = "duration"
	logFieldTimeoutConstant           = "timeout"
	missingCommandSpecReasonConstant  = "command not specified"
	timeoutErrorTemplateConstant      = "%w after %s"
)

var (
	// ErrLoggerNotConfigured indicates a runner was constructed without a logger.
	ErrLoggerNotConfigured = errors.New("task runner logger not configured")
	// ErrCommandRunnerNotConfigured indicates a runner was constructed without a process boundary.
	ErrCommandRunnerNotConfigured = errors.New("task runner command runner not configured")
	// ErrTaskTimedOut is reported to observers when a task exceeds its deadline.
	ErrTaskTimedOut = errors.New("task timed out")
)

// TaskRunnerOption customizes a TaskRunner.
type TaskRunnerOption func(*TaskRunner)

// WithCommandEventObserver registers an observer notified about every process lifecycle.
func WithCommandEventObserver(observer CommandEventObserver) TaskRunnerOption {
	return func(runner *TaskRunner) {
		if observer != nil {
			runner.observer = observer
		}
	}
}

// WithGitExecutable overrides the executable used for git operations.
func WithGitExecutable(executable string) TaskRunnerOption {
	return func(runner *TaskRunner) {
		if len(executable) > 0 {
			runner.gitExecutable = CommandName(executable)
		}
	}
}

// WithClock overrides the time source used to measure durations.
func WithClock(clock shared.Clock) TaskRunnerOption {
	return func(runner *TaskRunner) {
		if clock != nil {
			runner.clock = clock
		}
	}
}

// WithLiveOutput mirrors the output of every process to the provided writers while it runs.
// The output is still captured for the TaskOutcome.
func WithLiveOutput(outputSink io.Writer, errorSink io.Writer) TaskRunnerOption {
	return func(runner *TaskRunner) {
		runner.outputSink = outputSink
		runner.errorSink = errorSink
	}
}

// TaskRunner executes one CommandSpec in one working directory and classifies the result.
type TaskRunner struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	observer      CommandEventObserver
	clock         shared.Clock
	gitExecutable CommandName
	outputSink    io.Writer
	errorSink     io.Writer
}

// NewTaskRunner constructs a TaskRunner around the provided process boundary.
func NewTaskRunner(logger *zap.Logger, commandRunner CommandRunner, options ...TaskRunnerOption) (*TaskRunner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	runner := &TaskRunner{
		logger:        logger,
		commandRunner: commandRunner,
		observer:      noopCommandEventObserver{},
		clock:         shared.SystemClock{},
		gitExecutable: CommandGit,
	}
	for _, option := range options {
		option(runner)
	}
	return runner, nil
}

// Run executes spec inside workingDirectory. It always returns exactly one TaskOutcome.
// A positive timeout bounds this task only; executionContext cancellation yields a Cancelled outcome.
func (runner *TaskRunner) Run(executionContext context.Context, workingDirectory string, spec CommandSpec, timeout time.Duration) TaskOutcome {
	if spec.IsZero() {
		return SpawnFailedOutcome(missingCommandSpecReasonConstant, 0)
	}
	if executionContext.Err() != nil {
		return CancelledOutcome(0)
	}

	taskContext := executionContext
	cancelTask := func() {}
	if timeout > 0 {
		taskContext, cancelTask = context.WithTimeout(executionContext, timeout)
	}
	defer cancelTask()

	command := runner.buildShellCommand(workingDirectory, spec)
	runner.observer.CommandStarted(command)
	runner.logger.Debug(
		taskStartedLogMessageConstant,
		zap.String(logFieldProgramConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
	)

	startTime := runner.clock.Now()
	executionResult, runError := runner.commandRunner.Run(taskContext, command)
	duration := runner.clock.Now().Sub(startTime)

	if runError == nil {
		runner.observer.CommandCompleted(command, executionResult)
		runner.logger.Debug(
			taskCompletedLogMessageConstant,
			zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.Duration(logFieldDurationConstant, duration),
		)
		return CompletedOutcome(executionResult, duration)
	}

	if parentError := executionContext.Err(); parentError != nil {
		runner.observer.CommandExecutionFailed(command, parentError)
		runner.logger.Debug(taskCancelledLogMessageConstant, zap.String(logFieldWorkingDirectoryConstant, workingDirectory))
		return CancelledOutcome(duration)
	}

	if taskContext.Err() != nil {
		runner.observer.CommandExecutionFailed(command, fmt.Errorf(timeoutErrorTemplateConstant, ErrTaskTimedOut, timeout))
		runner.logger.Warn(
			taskTimedOutLogMessageConstant,
			zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
			zap.Duration(logFieldTimeoutConstant, timeout),
		)
		return TimedOutOutcome(duration)
	}

	runner.observer.CommandExecutionFailed(command, runError)
	runner.logger.Warn(
		taskSpawnFailedLogMessageConstant,
		zap.String(logFieldProgramConstant, string(command.Name)),
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
		zap.Error(runError),
	)
	return SpawnFailedOutcome(runError.Error(), duration)
}

func (runner *TaskRunner) buildShellCommand(workingDirectory string, spec CommandSpec) ShellCommand {
	commandName := CommandName(spec.Program())
	if spec.Kind() == CommandKindGitOperation {
		commandName = runner.gitExecutable
	}
	return ShellCommand{
		Name: commandName,
		Details: CommandDetails{
			Arguments:        spec.Arguments(),
			WorkingDirectory: workingDirectory,
			OutputSink:       runner.outputSink,
			ErrorSink:        runner.errorSink,
		},
	}
}
