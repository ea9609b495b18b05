package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"time"
)

const defaultTerminationGraceConstant = 2 * time.Second

// CommandRunner executes a resolved shell command.
//
// Implementations return an ExecutionResult whenever the process ran to exit, regardless of its exit code.
// A non-nil error means no exit status is available: the process could not be started, or the context
// ended and the process was killed. In the latter case the context error is returned.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// OSCommandRunner starts real processes through os/exec.
type OSCommandRunner struct {
	terminationGrace time.Duration
}

// OSCommandRunnerOption customizes an OSCommandRunner.
type OSCommandRunnerOption func(*OSCommandRunner)

// WithTerminationGrace bounds how long Run waits for output pipes to close after the process was
// killed, or after it exited. Descendants holding the pipes open are abandoned once it elapses.
func WithTerminationGrace(grace time.Duration) OSCommandRunnerOption {
	return func(runner *OSCommandRunner) {
		if grace > 0 {
			runner.terminationGrace = grace
		}
	}
}

// NewOSCommandRunner constructs an OSCommandRunner.
func NewOSCommandRunner(options ...OSCommandRunnerOption) *OSCommandRunner {
	runner := &OSCommandRunner{terminationGrace: defaultTerminationGraceConstant}
	for _, option := range options {
		if option != nil {
			option(runner)
		}
	}
	return runner
}

// Run starts the process in its working directory and waits for it. The process is killed when
// executionContext ends. Processes without live output sinks run in their own process group, and the
// whole group is killed. A process that exited while a background child still held its output open
// is reported with its exit status once the termination grace elapses.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	var standardOutput, standardError bytes.Buffer
	process := runner.prepare(executionContext, command, &standardOutput, &standardError)

	runError := process.Run()
	if runError != nil && executionContext.Err() != nil {
		return ExecutionResult{}, executionContext.Err()
	}

	exitCode := 0
	if runError != nil {
		var exitError *exec.ExitError
		switch {
		case errors.Is(runError, exec.ErrWaitDelay) && process.ProcessState != nil:
			exitCode = process.ProcessState.ExitCode()
		case errors.As(runError, &exitError):
			exitCode = exitError.ExitCode()
		default:
			return ExecutionResult{}, runError
		}
	}
	return ExecutionResult{
		StandardOutput: standardOutput.Bytes(),
		StandardError:  standardError.Bytes(),
		ExitCode:       exitCode,
	}, nil
}

func (runner *OSCommandRunner) prepare(executionContext context.Context, command ShellCommand, standardOutput *bytes.Buffer, standardError *bytes.Buffer) *exec.Cmd {
	process := exec.CommandContext(executionContext, string(command.Name), slices.Clone(command.Details.Arguments)...)
	process.WaitDelay = runner.terminationGrace
	process.Dir = command.Details.WorkingDirectory
	process.Stdout = mirrorTo(standardOutput, command.Details.OutputSink)
	process.Stderr = mirrorTo(standardError, command.Details.ErrorSink)
	if command.Details.OutputSink == nil && command.Details.ErrorSink == nil {
		isolateProcessGroup(process)
	}
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}
	if len(command.Details.EnvironmentVariables) > 0 {
		process.Env = os.Environ()
		for _, variableName := range slices.Sorted(maps.Keys(command.Details.EnvironmentVariables)) {
			process.Env = append(process.Env, variableName+"="+command.Details.EnvironmentVariables[variableName])
		}
	}
	return process
}

func mirrorTo(capture *bytes.Buffer, sink io.Writer) io.Writer {
	if sink == nil {
		return capture
	}
	return io.MultiWriter(capture, liveSink{destination: sink})
}

// liveSink ignores write failures of a live mirror so the capture always receives the full output.
type liveSink struct {
	destination io.Writer
}

func (sink liveSink) Write(data []byte) (int, error) {
	_, _ = sink.destination.Write(data)
	return len(data), nil
}
