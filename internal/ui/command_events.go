package ui

import (
	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/execshell"
)

const (
	commandEventRepositoryFieldConstant = "repository"
	commandEventExitCodeFieldConstant   = "exit_code"
)

// PathShortener rewrites an absolute repository path for display.
type PathShortener func(path string) string

// RepositoryEventLogger narrates the git and program invocations made inside repositories on the
// console logger. Routine steps are debug entries; non-zero exits and processes that never
// produced an exit status are warnings carrying the repository and exit code as fields.
type RepositoryEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
	shorten   PathShortener
}

// NewRepositoryEventLogger builds a RepositoryEventLogger. A nil shorten leaves paths untouched.
func NewRepositoryEventLogger(logger *zap.Logger, shorten PathShortener) *RepositoryEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if shorten == nil {
		shorten = func(path string) string { return path }
	}
	return &RepositoryEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}, shorten: shorten}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *RepositoryEventLogger) CommandStarted(command execshell.ShellCommand) {
	displayed, repositoryField := eventLogger.forDisplay(command)
	eventLogger.logger.Debug(eventLogger.formatter.BuildStartedMessage(displayed), repositoryField)
}

// CommandCompleted implements execshell.CommandEventObserver.
func (eventLogger *RepositoryEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	displayed, repositoryField := eventLogger.forDisplay(command)
	if result.ExitCode == 0 {
		eventLogger.logger.Debug(eventLogger.formatter.BuildSuccessMessage(displayed), repositoryField)
		return
	}
	eventLogger.logger.Warn(
		eventLogger.formatter.BuildFailureMessage(displayed, result),
		repositoryField,
		zap.Int(commandEventExitCodeFieldConstant, result.ExitCode),
	)
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *RepositoryEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	displayed, repositoryField := eventLogger.forDisplay(command)
	eventLogger.logger.Warn(eventLogger.formatter.BuildExecutionFailureMessage(displayed, failure), repositoryField)
}

func (eventLogger *RepositoryEventLogger) forDisplay(command execshell.ShellCommand) (execshell.ShellCommand, zap.Field) {
	if len(command.Details.WorkingDirectory) == 0 {
		return command, zap.Skip()
	}
	command.Details.WorkingDirectory = eventLogger.shorten(command.Details.WorkingDirectory)
	return command, zap.String(commandEventRepositoryFieldConstant, command.Details.WorkingDirectory)
}
