package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	referencesJoinSeparatorConstant         = ", "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	flagPrefixConstant                      = "-"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	allRemotesLabelConstant                 = "all remotes"
	upstreamLabelConstant                   = "upstream"
)

const (
	gitStatusSubcommandNameConstant = "status"
	gitLogSubcommandNameConstant    = "log"
	gitFetchSubcommandNameConstant  = "fetch"
	gitPullSubcommandNameConstant   = "pull"
)

const (
	gitStatusStartTemplateConstant                   = "Inspecting working tree in %s"
	gitStatusSuccessTemplateConstant                 = "Inspected working tree in %s"
	gitStatusFailureTemplateConstant                 = "Failed to inspect working tree in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant        = "Unable to inspect working tree in %s: %s"
	gitLogStartTemplateConstant                      = "Reading latest commit in %s"
	gitLogSuccessTemplateConstant                    = "Read latest commit in %s"
	gitLogFailureTemplateConstant                    = "Failed to read latest commit in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant           = "Unable to read latest commit in %s: %s"
	gitFetchStartTemplateConstant                    = "Fetching %s from %s in %s"
	gitFetchWithoutRefsStartTemplateConstant         = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant                  = "Fetched %s from %s in %s"
	gitFetchWithoutRefsSuccessTemplateConstant       = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant                  = "Failed to fetch %s from %s in %s (exit code %d%s)"
	gitFetchWithoutRefsFailureTemplateConstant       = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant         = "Unable to fetch %s from %s in %s: %s"
	gitFetchWithoutRefsExecutionFailureTemplateConst = "Unable to fetch from %s in %s: %s"
	gitPullStartTemplateConstant                     = "Pulling from %s in %s"
	gitPullSuccessTemplateConstant                   = "Pulled from %s in %s"
	gitPullFailureTemplateConstant                   = "Failed to pull from %s in %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant          = "Unable to pull from %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that produced no exit status.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !isGitCommand(command.Name) || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitStatusSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitStatusMessageTemplates)
	case gitLogSubcommandNameConstant:
		return formatter.describeWorkingDirectoryMessage(command, result, failure, stage, gitLogMessageTemplates)
	case gitFetchSubcommandNameConstant:
		return formatter.describeGitFetchMessage(command, result, failure, stage)
	case gitPullSubcommandNameConstant:
		return formatter.describeGitPullMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

type workingDirectoryMessageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	gitStatusMessageTemplates = workingDirectoryMessageTemplates{
		start:            gitStatusStartTemplateConstant,
		success:          gitStatusSuccessTemplateConstant,
		failure:          gitStatusFailureTemplateConstant,
		executionFailure: gitStatusExecutionFailureTemplateConstant,
	}
	gitLogMessageTemplates = workingDirectoryMessageTemplates{
		start:            gitLogStartTemplateConstant,
		success:          gitLogSuccessTemplateConstant,
		failure:          gitLogFailureTemplateConstant,
		executionFailure: gitLogExecutionFailureTemplateConstant,
	}
)

func (formatter CommandMessageFormatter) describeWorkingDirectoryMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage, templates workingDirectoryMessageTemplates) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitFetchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName, references := formatter.extractRemoteAndReferences(command.Details.Arguments[1:])
	if len(remoteName) == 0 {
		remoteName = allRemotesLabelConstant
	}
	joinedReferences := strings.Join(references, referencesJoinSeparatorConstant)

	switch stage {
	case messageStageStart:
		if len(joinedReferences) > 0 {
			return fmt.Sprintf(gitFetchStartTemplateConstant, joinedReferences, remoteName, workingDirectory)
		}
		return fmt.Sprintf(gitFetchWithoutRefsStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		if len(joinedReferences) > 0 {
			return fmt.Sprintf(gitFetchSuccessTemplateConstant, joinedReferences, remoteName, workingDirectory)
		}
		return fmt.Sprintf(gitFetchWithoutRefsSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		if len(joinedReferences) > 0 {
			return fmt.Sprintf(gitFetchFailureTemplateConstant, joinedReferences, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		}
		return fmt.Sprintf(gitFetchWithoutRefsFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		if len(joinedReferences) > 0 {
			return fmt.Sprintf(gitFetchExecutionFailureTemplateConstant, joinedReferences, remoteName, workingDirectory, formatter.describeFailure(failure))
		}
		return fmt.Sprintf(gitFetchWithoutRefsExecutionFailureTemplateConst, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPullMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName, _ := formatter.extractRemoteAndReferences(command.Details.Arguments[1:])
	if len(remoteName) == 0 {
		remoteName = upstreamLabelConstant
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPullStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPullSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPullFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPullExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError []byte) string {
	trimmedStandardError := strings.TrimSpace(string(standardError))
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) extractRemoteAndReferences(arguments []string) (string, []string) {
	remoteName := emptyStringConstant
	references := []string{}
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		if len(remoteName) == 0 {
			remoteName = trimmed
			continue
		}
		references = append(references, trimmed)
	}
	return remoteName, references
}

func isGitCommand(name CommandName) bool {
	return strings.TrimSuffix(filepath.Base(string(name)), ".exe") == string(CommandGit)
}
