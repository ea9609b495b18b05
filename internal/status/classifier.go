package status

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/registry"
)

const (
	gitStatusSubcommandConstant         = "status"
	gitPorcelainV2FlagConstant          = "--porcelain=v2"
	gitBranchFlagConstant               = "--branch"
	gitUntrackedFilesNoFlagConstant     = "--untracked-files=no"
	gitLogSubcommandConstant            = "log"
	gitSingleCommitFlagConstant         = "-1"
	gitCommitSummaryFormatFlagConstant  = "--format=%H%x00%s"
	notARepositoryMarkerConstant        = "not a git repository"
	notARepositoryErrorTemplateConstant = "%w: %s"
	unparseableErrorTemplateConstant    = "%w: %w"
	unavailableErrorTemplateConstant    = "%w: exit code %d: %s"
	classifiedLogMessageConstant        = "repository classified"
	unclassifiedLogMessageConstant      = "repository not classified"
	commitLookupFailedLogMessage        = "latest commit lookup failed"
	logFieldRepositoryConstant          = "repository"
	logFieldBranchConstant              = "branch"
	logFieldDirtyConstant               = "dirty"
	logFieldOutcomeConstant             = "outcome"
)

// ErrTaskExecutorNotConfigured indicates the classifier was constructed without a task executor.
var ErrTaskExecutorNotConfigured = errors.New("status classifier task executor not configured")

// TaskExecutor runs one command in one repository.
type TaskExecutor interface {
	Run(executionContext context.Context, workingDirectory string, spec execshell.CommandSpec, timeout time.Duration) execshell.TaskOutcome
}

// Result carries the process outcome of the status query and, when the repository could be
// classified, its RepositoryStatus. Err wraps ErrNotARepository or ErrStatusUnavailable when the
// query completed but the repository could not be classified.
type Result struct {
	Outcome execshell.TaskOutcome
	Status  *RepositoryStatus
	Err     error
}

// Classifier queries repositories through git and classifies their state.
type Classifier struct {
	logger       *zap.Logger
	taskExecutor TaskExecutor
	timeout      time.Duration
	statusSpec   execshell.CommandSpec
	commitSpec   execshell.CommandSpec
}

// NewClassifier constructs a Classifier. A positive timeout bounds each git invocation.
func NewClassifier(logger *zap.Logger, taskExecutor TaskExecutor, timeout time.Duration) (*Classifier, error) {
	if taskExecutor == nil {
		return nil, ErrTaskExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	statusSpec, statusSpecError := execshell.NewGitOperation(gitStatusSubcommandConstant, gitPorcelainV2FlagConstant, gitBranchFlagConstant, gitUntrackedFilesNoFlagConstant)
	if statusSpecError != nil {
		return nil, statusSpecError
	}
	commitSpec, commitSpecError := execshell.NewGitOperation(gitLogSubcommandConstant, gitSingleCommitFlagConstant, gitCommitSummaryFormatFlagConstant)
	if commitSpecError != nil {
		return nil, commitSpecError
	}

	return &Classifier{
		logger:       logger,
		taskExecutor: taskExecutor,
		timeout:      timeout,
		statusSpec:   statusSpec,
		commitSpec:   commitSpec,
	}, nil
}

// Classify inspects the repository and returns its status.
func (classifier *Classifier) Classify(executionContext context.Context, repository registry.RepositoryRef) Result {
	statusOutcome := classifier.taskExecutor.Run(executionContext, repository.Path, classifier.statusSpec, classifier.timeout)
	if statusOutcome.Kind != execshell.OutcomeCompleted {
		classifier.logger.Debug(unclassifiedLogMessageConstant, zap.String(logFieldRepositoryConstant, repository.Name), zap.String(logFieldOutcomeConstant, statusOutcome.Describe()))
		return Result{Outcome: statusOutcome}
	}

	if statusOutcome.ExitCode != 0 {
		classificationError := classifyFailure(statusOutcome)
		classifier.logger.Debug(unclassifiedLogMessageConstant, zap.String(logFieldRepositoryConstant, repository.Name), zap.Error(classificationError))
		return Result{Outcome: statusOutcome, Err: classificationError}
	}

	repositoryStatus, parseError := ParsePorcelainV2(statusOutcome.Stdout)
	if parseError != nil {
		classificationError := fmt.Errorf(unparseableErrorTemplateConstant, ErrNotARepository, parseError)
		classifier.logger.Debug(unclassifiedLogMessageConstant, zap.String(logFieldRepositoryConstant, repository.Name), zap.Error(classificationError))
		return Result{Outcome: statusOutcome, Err: classificationError}
	}

	if len(repositoryStatus.Commit.Hash) > 0 {
		commitOutcome := classifier.taskExecutor.Run(executionContext, repository.Path, classifier.commitSpec, classifier.timeout)
		statusOutcome.Duration += commitOutcome.Duration
		if commitOutcome.Succeeded() {
			if commitSummary, parsed := ParseCommitSummary(commitOutcome.Stdout); parsed {
				repositoryStatus.Commit = commitSummary
			}
		} else {
			classifier.logger.Debug(commitLookupFailedLogMessage, zap.String(logFieldRepositoryConstant, repository.Name), zap.String(logFieldOutcomeConstant, commitOutcome.Describe()))
		}
	}

	classifier.logger.Debug(
		classifiedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, repository.Name),
		zap.String(logFieldBranchConstant, repositoryStatus.Branch),
		zap.Bool(logFieldDirtyConstant, repositoryStatus.IsDirty),
	)
	return Result{Outcome: statusOutcome, Status: &repositoryStatus}
}

func classifyFailure(outcome execshell.TaskOutcome) error {
	standardError := strings.TrimSpace(string(outcome.Stderr))
	if strings.Contains(strings.ToLower(standardError), notARepositoryMarkerConstant) {
		return fmt.Errorf(notARepositoryErrorTemplateConstant, ErrNotARepository, firstLine(standardError))
	}
	return fmt.Errorf(unavailableErrorTemplateConstant, ErrStatusUnavailable, outcome.ExitCode, firstLine(standardError))
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}
