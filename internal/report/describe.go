package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/orchestrator"
	"github.com/temirov/lasso/internal/selection"
	"github.com/temirov/lasso/internal/status"
)

const (
	resultSucceededConstant        = "ok"
	resultExitCodeTemplateConstant = "exit %d"
	statusCleanConstant            = "clean"
	statusModifiedTemplateConstant = "%d modified"
	detachedBranchConstant         = "(detached)"
	missingValueConstant           = "-"
	aheadBehindTemplateConstant    = "+%d/-%d"
	commitSummaryTemplateConstant  = "%s %s"
	durationPrecisionConstant      = time.Millisecond
)

// describeResult renders the outcome of an entry as a short phrase.
func describeResult(entry orchestrator.Entry) string {
	if entry.State == orchestrator.StateUnresolved {
		return describeResolutionError(entry.ResolutionError)
	}
	if entry.StatusError != nil {
		return entry.StatusError.Error()
	}
	if entry.Outcome.Kind == execshell.OutcomeCompleted {
		if entry.Outcome.ExitCode == 0 {
			return resultSucceededConstant
		}
		return fmt.Sprintf(resultExitCodeTemplateConstant, entry.Outcome.ExitCode)
	}
	return entry.Outcome.Describe()
}

func describeResolutionError(resolutionError error) string {
	if resolutionError == nil {
		return missingValueConstant
	}
	var typedError selection.ResolutionError
	if errors.As(resolutionError, &typedError) && typedError.Cause != nil {
		return typedError.Cause.Error()
	}
	return resolutionError.Error()
}

func describeExitCode(entry orchestrator.Entry) string {
	if entry.Outcome.Kind != execshell.OutcomeCompleted || entry.State != orchestrator.StateCompleted {
		return missingValueConstant
	}
	return fmt.Sprintf("%d", entry.Outcome.ExitCode)
}

func describeDuration(entry orchestrator.Entry) string {
	if entry.State == orchestrator.StateUnresolved {
		return missingValueConstant
	}
	return entry.Outcome.Duration.Round(durationPrecisionConstant).String()
}

func describeBranch(repositoryStatus *status.RepositoryStatus) string {
	if repositoryStatus == nil {
		return missingValueConstant
	}
	if repositoryStatus.Detached {
		return detachedBranchConstant
	}
	if len(repositoryStatus.Branch) == 0 {
		return missingValueConstant
	}
	return repositoryStatus.Branch
}

func describeWorkingTree(repositoryStatus *status.RepositoryStatus) string {
	if repositoryStatus.IsDirty {
		return fmt.Sprintf(statusModifiedTemplateConstant, repositoryStatus.ModifiedCount)
	}
	return statusCleanConstant
}

func describeUpstream(repositoryStatus *status.RepositoryStatus) string {
	if repositoryStatus == nil || !repositoryStatus.HasUpstream {
		return missingValueConstant
	}
	return repositoryStatus.Upstream
}

func describeAheadBehind(repositoryStatus *status.RepositoryStatus) string {
	if repositoryStatus == nil || !repositoryStatus.HasUpstream {
		return ""
	}
	return fmt.Sprintf(aheadBehindTemplateConstant, repositoryStatus.Ahead, repositoryStatus.Behind)
}

func describeCommit(repositoryStatus *status.RepositoryStatus) string {
	if repositoryStatus == nil || len(repositoryStatus.Commit.Hash) == 0 {
		return missingValueConstant
	}
	return strings.TrimSpace(fmt.Sprintf(commitSummaryTemplateConstant, repositoryStatus.Commit.ShortHash(), repositoryStatus.Commit.Subject))
}

func parentDirectory(path string) string {
	if len(path) == 0 {
		return missingValueConstant
	}
	return filepath.Dir(path)
}
