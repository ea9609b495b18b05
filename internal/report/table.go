package report

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/temirov/lasso/internal/orchestrator"
	"github.com/temirov/lasso/internal/status"
)

const (
	successColorConstant = "2"
	failureColorConstant = "1"
	aheadSeparator       = "/"
	aheadTemplate        = "+%d"
	behindTemplate       = "-%d"
)

var (
	statusTableHeaders  = []string{"path", "name", "branch", "status", "upstream", "", "commit"}
	commandTableHeaders = []string{"repository", "result", "exit", "duration"}
)

// TableRenderer renders aligned columns without borders.
type TableRenderer struct {
	options Options
}

// Render writes the table followed by a newline. Nothing is written for an empty report.
func (renderer TableRenderer) Render(writer io.Writer, aggregateReport orchestrator.AggregateReport) error {
	if len(aggregateReport.Entries) == 0 {
		return nil
	}

	headers := commandTableHeaders
	rows := make([][]string, 0, len(aggregateReport.Entries))
	if renderer.options.Kind == KindStatus {
		headers = statusTableHeaders
		for _, entry := range aggregateReport.Entries {
			rows = append(rows, renderer.statusRow(entry))
		}
	} else {
		for _, entry := range aggregateReport.Entries {
			rows = append(rows, renderer.commandRow(entry))
		}
	}

	styled := renderer.options.Styled
	renderedTable := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow && styled {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	_, writeError := fmt.Fprintln(writer, renderedTable.String())
	return writeError
}

func (renderer TableRenderer) statusRow(entry orchestrator.Entry) []string {
	row := []string{
		renderer.options.displayPath(parentDirectory(entry.Repository.Path)),
		renderer.emphasize(entry.Repository.Name),
		describeBranch(entry.Status),
	}
	if entry.Status == nil {
		return append(row, renderer.failure(describeResult(entry)), missingValueConstant, "", missingValueConstant)
	}

	workingTree := describeWorkingTree(entry.Status)
	if entry.Status.IsDirty {
		workingTree = renderer.failure(workingTree)
	}
	return append(row, workingTree, describeUpstream(entry.Status), renderer.aheadBehind(entry.Status), describeCommit(entry.Status))
}

func (renderer TableRenderer) commandRow(entry orchestrator.Entry) []string {
	result := describeResult(entry)
	if entry.Succeeded() {
		result = renderer.colorize(result, successColorConstant)
	} else {
		result = renderer.failure(result)
	}
	return []string{entry.Repository.Name, result, describeExitCode(entry), describeDuration(entry)}
}

func (renderer TableRenderer) aheadBehind(repositoryStatus *status.RepositoryStatus) string {
	if !repositoryStatus.HasUpstream {
		return ""
	}
	ahead := fmt.Sprintf(aheadTemplate, repositoryStatus.Ahead)
	if repositoryStatus.Ahead > 0 {
		ahead = renderer.colorize(ahead, successColorConstant)
	}
	behind := fmt.Sprintf(behindTemplate, repositoryStatus.Behind)
	if repositoryStatus.Behind > 0 {
		behind = renderer.failure(behind)
	}
	return ahead + aheadSeparator + behind
}

func (renderer TableRenderer) failure(text string) string {
	return renderer.colorize(text, failureColorConstant)
}

func (renderer TableRenderer) colorize(text string, color string) string {
	if !renderer.options.Styled {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

func (renderer TableRenderer) emphasize(text string) string {
	if !renderer.options.Styled {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Render(text)
}
