package report

import (
	"fmt"
	"io"

	"github.com/temirov/lasso/internal/orchestrator"
)

const (
	contextLineTemplateConstant    = "context: %d of %d repositories\n"
	failureSummaryTemplateConstant = "%d of %d repositories failed"
)

// FailureSummaryError is returned after rendering when at least one entry did not succeed.
type FailureSummaryError struct {
	Failed int
	Total  int
}

// Error summarizes the failures.
func (summaryError FailureSummaryError) Error() string {
	return fmt.Sprintf(failureSummaryTemplateConstant, summaryError.Failed, summaryError.Total)
}

// Summarize returns a FailureSummaryError when any entry failed.
func Summarize(aggregateReport orchestrator.AggregateReport) error {
	failureCount := aggregateReport.FailureCount()
	if failureCount == 0 {
		return nil
	}
	return FailureSummaryError{Failed: failureCount, Total: len(aggregateReport.Entries)}
}

// WriteContextLine announces a narrowed context. Nothing is written when every repository is selected.
func WriteContextLine(writer io.Writer, selectedCount int, totalCount int, selectsAll bool) error {
	if selectsAll {
		return nil
	}
	_, writeError := fmt.Fprintf(writer, contextLineTemplateConstant, selectedCount, totalCount)
	return writeError
}
