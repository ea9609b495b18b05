package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/temirov/lasso/internal/orchestrator"
)

var (
	statusCSVHeader  = []string{"name", "path", "state", "branch", "detached", "modified", "upstream", "ahead", "behind", "commit", "subject", "error"}
	commandCSVHeader = []string{"name", "path", "state", "exit_code", "duration_ms", "error"}
)

// CSVRenderer writes one row per entry with a header row.
type CSVRenderer struct {
	options Options
}

// Render writes the rows.
func (renderer CSVRenderer) Render(writer io.Writer, aggregateReport orchestrator.AggregateReport) error {
	csvWriter := csv.NewWriter(writer)
	header := commandCSVHeader
	if renderer.options.Kind == KindStatus {
		header = statusCSVHeader
	}
	if writeError := csvWriter.Write(header); writeError != nil {
		return writeError
	}

	for _, entry := range aggregateReport.Entries {
		record := newRecord(entry)
		var row []string
		if renderer.options.Kind == KindStatus {
			row = statusCSVRow(record)
		} else {
			row = commandCSVRow(record)
		}
		if writeError := csvWriter.Write(row); writeError != nil {
			return writeError
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func statusCSVRow(record Record) []string {
	row := []string{record.Name, record.Path, record.State}
	if record.Status == nil {
		return append(row, "", "", "", "", "", "", "", "", record.Error)
	}
	return append(row,
		record.Status.Branch,
		strconv.FormatBool(record.Status.Detached),
		strconv.Itoa(record.Status.ModifiedCount),
		record.Status.Upstream,
		strconv.Itoa(record.Status.Ahead),
		strconv.Itoa(record.Status.Behind),
		record.Status.Commit.Hash,
		record.Status.Commit.Subject,
		record.Error,
	)
}

func commandCSVRow(record Record) []string {
	exitCode := ""
	if record.ExitCode != nil {
		exitCode = strconv.Itoa(*record.ExitCode)
	}
	return []string{record.Name, record.Path, record.State, exitCode, strconv.FormatInt(record.DurationMilliseconds, 10), record.Error}
}
