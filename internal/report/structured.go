package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/orchestrator"
	"github.com/temirov/lasso/internal/status"
)

const structuredIndentConstant = 2

// Record is the scripting view of one entry.
type Record struct {
	Name                 string                   `json:"name" yaml:"name"`
	Path                 string                   `json:"path,omitempty" yaml:"path,omitempty"`
	State                string                   `json:"state" yaml:"state"`
	Succeeded            bool                     `json:"succeeded" yaml:"succeeded"`
	ExitCode             *int                     `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
	DurationMilliseconds int64                    `json:"duration_ms" yaml:"duration_ms"`
	Stdout               string                   `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr               string                   `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	Error                string                   `json:"error,omitempty" yaml:"error,omitempty"`
	Status               *status.RepositoryStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// Document is the scripting view of an aggregate report.
type Document struct {
	Total                int      `json:"total" yaml:"total"`
	Failures             int      `json:"failures" yaml:"failures"`
	DurationMilliseconds int64    `json:"duration_ms" yaml:"duration_ms"`
	Entries              []Record `json:"entries" yaml:"entries"`
}

// NewDocument converts an aggregate report into its scripting view.
func NewDocument(aggregateReport orchestrator.AggregateReport) Document {
	records := make([]Record, 0, len(aggregateReport.Entries))
	for _, entry := range aggregateReport.Entries {
		records = append(records, newRecord(entry))
	}
	return Document{
		Total:                len(aggregateReport.Entries),
		Failures:             aggregateReport.FailureCount(),
		DurationMilliseconds: aggregateReport.Duration().Milliseconds(),
		Entries:              records,
	}
}

func newRecord(entry orchestrator.Entry) Record {
	record := Record{
		Name:                 entry.Repository.Name,
		Path:                 entry.Repository.Path,
		State:                string(entry.State),
		Succeeded:            entry.Succeeded(),
		DurationMilliseconds: entry.Outcome.Duration.Milliseconds(),
		Stdout:               string(entry.Outcome.Stdout),
		Stderr:               string(entry.Outcome.Stderr),
		Status:               entry.Status,
	}
	if entry.State == orchestrator.StateCompleted && entry.Outcome.Kind == execshell.OutcomeCompleted {
		exitCode := entry.Outcome.ExitCode
		record.ExitCode = &exitCode
	}
	if !record.Succeeded {
		record.Error = describeResult(entry)
	}
	return record
}

// JSONRenderer writes an indented JSON document.
type JSONRenderer struct{}

// Render writes the document.
func (JSONRenderer) Render(writer io.Writer, aggregateReport orchestrator.AggregateReport) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(aggregateReport))
}

// YAMLRenderer writes a YAML document.
type YAMLRenderer struct{}

// Render writes the document.
func (YAMLRenderer) Render(writer io.Writer, aggregateReport orchestrator.AggregateReport) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(structuredIndentConstant)
	if encodeError := encoder.Encode(NewDocument(aggregateReport)); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
