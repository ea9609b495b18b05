package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/lasso/internal/orchestrator"
)

const (
	plainHeaderTemplateConstant        = "== %s ==\n"
	plainFailedHeaderTemplateConstant  = "== %s (%s) ==\n"
	plainResultLineTemplateConstant    = "-- %s --\n"
	plainStatusLineTemplateConstant    = "%s\t%s\t%s\t%s\t%s\n"
	plainStatusFailureTemplateConstant = "%s\t%s\n"
)

// PlainRenderer writes a header per repository followed by its captured output. Status reports are
// written one tab-separated line per repository.
type PlainRenderer struct {
	options Options
}

// NewPlainRenderer constructs a PlainRenderer for streaming individual entries.
func NewPlainRenderer(options Options) PlainRenderer {
	return PlainRenderer{options: options}
}

// Render writes every entry in resolution order.
func (renderer PlainRenderer) Render(writer io.Writer, aggregateReport orchestrator.AggregateReport) error {
	for _, entry := range aggregateReport.Entries {
		if renderError := renderer.RenderEntry(writer, entry); renderError != nil {
			return renderError
		}
	}
	return nil
}

// RenderEntry writes a single entry.
func (renderer PlainRenderer) RenderEntry(writer io.Writer, entry orchestrator.Entry) error {
	if renderer.options.Kind == KindStatus {
		return renderer.renderStatusEntry(writer, entry)
	}

	var buffer bytes.Buffer
	displayPath := renderer.entryLabel(entry)
	if entry.Succeeded() {
		fmt.Fprintf(&buffer, plainHeaderTemplateConstant, displayPath)
	} else {
		fmt.Fprintf(&buffer, plainFailedHeaderTemplateConstant, displayPath, describeResult(entry))
	}
	writeCapturedStream(&buffer, entry.Outcome.Stdout)
	if renderer.options.ErrorOutput == nil {
		writeCapturedStream(&buffer, entry.Outcome.Stderr)
	}

	if _, writeError := writer.Write(buffer.Bytes()); writeError != nil {
		return writeError
	}
	if renderer.options.ErrorOutput == nil || len(entry.Outcome.Stderr) == 0 {
		return nil
	}
	var errorBuffer bytes.Buffer
	writeCapturedStream(&errorBuffer, entry.Outcome.Stderr)
	_, writeError := renderer.options.ErrorOutput.Write(errorBuffer.Bytes())
	return writeError
}

// RenderStart writes the header of an entry whose output follows live.
func (renderer PlainRenderer) RenderStart(writer io.Writer, entry orchestrator.Entry) error {
	_, writeError := fmt.Fprintf(writer, plainHeaderTemplateConstant, renderer.entryLabel(entry))
	return writeError
}

// RenderFinish closes an entry started with RenderStart. Only failures produce a result line.
func (renderer PlainRenderer) RenderFinish(writer io.Writer, entry orchestrator.Entry) error {
	if entry.Succeeded() {
		return nil
	}
	_, writeError := fmt.Fprintf(writer, plainResultLineTemplateConstant, describeResult(entry))
	return writeError
}

func (renderer PlainRenderer) entryLabel(entry orchestrator.Entry) string {
	if len(entry.Repository.Path) == 0 {
		return entry.Repository.Name
	}
	return renderer.options.displayPath(entry.Repository.Path)
}

func (renderer PlainRenderer) renderStatusEntry(writer io.Writer, entry orchestrator.Entry) error {
	displayPath := renderer.options.displayPath(entry.Repository.Path)
	if entry.Status == nil {
		_, writeError := fmt.Fprintf(writer, plainStatusFailureTemplateConstant, entry.Repository.Name, describeResult(entry))
		return writeError
	}
	_, writeError := fmt.Fprintf(
		writer,
		plainStatusLineTemplateConstant,
		entry.Repository.Name,
		describeBranch(entry.Status),
		describeWorkingTree(entry.Status),
		strings.TrimSpace(describeAheadBehind(entry.Status)+" "+describeUpstream(entry.Status)),
		displayPath,
	)
	return writeError
}

func writeCapturedStream(buffer *bytes.Buffer, stream []byte) {
	if len(stream) == 0 {
		return
	}
	buffer.Write(stream)
	if stream[len(stream)-1] != '\n' {
		buffer.WriteByte('\n')
	}
}
