package repos

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/orchestrator"
	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/report"
	"github.com/temirov/lasso/internal/selection"
	"github.com/temirov/lasso/internal/ui"
	"github.com/temirov/lasso/internal/utils"
	flagutils "github.com/temirov/lasso/internal/utils/flags"
)

const (
	runStartedLogMessageConstant  = "repository run started"
	runFinishedLogMessageConstant = "repository run finished"
	logFieldCommandConstant       = "command"
	logFieldModeConstant          = "mode"
	logFieldSelectedConstant      = "selected"
	logFieldRegisteredConstant    = "registered"
	logFieldFailuresConstant      = "failures"
	logFieldDurationConstant      = "duration"
	logFieldRegistryConstant      = "registry"
	logFieldConfigurationConstant = "config_file"
	resolverErrorTemplateConstant = "unable to resolve repositories: %w"
	runErrorTemplateConstant      = "unable to run repositories: %w"
	renderErrorTemplateConstant   = "unable to render report: %w"
)

// liveTaskFactory builds a task whose process output is mirrored to the given sinks while it runs.
type liveTaskFactory func(outputSink io.Writer, errorSink io.Writer) (orchestrator.Task, error)

// entryStreamer observes a run and writes its entries while it progresses.
type entryStreamer interface {
	orchestrator.Observer
	Finish(aggregateReport orchestrator.AggregateReport) error
}

// runPlan describes one fan-out across the selected repositories. liveTask, when set, replaces task
// for serial plain runs so that output appears while each repository runs.
type runPlan struct {
	name        string
	task        orchestrator.Task
	liveTask    liveTaskFactory
	kind        report.Kind
	concurrent  bool
	flagValues  flagutils.RunFlagValues
	contextLine bool
	progress    bool
}

// runFlagDefinitions lists the run flags exposed by a command. parallelFlag is false for commands that are always concurrent.
func runFlagDefinitions(parallelFlag bool, timeoutFlag bool) flagutils.RunFlagDefinitions {
	return flagutils.RunFlagDefinitions{
		Repositories:  true,
		Parallel:      parallelFlag,
		Jobs:          true,
		Timeout:       timeoutFlag,
		Output:        true,
		OutputChoices: report.SupportedFormats(),
	}
}

// mergeRunFlags overlays command line flags on the configured execution settings.
func (environment commandEnvironment) mergeRunFlags(command *cobra.Command, flagValues *flagutils.RunFlagValues, defaultFormat string) flagutils.RunFlagValues {
	configured := flagutils.RunFlagValues{
		Jobs:    environment.configuration.Execution.Parallelism,
		Timeout: environment.configuration.Execution.Timeout,
		Output:  defaultFormat,
	}
	return flagValues.Merge(command, configured)
}

func (environment commandEnvironment) selector(repositoryRegistry registry.Registry, flagValues flagutils.RunFlagValues) registry.ContextSelector {
	if len(flagValues.Repositories) > 0 {
		return registry.ExplicitRepositories(flagValues.Repositories...)
	}
	return repositoryRegistry.Context
}

func (environment commandEnvironment) executionMode(plan runPlan) (orchestrator.ExecutionMode, error) {
	if !plan.concurrent && !plan.flagValues.Parallel {
		return orchestrator.NewSerialMode(), nil
	}
	return orchestrator.NewConcurrentMode(plan.flagValues.Jobs)
}

// run resolves the context, drives the orchestrator, renders the report, and returns a
// report.FailureSummaryError when any repository failed.
func (environment commandEnvironment) run(command *cobra.Command, repositoryRegistry registry.Registry, plan runPlan) error {
	outputFormat, formatError := report.ParseFormat(plan.flagValues.Output)
	if formatError != nil {
		return formatError
	}

	mode, modeError := environment.executionMode(plan)
	if modeError != nil {
		return modeError
	}

	resolver, resolverError := selection.NewResolver(environment.fileSystem)
	if resolverError != nil {
		return fmt.Errorf(resolverErrorTemplateConstant, resolverError)
	}
	selector := environment.selector(repositoryRegistry, plan.flagValues)
	resolution := resolver.Resolve(repositoryRegistry, selector)

	standardOutput := utils.NewSerializedOutput(command.OutOrStdout())
	standardError := utils.NewSerializedOutput(command.ErrOrStderr())
	humanReadable := outputFormat == report.FormatTable || outputFormat == report.FormatPlain
	if plan.contextLine && humanReadable {
		if writeError := report.WriteContextLine(standardOutput, len(resolution.Targets), len(repositoryRegistry.Repositories), selector.All); writeError != nil {
			return writeError
		}
	}

	renderOptions := report.Options{
		Kind:        plan.kind,
		DisplayPath: environment.displayPath,
		Styled:      environment.supportsStyling(command.OutOrStdout()),
		ErrorOutput: standardError,
	}

	task := plan.task
	var observer orchestrator.Observer
	var progressReporter *ui.ProgressReporter
	var streamer entryStreamer
	switch {
	case plan.progress && mode.Kind() == orchestrator.ModeConcurrent && len(resolution.Targets) > 1 && environment.isInteractive(command.ErrOrStderr()):
		progressReporter = ui.NewProgressReporter()
		observer = progressReporter
	case outputFormat == report.FormatPlain && mode.Kind() == orchestrator.ModeSerial && plan.liveTask != nil:
		liveOutput := newLineTrackingWriter(standardOutput)
		liveTask, liveTaskError := plan.liveTask(liveOutput, standardError)
		if liveTaskError != nil {
			return liveTaskError
		}
		task = liveTask
		streamer = newLiveEntryStreamer(liveOutput, report.NewPlainRenderer(renderOptions), resolution.Targets)
		observer = streamer
	case outputFormat == report.FormatPlain:
		streamer = newOrderedEntryStreamer(standardOutput, report.NewPlainRenderer(renderOptions), resolution.Targets)
		observer = streamer
	}

	invocation, _ := utils.InvocationFrom(command.Context())
	environment.logger.Info(
		runStartedLogMessageConstant,
		zap.String(logFieldCommandConstant, plan.name),
		zap.Stringer(logFieldModeConstant, mode),
		zap.Int(logFieldSelectedConstant, len(resolution.Targets)),
		zap.Int(logFieldRegisteredConstant, len(repositoryRegistry.Repositories)),
		zap.String(logFieldRegistryConstant, environment.store.Path()),
		zap.String(logFieldConfigurationConstant, invocation.ConfigurationFile),
	)

	if progressReporter != nil {
		progressReporter.Start(targetLabels(resolution.Targets, environment.displayPath))
		markUnresolvedTargets(progressReporter, resolution.Targets)
	}

	repositoryOrchestrator := orchestrator.NewOrchestrator(environment.logger, orchestrator.WithObserver(observer), orchestrator.WithClock(environment.clock))
	aggregateReport, runError := repositoryOrchestrator.Run(command.Context(), resolution.Targets, task, mode)

	if progressReporter != nil {
		progressReporter.Stop()
	}
	if runError != nil {
		return fmt.Errorf(runErrorTemplateConstant, runError)
	}

	environment.logger.Info(
		runFinishedLogMessageConstant,
		zap.String(logFieldCommandConstant, plan.name),
		zap.Int(logFieldFailuresConstant, aggregateReport.FailureCount()),
		zap.Duration(logFieldDurationConstant, aggregateReport.Duration().Round(time.Millisecond)),
	)

	if streamer != nil {
		if streamError := streamer.Finish(aggregateReport); streamError != nil {
			return fmt.Errorf(renderErrorTemplateConstant, streamError)
		}
		return report.Summarize(aggregateReport)
	}

	renderer, rendererError := report.NewRenderer(outputFormat, renderOptions)
	if rendererError != nil {
		return rendererError
	}
	if renderError := renderer.Render(standardOutput, aggregateReport); renderError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, renderError)
	}
	return report.Summarize(aggregateReport)
}

func targetLabels(targets []selection.Target, displayPath report.PathDisplay) []string {
	labels := make([]string, 0, len(targets))
	for _, target := range targets {
		label := target.Repository.Name
		if len(target.Repository.Path) > 0 {
			label = displayPath(target.Repository.Path)
		}
		labels = append(labels, label)
	}
	return labels
}

func markUnresolvedTargets(observer orchestrator.Observer, targets []selection.Target) {
	for targetIndex, target := range targets {
		if target.Resolved() {
			continue
		}
		observer.TaskFinished(unresolvedEntry(targetIndex, target))
	}
}

func unresolvedEntry(targetIndex int, target selection.Target) orchestrator.Entry {
	entry := orchestrator.Entry{Index: targetIndex, Repository: target.Repository, State: orchestrator.StateUnresolved}
	if target.Err != nil {
		entry.ResolutionError = *target.Err
	}
	return entry
}

// orderedEntryStreamer writes finished entries as soon as every earlier entry has been written,
// so streamed output keeps resolution order even when repositories finish out of order.
type orderedEntryStreamer struct {
	mutex      sync.Mutex
	writer     io.Writer
	renderer   report.PlainRenderer
	targets    []selection.Target
	finished   map[int]orchestrator.Entry
	nextIndex  int
	writeError error
}

func newOrderedEntryStreamer(writer io.Writer, renderer report.PlainRenderer, targets []selection.Target) *orderedEntryStreamer {
	return &orderedEntryStreamer{
		writer:   writer,
		renderer: renderer,
		targets:  targets,
		finished: make(map[int]orchestrator.Entry, len(targets)),
	}
}

// TaskStarted implements orchestrator.Observer.
func (streamer *orderedEntryStreamer) TaskStarted(orchestrator.Entry) {}

// TaskFinished implements orchestrator.Observer.
func (streamer *orderedEntryStreamer) TaskFinished(entry orchestrator.Entry) {
	streamer.mutex.Lock()
	defer streamer.mutex.Unlock()
	streamer.finished[entry.Index] = entry
	streamer.flush()
}

// Finish writes every entry not yet streamed using the final report.
func (streamer *orderedEntryStreamer) Finish(aggregateReport orchestrator.AggregateReport) error {
	streamer.mutex.Lock()
	defer streamer.mutex.Unlock()
	for _, entry := range aggregateReport.Entries {
		if _, alreadyFinished := streamer.finished[entry.Index]; !alreadyFinished {
			streamer.finished[entry.Index] = entry
		}
	}
	streamer.flush()
	return streamer.writeError
}

func (streamer *orderedEntryStreamer) flush() {
	for streamer.nextIndex < len(streamer.targets) {
		entry, available := streamer.finished[streamer.nextIndex]
		if !available {
			target := streamer.targets[streamer.nextIndex]
			if target.Resolved() {
				return
			}
			entry = unresolvedEntry(streamer.nextIndex, target)
		}
		if streamer.writeError == nil {
			streamer.writeError = streamer.renderer.RenderEntry(streamer.writer, entry)
		}
		streamer.nextIndex++
	}
}

// lineTrackingWriter remembers whether the last byte written ended a line.
type lineTrackingWriter struct {
	mutex   sync.Mutex
	writer  io.Writer
	midLine bool
}

func newLineTrackingWriter(writer io.Writer) *lineTrackingWriter {
	return &lineTrackingWriter{writer: writer}
}

func (tracker *lineTrackingWriter) Write(data []byte) (int, error) {
	tracker.mutex.Lock()
	defer tracker.mutex.Unlock()
	writtenCount, writeError := tracker.writer.Write(data)
	if writtenCount > 0 {
		tracker.midLine = data[writtenCount-1] != '\n'
	}
	return writtenCount, writeError
}

// EndLine terminates a partially written line.
func (tracker *lineTrackingWriter) EndLine() error {
	tracker.mutex.Lock()
	defer tracker.mutex.Unlock()
	if !tracker.midLine {
		return nil
	}
	tracker.midLine = false
	_, writeError := io.WriteString(tracker.writer, "\n")
	return writeError
}

// liveEntryStreamer writes a header when a repository starts so that its process output follows it
// directly, and a result line when it fails. Entries that never start are written whole in resolution order.
type liveEntryStreamer struct {
	mutex       sync.Mutex
	output      *lineTrackingWriter
	renderer    report.PlainRenderer
	targets     []selection.Target
	nextIndex   int
	activeIndex int
	writeError  error
}

func newLiveEntryStreamer(output *lineTrackingWriter, renderer report.PlainRenderer, targets []selection.Target) *liveEntryStreamer {
	return &liveEntryStreamer{output: output, renderer: renderer, targets: targets, activeIndex: -1}
}

// TaskStarted implements orchestrator.Observer.
func (streamer *liveEntryStreamer) TaskStarted(entry orchestrator.Entry) {
	streamer.mutex.Lock()
	defer streamer.mutex.Unlock()
	streamer.writeUnresolvedBefore(entry.Index)
	streamer.record(streamer.renderer.RenderStart(streamer.output, entry))
	streamer.activeIndex = entry.Index
}

// TaskFinished implements orchestrator.Observer.
func (streamer *liveEntryStreamer) TaskFinished(entry orchestrator.Entry) {
	streamer.mutex.Lock()
	defer streamer.mutex.Unlock()
	if entry.Index == streamer.activeIndex {
		streamer.record(streamer.output.EndLine())
		streamer.record(streamer.renderer.RenderFinish(streamer.output, entry))
		streamer.activeIndex = -1
	} else {
		streamer.writeUnresolvedBefore(entry.Index)
		streamer.record(streamer.renderer.RenderEntry(streamer.output, entry))
	}
	streamer.nextIndex = entry.Index + 1
}

// Finish writes the entries after the last one observed.
func (streamer *liveEntryStreamer) Finish(aggregateReport orchestrator.AggregateReport) error {
	streamer.mutex.Lock()
	defer streamer.mutex.Unlock()
	for ; streamer.nextIndex < len(aggregateReport.Entries); streamer.nextIndex++ {
		streamer.record(streamer.renderer.RenderEntry(streamer.output, aggregateReport.Entries[streamer.nextIndex]))
	}
	return streamer.writeError
}

func (streamer *liveEntryStreamer) writeUnresolvedBefore(index int) {
	for ; streamer.nextIndex < index && streamer.nextIndex < len(streamer.targets); streamer.nextIndex++ {
		target := streamer.targets[streamer.nextIndex]
		if target.Resolved() {
			return
		}
		streamer.record(streamer.renderer.RenderEntry(streamer.output, unresolvedEntry(streamer.nextIndex, target)))
	}
}

func (streamer *liveEntryStreamer) record(writeError error) {
	if streamer.writeError == nil {
		streamer.writeError = writeError
	}
}
