package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/temirov/lasso/internal/orchestrator"
)

const (
	progressSucceededSymbolConstant  = "✓"
	progressFailedSymbolConstant     = "✗"
	progressPendingSymbolConstant    = " "
	progressLineTemplateConstant     = "%s %s"
	progressCompactTemplateConstant  = "%s running [%d/%d complete]"
	progressStopTimeoutConstant      = 500 * time.Millisecond
	progressCompactThresholdConstant = 24
	progressSucceededColorConstant   = "2"
	progressFailedColorConstant      = "1"
	progressHeightReserveConstant    = 2
)

type progressLineState int

const (
	progressLinePending progressLineState = iota
	progressLineRunning
	progressLineSucceeded
	progressLineFailed
)

type progressLine struct {
	label string
	state progressLineState
}

type progressTaskStartedMsg struct {
	index int
}

type progressTaskFinishedMsg struct {
	index     int
	succeeded bool
}

type progressDoneMsg struct{}

type progressModel struct {
	spinner  spinner.Model
	lines    []progressLine
	compact  bool
	finished int
	done     bool
}

func newProgressModel(labels []string) progressModel {
	progressSpinner := spinner.New()
	progressSpinner.Spinner = spinner.Dot

	lines := make([]progressLine, 0, len(labels))
	for _, label := range labels {
		lines = append(lines, progressLine{label: label})
	}
	return progressModel{spinner: progressSpinner, lines: lines, compact: len(lines) > progressCompactThresholdConstant}
}

func (model progressModel) Init() tea.Cmd {
	return model.spinner.Tick
}

func (model progressModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case progressTaskStartedMsg:
		if model.validIndex(typedMessage.index) && model.lines[typedMessage.index].state == progressLinePending {
			model.lines[typedMessage.index].state = progressLineRunning
		}
		return model, nil
	case progressTaskFinishedMsg:
		if !model.validIndex(typedMessage.index) {
			return model, nil
		}
		if model.lines[typedMessage.index].state == progressLinePending || model.lines[typedMessage.index].state == progressLineRunning {
			model.finished++
		}
		if typedMessage.succeeded {
			model.lines[typedMessage.index].state = progressLineSucceeded
		} else {
			model.lines[typedMessage.index].state = progressLineFailed
		}
		return model, nil
	case tea.WindowSizeMsg:
		model.compact = len(model.lines) > progressCompactThresholdConstant || len(model.lines)+progressHeightReserveConstant > typedMessage.Height
		return model, nil
	case progressDoneMsg:
		model.done = true
		return model, tea.Quit
	default:
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command
	}
}

func (model progressModel) View() tea.View {
	if model.done {
		return tea.NewView(model.render(true))
	}
	return tea.NewView(model.render(false))
}

func (model progressModel) render(final bool) string {
	if model.compact {
		if final {
			return ""
		}
		return fmt.Sprintf(progressCompactTemplateConstant, model.spinner.View(), model.finished, len(model.lines))
	}

	renderedLines := make([]string, 0, len(model.lines))
	for _, line := range model.lines {
		renderedLines = append(renderedLines, fmt.Sprintf(progressLineTemplateConstant, model.symbol(line.state), line.label))
	}
	return strings.Join(renderedLines, "\n")
}

func (model progressModel) symbol(state progressLineState) string {
	switch state {
	case progressLineRunning:
		return model.spinner.View()
	case progressLineSucceeded:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(progressSucceededColorConstant)).Render(progressSucceededSymbolConstant)
	case progressLineFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(progressFailedColorConstant)).Render(progressFailedSymbolConstant)
	default:
		return progressPendingSymbolConstant
	}
}

func (model progressModel) validIndex(index int) bool {
	return index >= 0 && index < len(model.lines)
}

// ProgressReporter draws one spinner line per repository on standard error while a run is in flight.
// It implements orchestrator.Observer.
type ProgressReporter struct {
	mutex     sync.Mutex
	program   *tea.Program
	done      chan struct{}
	isRunning bool
}

// NewProgressReporter constructs an idle reporter.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{}
}

// Start begins rendering with one line per label, in resolution order.
func (reporter *ProgressReporter) Start(labels []string) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()

	if reporter.isRunning {
		return
	}

	reporter.program = tea.NewProgram(
		newProgressModel(labels),
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
		tea.WithColorProfile(detectColorProfile(os.Stderr)),
		tea.WithoutSignalHandler(),
	)
	reporter.done = make(chan struct{})
	reporter.isRunning = true

	program := reporter.program
	done := reporter.done
	go func() {
		_, _ = program.Run()
		close(done)
	}()
}

// TaskStarted marks the entry as running.
func (reporter *ProgressReporter) TaskStarted(entry orchestrator.Entry) {
	reporter.send(progressTaskStartedMsg{index: entry.Index})
}

// TaskFinished marks the entry as succeeded or failed.
func (reporter *ProgressReporter) TaskFinished(entry orchestrator.Entry) {
	reporter.send(progressTaskFinishedMsg{index: entry.Index, succeeded: entry.Succeeded()})
}

// Stop renders the final state and releases the terminal.
func (reporter *ProgressReporter) Stop() {
	reporter.mutex.Lock()
	if !reporter.isRunning {
		reporter.mutex.Unlock()
		return
	}
	reporter.isRunning = false
	program := reporter.program
	done := reporter.done
	reporter.mutex.Unlock()

	program.Send(progressDoneMsg{})
	select {
	case <-done:
	case <-time.After(progressStopTimeoutConstant):
		program.Kill()
	}
}

func (reporter *ProgressReporter) send(message tea.Msg) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	if !reporter.isRunning {
		return
	}
	reporter.program.Send(message)
}
