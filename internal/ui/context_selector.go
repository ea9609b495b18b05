package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const (
	selectorHelpLineConstant          = "up/down move, left/right page, space toggle, + all, - none, enter confirm, esc cancel"
	selectorCheckedTemplateConstant   = "[✓] %s"
	selectorUncheckedTemplateConstant = "[ ] %s"
	selectorPageTemplateConstant      = "[Page %d/%d] "
	selectorSelectedTemplateConstant  = "[Selected %d/%d]"
	selectorCursorPrefixConstant      = "> "
	selectorPlainPrefixConstant       = "  "
	selectorDefaultPageSizeConstant   = 10
	selectorHeightReserveConstant     = 3
	selectorUnexpectedModelMessage    = "context selector returned an unexpected model"
	selectorHighlightColorConstant    = "4"
	selectorDimColorConstant          = "8"
)

// ErrSelectorUnavailable indicates the selector program returned an unexpected model.
var ErrSelectorUnavailable = errors.New(selectorUnexpectedModelMessage)

// SelectorItem is one checkbox line of the context selector.
type SelectorItem struct {
	Name     string
	Label    string
	Selected bool
}

// SelectorResult reports the choice made in the context selector.
type SelectorResult struct {
	Names     []string
	Cancelled bool
}

type contextSelectorModel struct {
	items     []SelectorItem
	cursor    int
	pageSize  int
	confirmed bool
	cancelled bool
}

func newContextSelectorModel(items []SelectorItem) contextSelectorModel {
	copiedItems := append([]SelectorItem{}, items...)
	pageSize := selectorDefaultPageSizeConstant
	if len(copiedItems) < pageSize && len(copiedItems) > 0 {
		pageSize = len(copiedItems)
	}
	return contextSelectorModel{items: copiedItems, pageSize: pageSize}
}

func (model contextSelectorModel) Init() tea.Cmd {
	return nil
}

func (model contextSelectorModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch typedMessage := message.(type) {
	case tea.WindowSizeMsg:
		model.pageSize = max(1, min(len(model.items), typedMessage.Height-selectorHeightReserveConstant))
		return model, nil
	case tea.KeyPressMsg:
		return model.handleKey(typedMessage.String())
	}
	return model, nil
}

func (model contextSelectorModel) handleKey(key string) (tea.Model, tea.Cmd) {
	lastIndex := len(model.items) - 1
	switch key {
	case "up", "k":
		if model.cursor > 0 {
			model.cursor--
		}
	case "down", "j":
		if model.cursor < lastIndex {
			model.cursor++
		}
	case "left", "h":
		model.cursor = max(0, model.cursor-model.pageSize)
	case "right", "l":
		model.cursor = max(0, min(lastIndex, model.cursor+model.pageSize))
	case "space", " ":
		if lastIndex >= 0 {
			model.items = append([]SelectorItem{}, model.items...)
			model.items[model.cursor].Selected = !model.items[model.cursor].Selected
		}
	case "+":
		model.items = setAllSelected(model.items, true)
	case "-":
		model.items = setAllSelected(model.items, false)
	case "enter":
		model.confirmed = true
		return model, tea.Quit
	case "esc", "ctrl+c", "q":
		model.cancelled = true
		return model, tea.Quit
	}
	return model, nil
}

func setAllSelected(items []SelectorItem, selected bool) []SelectorItem {
	updatedItems := append([]SelectorItem{}, items...)
	for itemIndex := range updatedItems {
		updatedItems[itemIndex].Selected = selected
	}
	return updatedItems
}

func (model contextSelectorModel) View() tea.View {
	if model.confirmed || model.cancelled {
		return tea.NewView("")
	}

	var builder strings.Builder
	builder.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(selectorDimColorConstant)).Render(selectorHelpLineConstant))
	builder.WriteString("\n")
	builder.WriteString(model.pageInfo())
	builder.WriteString("\n")

	pageStart, pageEnd := model.pageBounds()
	highlightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(selectorHighlightColorConstant)).Bold(true)
	for itemIndex := pageStart; itemIndex < pageEnd; itemIndex++ {
		item := model.items[itemIndex]
		line := fmt.Sprintf(selectorUncheckedTemplateConstant, item.Label)
		if item.Selected {
			line = fmt.Sprintf(selectorCheckedTemplateConstant, item.Label)
		}
		if itemIndex == model.cursor {
			builder.WriteString(selectorCursorPrefixConstant + highlightStyle.Render(line))
		} else {
			builder.WriteString(selectorPlainPrefixConstant + line)
		}
		builder.WriteString("\n")
	}
	return tea.NewView(builder.String())
}

func (model contextSelectorModel) pageBounds() (int, int) {
	if len(model.items) == 0 {
		return 0, 0
	}
	pageStart := (model.cursor / model.pageSize) * model.pageSize
	return pageStart, min(len(model.items), pageStart+model.pageSize)
}

func (model contextSelectorModel) pageInfo() string {
	selectedCount := 0
	for _, item := range model.items {
		if item.Selected {
			selectedCount++
		}
	}

	var builder strings.Builder
	if len(model.items) > model.pageSize {
		pageCount := (len(model.items)-1)/model.pageSize + 1
		builder.WriteString(fmt.Sprintf(selectorPageTemplateConstant, model.cursor/model.pageSize+1, pageCount))
	}
	builder.WriteString(fmt.Sprintf(selectorSelectedTemplateConstant, selectedCount, len(model.items)))
	return builder.String()
}

func (model contextSelectorModel) result() SelectorResult {
	if model.cancelled || !model.confirmed {
		return SelectorResult{Cancelled: true}
	}
	names := make([]string, 0, len(model.items))
	for _, item := range model.items {
		if item.Selected {
			names = append(names, item.Name)
		}
	}
	return SelectorResult{Names: names}
}

// RunContextSelector shows the checkbox selector on standard error and returns the chosen names in list order.
func RunContextSelector(items []SelectorItem) (SelectorResult, error) {
	if len(items) == 0 {
		return SelectorResult{Cancelled: true}, nil
	}

	program := tea.NewProgram(
		newContextSelectorModel(items),
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(detectColorProfile(os.Stderr)),
	)
	finalModel, runError := program.Run()
	if runError != nil {
		return SelectorResult{}, runError
	}

	selectorModel, ok := finalModel.(contextSelectorModel)
	if !ok {
		return SelectorResult{}, ErrSelectorUnavailable
	}
	return selectorModel.result(), nil
}
