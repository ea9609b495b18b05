package repos

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/report"
	"github.com/temirov/lasso/internal/selection"
	"github.com/temirov/lasso/internal/ui"
)

const (
	contextUseConstant                 = "context"
	contextShortDescription            = "Choose the repositories commands operate on"
	contextLongDescription             = "context opens an interactive selector of registered repositories on a terminal and saves the choice as the current context. Without a terminal it shows the current context."
	contextShowUseConstant             = "show"
	contextShowShortDescription        = "Show the current context"
	contextSetUseConstant              = "set <name...>"
	contextSetShortDescription         = "Select the named repositories as the current context"
	contextAllUseConstant              = "all"
	contextAllShortDescription         = "Select every registered repository"
	contextAllLineTemplateConstant     = "context: all %d repositories\n"
	contextEntryTemplateConstant       = "%-*s  %s\n"
	contextUnknownNameTemplateConstant = "%w: '%s'"
	contextSuggestionTemplateConstant  = "%w: '%s' (did you mean %s?)"
	contextSuggestionQuoteTemplate     = "'%s'"
	contextSelectorLabelTemplate       = "%s (%s)"
	contextSuggestionSeparatorConstant = ", "
	contextSelectorCancelledLogMessage = "context selection cancelled"
	contextUpdatedLogMessageConstant   = "context updated"
	logFieldContextSizeConstant        = "context_size"
)

// ContextCommandBuilder assembles the context command group.
type ContextCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the context command with its show, set, and all subcommands.
func (builder *ContextCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   contextUseConstant,
		Short: contextShortDescription,
		Long:  contextLongDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.runInteractive,
	}

	showCommand := &cobra.Command{
		Use:   contextShowUseConstant,
		Short: contextShowShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.runShow,
	}
	setCommand := &cobra.Command{
		Use:   contextSetUseConstant,
		Short: contextSetShortDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.runSet,
	}
	allCommand := &cobra.Command{
		Use:   contextAllUseConstant,
		Short: contextAllShortDescription,
		Args:  cobra.NoArgs,
		RunE:  builder.runAll,
	}
	command.AddCommand(showCommand, setCommand, allCommand)
	return command, nil
}

func (builder *ContextCommandBuilder) load(command *cobra.Command) (commandEnvironment, registry.Registry, bool, error) {
	environment, environmentError := builder.Dependencies.prepare()
	if environmentError != nil {
		return commandEnvironment{}, registry.Registry{}, false, environmentError
	}
	repositoryRegistry, loadError := environment.loadRegistry()
	if loadError != nil {
		return commandEnvironment{}, registry.Registry{}, false, loadError
	}
	if len(repositoryRegistry.Repositories) == 0 {
		announceEmptyRegistry(command)
		return environment, repositoryRegistry, false, nil
	}
	return environment, repositoryRegistry, true, nil
}

func (builder *ContextCommandBuilder) runInteractive(command *cobra.Command, arguments []string) error {
	environment, repositoryRegistry, available, loadError := builder.load(command)
	if loadError != nil || !available {
		return loadError
	}

	if !environment.isInteractive(command.ErrOrStderr()) {
		return writeContext(command.OutOrStdout(), environment, repositoryRegistry)
	}

	items := make([]ui.SelectorItem, 0, len(repositoryRegistry.Repositories))
	for _, repository := range repositoryRegistry.Repositories {
		items = append(items, ui.SelectorItem{
			Name:     repository.Name,
			Label:    fmt.Sprintf(contextSelectorLabelTemplate, repository.Name, environment.displayPath(repository.Path)),
			Selected: repositoryRegistry.InContext(repository.Name),
		})
	}

	selectorResult, selectorError := environment.runContextSelector(items)
	if selectorError != nil {
		return selectorError
	}
	if selectorResult.Cancelled {
		environment.logger.Debug(contextSelectorCancelledLogMessage)
		return nil
	}

	selector := registry.ExplicitRepositories(selectorResult.Names...)
	if len(selectorResult.Names) == len(repositoryRegistry.Repositories) {
		selector = registry.AllRepositories()
	}
	return builder.apply(command, environment, repositoryRegistry, selector)
}

func (builder *ContextCommandBuilder) runShow(command *cobra.Command, arguments []string) error {
	environment, repositoryRegistry, available, loadError := builder.load(command)
	if loadError != nil || !available {
		return loadError
	}
	return writeContext(command.OutOrStdout(), environment, repositoryRegistry)
}

func (builder *ContextCommandBuilder) runSet(command *cobra.Command, arguments []string) error {
	environment, repositoryRegistry, available, loadError := builder.load(command)
	if loadError != nil || !available {
		return loadError
	}

	registeredNames := repositoryRegistry.Names()
	for _, name := range arguments {
		trimmedName := strings.TrimSpace(name)
		if _, registered := repositoryRegistry.FindByName(trimmedName); !registered {
			return unknownContextNameError(trimmedName, registeredNames)
		}
	}
	return builder.apply(command, environment, repositoryRegistry, registry.ExplicitRepositories(arguments...))
}

func (builder *ContextCommandBuilder) runAll(command *cobra.Command, arguments []string) error {
	environment, repositoryRegistry, available, loadError := builder.load(command)
	if loadError != nil || !available {
		return loadError
	}
	return builder.apply(command, environment, repositoryRegistry, registry.AllRepositories())
}

func (builder *ContextCommandBuilder) apply(command *cobra.Command, environment commandEnvironment, repositoryRegistry registry.Registry, selector registry.ContextSelector) error {
	if setError := repositoryRegistry.SetContext(selector); setError != nil {
		return setError
	}
	if saveError := environment.saveRegistry(repositoryRegistry); saveError != nil {
		return saveError
	}
	environment.logger.Info(contextUpdatedLogMessageConstant, zap.Int(logFieldContextSizeConstant, repositoryRegistry.ContextSize()))
	return writeContext(command.OutOrStdout(), environment, repositoryRegistry)
}

func writeContext(writer io.Writer, environment commandEnvironment, repositoryRegistry registry.Registry) error {
	if repositoryRegistry.Context.All {
		if _, writeError := fmt.Fprintf(writer, contextAllLineTemplateConstant, len(repositoryRegistry.Repositories)); writeError != nil {
			return writeError
		}
	} else if writeError := report.WriteContextLine(writer, repositoryRegistry.ContextSize(), len(repositoryRegistry.Repositories), false); writeError != nil {
		return writeError
	}

	var selectedRepositories []registry.RepositoryRef
	nameWidth := 0
	for _, repository := range repositoryRegistry.Repositories {
		if !repositoryRegistry.InContext(repository.Name) {
			continue
		}
		selectedRepositories = append(selectedRepositories, repository)
		nameWidth = max(nameWidth, len(repository.Name))
	}
	for _, repository := range selectedRepositories {
		if _, writeError := fmt.Fprintf(writer, contextEntryTemplateConstant, nameWidth, repository.Name, environment.displayPath(repository.Path)); writeError != nil {
			return writeError
		}
	}
	return nil
}

func unknownContextNameError(name string, registeredNames []string) error {
	suggestions := selection.Suggest(name, registeredNames)
	if len(suggestions) == 0 {
		return fmt.Errorf(contextUnknownNameTemplateConstant, selection.ErrRepositoryNotRegistered, name)
	}
	quotedSuggestions := make([]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		quotedSuggestions = append(quotedSuggestions, fmt.Sprintf(contextSuggestionQuoteTemplate, suggestion))
	}
	return fmt.Errorf(contextSuggestionTemplateConstant, selection.ErrRepositoryNotRegistered, name, strings.Join(quotedSuggestions, contextSuggestionSeparatorConstant))
}
