package repos

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/repos/dependencies"
	"github.com/temirov/lasso/internal/repos/shared"
	"github.com/temirov/lasso/internal/ui"
	pathutils "github.com/temirov/lasso/internal/utils/path"
)

const (
	noRepositoriesRegisteredMessageConstant = "No repositories registered: use the 'register' command"
	registryLoadErrorTemplateConstant       = "unable to load registry: %w"
	registrySaveErrorTemplateConstant       = "unable to save registry: %w"
	registryStoreErrorTemplateConstant      = "unable to open registry: %w"
	taskRunnerErrorTemplateConstant         = "unable to prepare command runner: %w"
	missingArgumentsErrorMessageConstant    = "at least one argument is required"
)

// errMissingArguments indicates a command that requires positional arguments received none.
var errMissingArguments = errors.New(missingArgumentsErrorMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the repository command configuration.
type ConfigurationProvider func() Configuration

// TerminalDetector reports whether writer is attached to a terminal with the required capability.
type TerminalDetector func(writer io.Writer) bool

// ContextSelectorRunner shows the interactive context selector and returns the user's choice.
type ContextSelectorRunner func(items []ui.SelectorItem) (ui.SelectorResult, error)

// Dependencies groups the collaborators shared by repository commands. Nil fields fall back to
// operating system implementations.
type Dependencies struct {
	LoggerProvider        LoggerProvider
	ConsoleLoggerProvider LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            shared.FileSystem
	CommandRunner         execshell.CommandRunner
	Discoverer            shared.RepositoryDiscoverer
	Clock                 shared.Clock
	HomeExpander          *pathutils.HomeExpander
	InteractiveDetector   TerminalDetector
	StylingDetector       TerminalDetector
	ContextSelector       ContextSelectorRunner
}

type commandEnvironment struct {
	logger        *zap.Logger
	consoleLogger *zap.Logger
	configuration Configuration
	fileSystem    shared.FileSystem
	clock         shared.Clock
	homeExpander  *pathutils.HomeExpander
	store         *registry.Store
	dependencies  Dependencies
}

func (dependencySet Dependencies) prepare() (commandEnvironment, error) {
	configuration := DefaultConfiguration("")
	if dependencySet.ConfigurationProvider != nil {
		configuration = dependencySet.ConfigurationProvider()
	}
	configuration = configuration.sanitize()

	homeExpander := dependencySet.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	fileSystem := dependencies.ResolveFileSystem(dependencySet.FileSystem)
	store, storeError := registry.NewStore(homeExpander.Expand(configuration.Registry.Path), fileSystem)
	if storeError != nil {
		return commandEnvironment{}, fmt.Errorf(registryStoreErrorTemplateConstant, storeError)
	}

	return commandEnvironment{
		logger:        resolveLogger(dependencySet.LoggerProvider),
		consoleLogger: resolveLogger(dependencySet.ConsoleLoggerProvider),
		configuration: configuration,
		fileSystem:    fileSystem,
		clock:         dependencies.ResolveClock(dependencySet.Clock),
		homeExpander:  homeExpander,
		store:         store,
		dependencies:  dependencySet,
	}, nil
}

func (environment commandEnvironment) loadRegistry() (registry.Registry, error) {
	repositoryRegistry, loadError := environment.store.Load()
	if loadError != nil {
		return registry.Registry{}, fmt.Errorf(registryLoadErrorTemplateConstant, loadError)
	}
	return repositoryRegistry, nil
}

func (environment commandEnvironment) saveRegistry(repositoryRegistry registry.Registry) error {
	if saveError := environment.store.Save(repositoryRegistry); saveError != nil {
		return fmt.Errorf(registrySaveErrorTemplateConstant, saveError)
	}
	return nil
}

func (environment commandEnvironment) displayPath(path string) string {
	return environment.homeExpander.Shorten(path)
}

func (environment commandEnvironment) newTaskRunner(extraOptions ...execshell.TaskRunnerOption) (*execshell.TaskRunner, error) {
	options := []execshell.TaskRunnerOption{
		execshell.WithCommandEventObserver(ui.NewRepositoryEventLogger(environment.consoleLogger, environment.displayPath)),
		execshell.WithGitExecutable(environment.configuration.Execution.GitExecutable),
		execshell.WithClock(environment.clock),
	}
	taskRunner, creationError := execshell.NewTaskRunner(
		environment.logger,
		dependencies.ResolveCommandRunner(environment.dependencies.CommandRunner),
		append(options, extraOptions...)...,
	)
	if creationError != nil {
		return nil, fmt.Errorf(taskRunnerErrorTemplateConstant, creationError)
	}
	return taskRunner, nil
}

func (environment commandEnvironment) isInteractive(writer io.Writer) bool {
	if environment.dependencies.InteractiveDetector != nil {
		return environment.dependencies.InteractiveDetector(writer)
	}
	file, isFile := writer.(*os.File)
	return isFile && ui.IsInteractiveTerminal(file)
}

func (environment commandEnvironment) supportsStyling(writer io.Writer) bool {
	if environment.dependencies.StylingDetector != nil {
		return environment.dependencies.StylingDetector(writer)
	}
	file, isFile := writer.(*os.File)
	return isFile && ui.SupportsStyling(file)
}

func (environment commandEnvironment) runContextSelector(items []ui.SelectorItem) (ui.SelectorResult, error) {
	if environment.dependencies.ContextSelector != nil {
		return environment.dependencies.ContextSelector(items)
	}
	return ui.RunContextSelector(items)
}

func announceEmptyRegistry(command *cobra.Command) {
	fmt.Fprintln(command.OutOrStdout(), noRepositoriesRegisteredMessageConstant)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}
