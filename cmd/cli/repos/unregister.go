package repos

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/repos/shared"
	pathutils "github.com/temirov/lasso/internal/utils/path"
)

const (
	unregisterUseConstant                = "unregister [<name|path>...]"
	unregisterShortDescription           = "Remove repositories from the registry"
	unregisterLongDescription            = "unregister removes repositories by registered name, or every registered repository at or beneath a path. The path does not need to exist anymore. With --keep-context it removes every repository outside the current context."
	unregisterKeepContextFlagName        = "keep-context"
	unregisterKeepContextFlagDescription = "Keep the current context and discard unselected repositories"
	unregisterRemovedTemplateConstant    = "%s: unregistered"
	unregisterMissingTemplateConstant    = "%s: not registered"
	unregisterLogMessageConstant         = "repositories unregistered"
	logFieldRemovedConstant              = "removed"
)

// UnregisterCommandBuilder assembles the unregister command.
type UnregisterCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the unregister command.
func (builder *UnregisterCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   unregisterUseConstant,
		Short: unregisterShortDescription,
		Long:  unregisterLongDescription,
		RunE:  builder.run,
	}
	command.Flags().Bool(unregisterKeepContextFlagName, false, unregisterKeepContextFlagDescription)
	return command, nil
}

func (builder *UnregisterCommandBuilder) run(command *cobra.Command, arguments []string) error {
	keepContext, _ := command.Flags().GetBool(unregisterKeepContextFlagName)
	if len(arguments) == 0 && !keepContext {
		_ = displayCommandHelp(command)
		return errMissingArguments
	}

	environment, environmentError := builder.Dependencies.prepare()
	if environmentError != nil {
		return environmentError
	}

	repositoryRegistry, loadError := environment.loadRegistry()
	if loadError != nil {
		return loadError
	}
	if len(repositoryRegistry.Repositories) == 0 {
		announceEmptyRegistry(command)
		return nil
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	removedCount := 0
	contextChanged := false
	removeRepository := func(repository registry.RepositoryRef) {
		if repositoryRegistry.Remove(repository.Name) {
			removedCount++
			reporter.Printf(unregisterRemovedTemplateConstant, environment.displayPath(repository.Path))
		}
	}

	for _, argument := range arguments {
		if repository, registeredByName := repositoryRegistry.FindByName(argument); registeredByName {
			removeRepository(repository)
			continue
		}

		matchingRepositories := environment.repositoriesBeneath(repositoryRegistry, argument)
		if len(matchingRepositories) == 0 {
			reporter.Printf(unregisterMissingTemplateConstant, argument)
			continue
		}
		for _, repository := range matchingRepositories {
			removeRepository(repository)
		}
	}

	if keepContext && !repositoryRegistry.Context.All {
		for _, repository := range append([]registry.RepositoryRef{}, repositoryRegistry.Repositories...) {
			if !repositoryRegistry.InContext(repository.Name) {
				removeRepository(repository)
			}
		}
		if setError := repositoryRegistry.SetContext(registry.AllRepositories()); setError != nil {
			return setError
		}
		contextChanged = true
	}

	environment.logger.Info(unregisterLogMessageConstant, zap.Int(logFieldRemovedConstant, removedCount))

	if removedCount == 0 && !contextChanged {
		return nil
	}
	return environment.saveRegistry(repositoryRegistry)
}

// repositoriesBeneath lists registered repositories located at or beneath path. Both the literal absolute
// path and its symlink-resolved form are compared so vanished directories still match.
func (environment commandEnvironment) repositoriesBeneath(repositoryRegistry registry.Registry, path string) []registry.RepositoryRef {
	absolutePath, present := pathutils.NewPathNormalizer(environment.homeExpander).Normalize(path)
	if !present {
		return nil
	}

	candidateParents := []string{absolutePath}
	if resolvedPath, resolveError := environment.fileSystem.EvalSymlinks(absolutePath); resolveError == nil && resolvedPath != absolutePath {
		candidateParents = append(candidateParents, resolvedPath)
	}

	var matchingRepositories []registry.RepositoryRef
	for _, repository := range repositoryRegistry.Repositories {
		for _, candidateParent := range candidateParents {
			if pathutils.IsWithin(candidateParent, repository.Path) {
				matchingRepositories = append(matchingRepositories, repository)
				break
			}
		}
	}
	return matchingRepositories
}
