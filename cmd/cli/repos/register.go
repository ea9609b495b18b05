package repos

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/repos/dependencies"
	"github.com/temirov/lasso/internal/repos/shared"
	pathutils "github.com/temirov/lasso/internal/utils/path"
)

const (
	registerUseConstant                    = "register <path>"
	registerShortDescription               = "Register every git repository found beneath a directory"
	registerLongDescription                = "register walks the given directory, stops descending at each git repository it finds, and adds every new repository to the registry under a unique name."
	registerRegisteredTemplateConstant     = "%s: registered"
	registerAlreadyTemplateConstant        = "%s: already registered"
	registerNothingFoundTemplateConstant   = "No repositories discovered in '%s'"
	registerDiscoveryErrorTemplateConstant = "unable to discover repositories: %w"
	registerAddErrorTemplateConstant       = "unable to register %s: %w"
	registerLogMessageConstant             = "repositories registered"
	logFieldRootConstant                   = "root"
	logFieldDiscoveredConstant             = "discovered"
	logFieldAddedConstant                  = "added"
)

// RegisterCommandBuilder assembles the register command.
type RegisterCommandBuilder struct {
	Dependencies Dependencies
}

// Build constructs the register command.
func (builder *RegisterCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   registerUseConstant,
		Short: registerShortDescription,
		Long:  registerLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *RegisterCommandBuilder) run(command *cobra.Command, arguments []string) error {
	environment, environmentError := builder.Dependencies.prepare()
	if environmentError != nil {
		return environmentError
	}

	roots := pathutils.PruneNested(pathutils.NewPathNormalizer(environment.homeExpander).NormalizeAll(arguments))
	if len(roots) == 0 {
		_ = displayCommandHelp(command)
		return errMissingArguments
	}

	discoverer := dependencies.ResolveRepositoryDiscoverer(builder.Dependencies.Discoverer)
	discoveredPaths, discoveryError := discoverer.DiscoverRepositories(roots)
	if discoveryError != nil {
		return fmt.Errorf(registerDiscoveryErrorTemplateConstant, discoveryError)
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	if len(discoveredPaths) == 0 {
		reporter.Printf(registerNothingFoundTemplateConstant, arguments[0])
		return nil
	}

	repositoryRegistry, loadError := environment.loadRegistry()
	if loadError != nil {
		return loadError
	}

	addedCount := 0
	for _, discoveredPath := range discoveredPaths {
		displayedPath := environment.displayPath(discoveredPath)
		if _, alreadyRegistered := repositoryRegistry.FindByPath(discoveredPath); alreadyRegistered {
			reporter.Printf(registerAlreadyTemplateConstant, displayedPath)
			continue
		}
		repository := registry.RepositoryRef{Name: repositoryRegistry.DeriveName(discoveredPath), Path: discoveredPath}
		if addError := repositoryRegistry.Add(repository); addError != nil {
			return fmt.Errorf(registerAddErrorTemplateConstant, displayedPath, addError)
		}
		addedCount++
		reporter.Printf(registerRegisteredTemplateConstant, displayedPath)
	}

	environment.logger.Info(
		registerLogMessageConstant,
		zap.String(logFieldRootConstant, roots[0]),
		zap.Int(logFieldDiscoveredConstant, len(discoveredPaths)),
		zap.Int(logFieldAddedConstant, addedCount),
	)

	if addedCount == 0 {
		return nil
	}
	return environment.saveRegistry(repositoryRegistry)
}
