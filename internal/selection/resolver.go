package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/repos/shared"
)

const (
	resolutionErrorTemplateConstant     = "%s: %v"
	suggestionTemplateConstant          = "%w (did you mean %s?)"
	pathMissingTemplateConstant         = "%w: %s"
	pathNotDirectoryTemplateConstant    = "%w: %s is not a directory"
	suggestionSeparatorConstant         = ", "
	suggestionQuoteTemplateConstant     = "'%s'"
	maximumSuggestionCountConstant      = 3
	fileSystemNotConfiguredErrorMessage = "selection resolver filesystem not configured"
)

var (
	// ErrRepositoryNotRegistered indicates that a selected name is absent from the registry.
	ErrRepositoryNotRegistered = errors.New("repository not registered")
	// ErrRepositoryPathMissing indicates that a registered path no longer exists or is not a directory.
	ErrRepositoryPathMissing = errors.New("repository path missing")
	// ErrFileSystemNotConfigured indicates that the resolver was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredErrorMessage)
)

// ResolutionError reports why a single selected repository could not be resolved.
type ResolutionError struct {
	Name  string
	Cause error
}

// Error describes the failure together with the repository name.
func (resolutionError ResolutionError) Error() string {
	return fmt.Sprintf(resolutionErrorTemplateConstant, resolutionError.Name, resolutionError.Cause)
}

// Unwrap exposes the underlying sentinel for errors.Is.
func (resolutionError ResolutionError) Unwrap() error {
	return resolutionError.Cause
}

// Target is one position of a Resolution. Err is nil when Repository is usable.
type Target struct {
	Repository registry.RepositoryRef
	Err        *ResolutionError
}

// Resolved reports whether the target can be executed.
func (target Target) Resolved() bool {
	return target.Err == nil
}

// Resolution is the ordered outcome of resolving a context selector.
type Resolution struct {
	Targets []Target
}

// Repositories returns the resolved repositories in resolution order.
func (resolution Resolution) Repositories() []registry.RepositoryRef {
	repositories := make([]registry.RepositoryRef, 0, len(resolution.Targets))
	for _, target := range resolution.Targets {
		if target.Resolved() {
			repositories = append(repositories, target.Repository)
		}
	}
	return repositories
}

// Errors returns the resolution errors in resolution order.
func (resolution Resolution) Errors() []ResolutionError {
	resolutionErrors := make([]ResolutionError, 0)
	for _, target := range resolution.Targets {
		if !target.Resolved() {
			resolutionErrors = append(resolutionErrors, *target.Err)
		}
	}
	return resolutionErrors
}

// Resolver maps a registry and a ContextSelector to targets.
type Resolver struct {
	fileSystem shared.PathInspector
}

// NewResolver constructs a Resolver that validates repository paths through the provided filesystem.
func NewResolver(fileSystem shared.PathInspector) (*Resolver, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Resolver{fileSystem: fileSystem}, nil
}

// Resolve produces the ordered targets for selector. Registry order is used for the All selector and selector
// order otherwise; repeated names keep their first position only.
func (resolver *Resolver) Resolve(repositoryRegistry registry.Registry, selector registry.ContextSelector) Resolution {
	if selector.All {
		targets := make([]Target, 0, len(repositoryRegistry.Repositories))
		for _, repository := range repositoryRegistry.Repositories {
			targets = append(targets, resolver.resolveRepository(repository))
		}
		return Resolution{Targets: targets}
	}

	registeredNames := repositoryRegistry.Names()
	seenNames := make(map[string]struct{}, len(selector.Names))
	targets := make([]Target, 0, len(selector.Names))
	for _, rawName := range selector.Names {
		name := strings.TrimSpace(rawName)
		if len(name) == 0 {
			continue
		}
		if _, seen := seenNames[name]; seen {
			continue
		}
		seenNames[name] = struct{}{}

		repository, found := repositoryRegistry.FindByName(name)
		if !found {
			targets = append(targets, Target{
				Repository: registry.RepositoryRef{Name: name},
				Err:        &ResolutionError{Name: name, Cause: notRegisteredError(name, registeredNames)},
			})
			continue
		}
		targets = append(targets, resolver.resolveRepository(repository))
	}
	return Resolution{Targets: targets}
}

func (resolver *Resolver) resolveRepository(repository registry.RepositoryRef) Target {
	fileInfo, statError := resolver.fileSystem.Stat(repository.Path)
	if statError != nil {
		return Target{
			Repository: repository,
			Err:        &ResolutionError{Name: repository.Name, Cause: fmt.Errorf(pathMissingTemplateConstant, ErrRepositoryPathMissing, repository.Path)},
		}
	}
	if !fileInfo.IsDir() {
		return Target{
			Repository: repository,
			Err:        &ResolutionError{Name: repository.Name, Cause: fmt.Errorf(pathNotDirectoryTemplateConstant, ErrRepositoryPathMissing, repository.Path)},
		}
	}
	return Target{Repository: repository}
}

func notRegisteredError(name string, registeredNames []string) error {
	suggestions := Suggest(name, registeredNames)
	if len(suggestions) == 0 {
		return ErrRepositoryNotRegistered
	}
	quotedSuggestions := make([]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		quotedSuggestions = append(quotedSuggestions, fmt.Sprintf(suggestionQuoteTemplateConstant, suggestion))
	}
	return fmt.Errorf(suggestionTemplateConstant, ErrRepositoryNotRegistered, strings.Join(quotedSuggestions, suggestionSeparatorConstant))
}

// Suggest returns up to three registered names that fuzzily match name, best match first.
func Suggest(name string, registeredNames []string) []string {
	matches := fuzzy.Find(name, registeredNames)
	suggestions := make([]string, 0, maximumSuggestionCountConstant)
	for _, match := range matches {
		if len(suggestions) == maximumSuggestionCountConstant {
			break
		}
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}
