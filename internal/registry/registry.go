package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	derivedNameSeparatorConstant          = "-"
	derivedNameFirstNumericSuffixConstant = 2
	duplicateNameErrorTemplateConstant    = "%w: %s"
	duplicatePathErrorTemplateConstant    = "%w: %s"
	relativePathErrorTemplateConstant     = "%w: %s"
	unknownContextNameErrorTemplate       = "%w: %s"
)

var (
	// ErrRepositoryNameRequired indicates an attempt to register a repository without a name.
	ErrRepositoryNameRequired = errors.New("repository name is required")
	// ErrRepositoryPathNotAbsolute indicates an attempt to register a relative repository path.
	ErrRepositoryPathNotAbsolute = errors.New("repository path must be absolute")
	// ErrDuplicateRepositoryName indicates the name is already taken by another registered repository.
	ErrDuplicateRepositoryName = errors.New("repository name already registered")
	// ErrDuplicateRepositoryPath indicates the path is already registered.
	ErrDuplicateRepositoryPath = errors.New("repository path already registered")
	// ErrUnknownContextRepository indicates a context references a name absent from the registry.
	ErrUnknownContextRepository = errors.New("context references unregistered repository")
)

// RepositoryRef identifies one managed repository.
type RepositoryRef struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Path string `json:"path" yaml:"path" toml:"path"`
}

// ContextSelector chooses the repositories an operation targets when no ad-hoc selection is supplied.
type ContextSelector struct {
	All   bool     `json:"all" yaml:"all" toml:"all"`
	Names []string `json:"repositories,omitempty" yaml:"repositories,omitempty" toml:"repositories,omitempty"`
}

// AllRepositories selects every registered repository in registry order.
func AllRepositories() ContextSelector {
	return ContextSelector{All: true}
}

// ExplicitRepositories selects the named repositories in the given order.
func ExplicitRepositories(names ...string) ContextSelector {
	duplicatedNames := make([]string, 0, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		duplicatedNames = append(duplicatedNames, trimmedName)
	}
	return ContextSelector{Names: duplicatedNames}
}

// Registry is the persisted list of managed repositories together with the current context.
type Registry struct {
	Repositories []RepositoryRef `json:"repositories" yaml:"repositories" toml:"repositories"`
	Context      ContextSelector `json:"context" yaml:"context" toml:"context"`
}

// New returns an empty registry whose context selects everything.
func New() Registry {
	return Registry{Repositories: []RepositoryRef{}, Context: AllRepositories()}
}

// Clone returns a deep copy so callers can mutate without affecting shared values.
func (repositoryRegistry Registry) Clone() Registry {
	clonedRepositories := make([]RepositoryRef, len(repositoryRegistry.Repositories))
	copy(clonedRepositories, repositoryRegistry.Repositories)

	clonedContext := ContextSelector{All: repositoryRegistry.Context.All}
	if repositoryRegistry.Context.Names != nil {
		clonedContext.Names = append([]string{}, repositoryRegistry.Context.Names...)
	}

	return Registry{Repositories: clonedRepositories, Context: clonedContext}
}

// FindByName returns the repository registered under name.
func (repositoryRegistry Registry) FindByName(name string) (RepositoryRef, bool) {
	for _, repository := range repositoryRegistry.Repositories {
		if repository.Name == name {
			return repository, true
		}
	}
	return RepositoryRef{}, false
}

// FindByPath returns the repository registered at path.
func (repositoryRegistry Registry) FindByPath(path string) (RepositoryRef, bool) {
	cleanedPath := filepath.Clean(path)
	for _, repository := range repositoryRegistry.Repositories {
		if filepath.Clean(repository.Path) == cleanedPath {
			return repository, true
		}
	}
	return RepositoryRef{}, false
}

// Names lists registered repository names in registry order.
func (repositoryRegistry Registry) Names() []string {
	names := make([]string, 0, len(repositoryRegistry.Repositories))
	for _, repository := range repositoryRegistry.Repositories {
		names = append(names, repository.Name)
	}
	return names
}

// Add registers a repository, rejecting duplicate names and paths.
func (repositoryRegistry *Registry) Add(repository RepositoryRef) error {
	if len(strings.TrimSpace(repository.Name)) == 0 {
		return ErrRepositoryNameRequired
	}
	if !filepath.IsAbs(repository.Path) {
		return fmt.Errorf(relativePathErrorTemplateConstant, ErrRepositoryPathNotAbsolute, repository.Path)
	}
	if _, exists := repositoryRegistry.FindByPath(repository.Path); exists {
		return fmt.Errorf(duplicatePathErrorTemplateConstant, ErrDuplicateRepositoryPath, repository.Path)
	}
	if _, exists := repositoryRegistry.FindByName(repository.Name); exists {
		return fmt.Errorf(duplicateNameErrorTemplateConstant, ErrDuplicateRepositoryName, repository.Name)
	}

	repository.Path = filepath.Clean(repository.Path)
	repositoryRegistry.Repositories = append(repositoryRegistry.Repositories, repository)
	return nil
}

// Remove unregisters the named repository and drops it from an explicit context. A context left empty selects all repositories.
func (repositoryRegistry *Registry) Remove(name string) bool {
	removed := false
	retained := repositoryRegistry.Repositories[:0]
	for _, repository := range repositoryRegistry.Repositories {
		if repository.Name == name {
			removed = true
			continue
		}
		retained = append(retained, repository)
	}
	repositoryRegistry.Repositories = retained

	if removed && len(repositoryRegistry.Context.Names) > 0 {
		retainedNames := make([]string, 0, len(repositoryRegistry.Context.Names))
		for _, contextName := range repositoryRegistry.Context.Names {
			if contextName != name {
				retainedNames = append(retainedNames, contextName)
			}
		}
		repositoryRegistry.Context.Names = retainedNames
		if len(retainedNames) == 0 {
			repositoryRegistry.Context = AllRepositories()
		}
	}

	return removed
}

// SetContext replaces the current context after verifying every named repository is registered.
func (repositoryRegistry *Registry) SetContext(selector ContextSelector) error {
	if selector.All {
		repositoryRegistry.Context = AllRepositories()
		return nil
	}

	for _, name := range selector.Names {
		if _, exists := repositoryRegistry.FindByName(name); !exists {
			return fmt.Errorf(unknownContextNameErrorTemplate, ErrUnknownContextRepository, name)
		}
	}

	repositoryRegistry.Context = ExplicitRepositories(selector.Names...)
	return nil
}

// ContextSize reports how many registered repositories the current context selects.
func (repositoryRegistry Registry) ContextSize() int {
	if repositoryRegistry.Context.All {
		return len(repositoryRegistry.Repositories)
	}

	selected := make(map[string]struct{}, len(repositoryRegistry.Context.Names))
	for _, name := range repositoryRegistry.Context.Names {
		if _, exists := repositoryRegistry.FindByName(name); exists {
			selected[name] = struct{}{}
		}
	}
	return len(selected)
}

// InContext reports whether the named repository is selected by the current context.
func (repositoryRegistry Registry) InContext(name string) bool {
	if repositoryRegistry.Context.All {
		_, exists := repositoryRegistry.FindByName(name)
		return exists
	}
	for _, contextName := range repositoryRegistry.Context.Names {
		if contextName == name {
			return true
		}
	}
	return false
}

// DeriveName proposes a unique display name for a repository located at path.
func (repositoryRegistry Registry) DeriveName(path string) string {
	cleanedPath := filepath.Clean(path)
	baseName := filepath.Base(cleanedPath)
	if _, taken := repositoryRegistry.FindByName(baseName); !taken {
		return baseName
	}

	parentName := filepath.Base(filepath.Dir(cleanedPath))
	qualifiedName := parentName + derivedNameSeparatorConstant + baseName
	if _, taken := repositoryRegistry.FindByName(qualifiedName); !taken && len(parentName) > 0 && parentName != string(filepath.Separator) {
		return qualifiedName
	}

	for suffix := derivedNameFirstNumericSuffixConstant; ; suffix++ {
		candidateName := baseName + derivedNameSeparatorConstant + strconv.Itoa(suffix)
		if _, taken := repositoryRegistry.FindByName(candidateName); !taken {
			return candidateName
		}
	}
}
