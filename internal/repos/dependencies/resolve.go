// Package dependencies supplies the production collaborators repository commands fall back to when
// a caller leaves a dependency unset.
package dependencies

import (
	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/repos/discovery"
	"github.com/temirov/lasso/internal/repos/filesystem"
	"github.com/temirov/lasso/internal/repos/shared"
)

func orDefault[Dependency any](provided Dependency, fallback func() Dependency) Dependency {
	if any(provided) != nil {
		return provided
	}
	return fallback()
}

// ResolveRepositoryDiscoverer defaults to walking the filesystem for Git working trees.
func ResolveRepositoryDiscoverer(provided shared.RepositoryDiscoverer) shared.RepositoryDiscoverer {
	return orDefault(provided, func() shared.RepositoryDiscoverer {
		return discovery.NewFilesystemRepositoryDiscoverer()
	})
}

// ResolveFileSystem defaults to the host filesystem.
func ResolveFileSystem(provided shared.FileSystem) shared.FileSystem {
	return orDefault(provided, func() shared.FileSystem { return filesystem.OSFileSystem{} })
}

// ResolveCommandRunner defaults to spawning processes through os/exec.
func ResolveCommandRunner(provided execshell.CommandRunner) execshell.CommandRunner {
	return orDefault(provided, func() execshell.CommandRunner { return execshell.NewOSCommandRunner() })
}

// ResolveClock defaults to the wall clock.
func ResolveClock(provided shared.Clock) shared.Clock {
	return orDefault(provided, func() shared.Clock { return shared.SystemClock{} })
}
