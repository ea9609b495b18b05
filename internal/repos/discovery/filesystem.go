// Package discovery finds Git working trees beneath registration roots.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"
)

const (
	gitMetadataEntryNameConstant = ".git"
	rootWalkLimitConstant        = 4
)

var defaultSkippedDirectoryNames = []string{"node_modules"}

// FilesystemRepositoryDiscoverer walks directories looking for .git entries.
type FilesystemRepositoryDiscoverer struct {
	skippedDirectoryNames []string
}

// DiscovererOption customizes a FilesystemRepositoryDiscoverer.
type DiscovererOption func(*FilesystemRepositoryDiscoverer)

// WithSkippedDirectoryNames replaces the directory names never descended into.
func WithSkippedDirectoryNames(names ...string) DiscovererOption {
	return func(discoverer *FilesystemRepositoryDiscoverer) {
		discoverer.skippedDirectoryNames = slices.Clone(names)
	}
}

// NewFilesystemRepositoryDiscoverer constructs a discoverer skipping node_modules directories.
func NewFilesystemRepositoryDiscoverer(options ...DiscovererOption) *FilesystemRepositoryDiscoverer {
	discoverer := &FilesystemRepositoryDiscoverer{skippedDirectoryNames: slices.Clone(defaultSkippedDirectoryNames)}
	for _, option := range options {
		if option != nil {
			option(discoverer)
		}
	}
	return discoverer
}

// DiscoverRepositories walks the roots concurrently and returns the sorted, symlink-resolved paths of
// directories holding a .git entry. A repository is not descended into, so nested repositories and
// submodules are not reported. Unreadable directories and missing roots are skipped.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	found := make([][]string, len(roots))

	var walkers errgroup.Group
	walkers.SetLimit(rootWalkLimitConstant)
	for rootIndex, root := range roots {
		walkers.Go(func() error {
			repositories, walkError := discoverer.walk(root)
			found[rootIndex] = repositories
			return walkError
		})
	}
	if waitError := walkers.Wait(); waitError != nil {
		return nil, waitError
	}

	repositories := slices.Concat(found...)
	slices.Sort(repositories)
	return slices.Compact(repositories), nil
}

func (discoverer *FilesystemRepositoryDiscoverer) walk(root string) ([]string, error) {
	var repositories []string
	walkError := filepath.WalkDir(root, func(path string, entry fs.DirEntry, entryError error) error {
		if entryError != nil || entry == nil || !entry.IsDir() {
			return nil
		}
		if path != root && slices.Contains(discoverer.skippedDirectoryNames, entry.Name()) {
			return fs.SkipDir
		}
		if _, statError := os.Lstat(filepath.Join(path, gitMetadataEntryNameConstant)); statError != nil {
			return nil
		}
		if repositoryPath, resolveError := resolveRepositoryPath(path); resolveError == nil {
			repositories = append(repositories, repositoryPath)
		}
		return fs.SkipDir
	})
	return repositories, walkError
}

func resolveRepositoryPath(path string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return "", absoluteError
	}
	return filepath.EvalSymlinks(absolutePath)
}
