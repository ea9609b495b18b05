package registry_test

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/repos/filesystem"
)

const (
	testRegistryYAMLFileNameConstant = "registry.yaml"
	testRegistryTOMLFileNameConstant = "registry.toml"
	testRegistryJSONFileNameConstant = "registry.json"
)

type failingRenameFileSystem struct {
	filesystem.OSFileSystem
	removedPaths []string
}

func (fileSystem *failingRenameFileSystem) Rename(string, string) error {
	return errors.New("rename failed")
}

func (fileSystem *failingRenameFileSystem) Remove(path string) error {
	fileSystem.removedPaths = append(fileSystem.removedPaths, path)
	return os.Remove(path)
}

func TestStoreRoundTripsEveryFormat(testInstance *testing.T) {
	fileNames := []string{
		testRegistryYAMLFileNameConstant,
		testRegistryTOMLFileNameConstant,
		testRegistryJSONFileNameConstant,
	}

	for fileIndex, fileName := range fileNames {
		testInstance.Run(fmt.Sprintf("%d_%s", fileIndex, fileName), func(subtest *testing.T) {
			registryPath := filepath.Join(subtest.TempDir(), "nested", fileName)
			store, storeError := registry.NewStore(registryPath, filesystem.OSFileSystem{})
			require.NoError(subtest, storeError)

			original := buildTestRegistry(subtest)
			require.NoError(subtest, original.SetContext(registry.ExplicitRepositories(testWebRepositoryNameConstant, testAPIRepositoryNameConstant)))
			require.NoError(subtest, store.Save(original))

			_, temporaryStatError := os.Stat(registryPath + ".tmp")
			require.ErrorIs(subtest, temporaryStatError, fs.ErrNotExist)

			loaded, loadError := store.Load()
			require.NoError(subtest, loadError)
			require.Equal(subtest, original.Repositories, loaded.Repositories)
			require.False(subtest, loaded.Context.All)
			require.Equal(subtest, []string{testWebRepositoryNameConstant, testAPIRepositoryNameConstant}, loaded.Context.Names)
		})
	}
}

func TestStoreLoadMissingFileReturnsEmptyRegistry(testInstance *testing.T) {
	store, storeError := registry.NewStore(filepath.Join(testInstance.TempDir(), testRegistryYAMLFileNameConstant), filesystem.OSFileSystem{})
	require.NoError(testInstance, storeError)

	loaded, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loaded.Repositories)
	require.True(testInstance, loaded.Context.All)
}

func TestStoreLoadRejectsDuplicateNames(testInstance *testing.T) {
	registryPath := filepath.Join(testInstance.TempDir(), testRegistryYAMLFileNameConstant)
	contents := "repositories:\n  - name: api\n    path: /repos/api\n  - name: api\n    path: /repos/other\ncontext:\n  all: true\n"
	require.NoError(testInstance, os.WriteFile(registryPath, []byte(contents), 0o644))

	store, storeError := registry.NewStore(registryPath, filesystem.OSFileSystem{})
	require.NoError(testInstance, storeError)

	_, loadError := store.Load()
	require.ErrorIs(testInstance, loadError, registry.ErrInvalidRegistry)
	require.ErrorIs(testInstance, loadError, registry.ErrDuplicateRepositoryName)
}

func TestStoreLoadReportsMalformedFiles(testInstance *testing.T) {
	registryPath := filepath.Join(testInstance.TempDir(), testRegistryJSONFileNameConstant)
	require.NoError(testInstance, os.WriteFile(registryPath, []byte("{not json"), 0o644))

	store, storeError := registry.NewStore(registryPath, filesystem.OSFileSystem{})
	require.NoError(testInstance, storeError)

	_, loadError := store.Load()
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), registryPath)
}

func TestStoreSaveCleansUpTemporaryFileOnRenameFailure(testInstance *testing.T) {
	registryPath := filepath.Join(testInstance.TempDir(), testRegistryYAMLFileNameConstant)
	fileSystem := &failingRenameFileSystem{}

	store, storeError := registry.NewStore(registryPath, fileSystem)
	require.NoError(testInstance, storeError)

	saveError := store.Save(buildTestRegistry(testInstance))
	require.Error(testInstance, saveError)
	require.Equal(testInstance, []string{registryPath + ".tmp"}, fileSystem.removedPaths)

	_, statError := os.Stat(registryPath)
	require.ErrorIs(testInstance, statError, fs.ErrNotExist)
}

func TestNewStoreValidatesInputs(testInstance *testing.T) {
	_, missingPathError := registry.NewStore(" ", filesystem.OSFileSystem{})
	require.ErrorIs(testInstance, missingPathError, registry.ErrStorePathRequired)

	_, missingFileSystemError := registry.NewStore("/tmp/registry.yaml", nil)
	require.ErrorIs(testInstance, missingFileSystemError, registry.ErrFileSystemNotConfigured)

	_, extensionError := registry.NewStore("/tmp/registry.ini", filesystem.OSFileSystem{})
	require.Error(testInstance, extensionError)
}
