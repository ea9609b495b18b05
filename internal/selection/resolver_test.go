package selection_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/repos/filesystem"
	"github.com/temirov/lasso/internal/selection"
)

const (
	testMissingPathConstant = "/missing/web"
)

type resolverFixture struct {
	registry registry.Registry
	apiPath  string
	cliPath  string
	filePath string
}

func buildResolverFixture(testInstance *testing.T) resolverFixture {
	testInstance.Helper()

	rootDirectory := testInstance.TempDir()
	apiPath := filepath.Join(rootDirectory, "api")
	cliPath := filepath.Join(rootDirectory, "cli")
	filePath := filepath.Join(rootDirectory, "notes.txt")
	require.NoError(testInstance, os.MkdirAll(apiPath, 0o755))
	require.NoError(testInstance, os.MkdirAll(cliPath, 0o755))
	require.NoError(testInstance, os.WriteFile(filePath, []byte("notes"), 0o644))

	repositoryRegistry := registry.New()
	require.NoError(testInstance, repositoryRegistry.Add(registry.RepositoryRef{Name: "api", Path: apiPath}))
	require.NoError(testInstance, repositoryRegistry.Add(registry.RepositoryRef{Name: "web", Path: testMissingPathConstant}))
	require.NoError(testInstance, repositoryRegistry.Add(registry.RepositoryRef{Name: "cli", Path: cliPath}))
	require.NoError(testInstance, repositoryRegistry.Add(registry.RepositoryRef{Name: "notes", Path: filePath}))

	return resolverFixture{registry: repositoryRegistry, apiPath: apiPath, cliPath: cliPath, filePath: filePath}
}

func targetNames(resolution selection.Resolution) []string {
	names := make([]string, 0, len(resolution.Targets))
	for _, target := range resolution.Targets {
		names = append(names, target.Repository.Name)
	}
	return names
}

func TestResolverOrdersTargets(testInstance *testing.T) {
	fixture := buildResolverFixture(testInstance)
	resolver, creationError := selection.NewResolver(filesystem.OSFileSystem{})
	require.NoError(testInstance, creationError)

	testCases := []struct {
		name          string
		selector      registry.ContextSelector
		expectedNames []string
	}{
		{
			name:          "all_uses_registry_order",
			selector:      registry.AllRepositories(),
			expectedNames: []string{"api", "web", "cli", "notes"},
		},
		{
			name:          "explicit_uses_selector_order",
			selector:      registry.ExplicitRepositories("cli", "api"),
			expectedNames: []string{"cli", "api"},
		},
		{
			name:          "duplicates_keep_first_position",
			selector:      registry.ExplicitRepositories("cli", "api", "cli"),
			expectedNames: []string{"cli", "api"},
		},
		{
			name:          "unknown_names_keep_position",
			selector:      registry.ExplicitRepositories("ghost", "api"),
			expectedNames: []string{"ghost", "api"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			resolution := resolver.Resolve(fixture.registry, testCase.selector)
			require.Equal(subtest, testCase.expectedNames, targetNames(resolution))
		})
	}
}

func TestResolverIsolatesMissingPaths(testInstance *testing.T) {
	fixture := buildResolverFixture(testInstance)
	resolver, creationError := selection.NewResolver(filesystem.OSFileSystem{})
	require.NoError(testInstance, creationError)

	resolution := resolver.Resolve(fixture.registry, registry.ExplicitRepositories("api", "web"))

	require.Len(testInstance, resolution.Targets, 2)
	require.True(testInstance, resolution.Targets[0].Resolved())
	require.Equal(testInstance, []registry.RepositoryRef{{Name: "api", Path: fixture.apiPath}}, resolution.Repositories())

	resolutionErrors := resolution.Errors()
	require.Len(testInstance, resolutionErrors, 1)
	require.Equal(testInstance, "web", resolutionErrors[0].Name)
	require.ErrorIs(testInstance, resolutionErrors[0], selection.ErrRepositoryPathMissing)
	require.Contains(testInstance, resolutionErrors[0].Error(), testMissingPathConstant)
}

func TestResolverRejectsFilesAsRepositories(testInstance *testing.T) {
	fixture := buildResolverFixture(testInstance)
	resolver, creationError := selection.NewResolver(filesystem.OSFileSystem{})
	require.NoError(testInstance, creationError)

	resolution := resolver.Resolve(fixture.registry, registry.ExplicitRepositories("notes"))

	require.Empty(testInstance, resolution.Repositories())
	require.Len(testInstance, resolution.Errors(), 1)
	require.ErrorIs(testInstance, resolution.Errors()[0], selection.ErrRepositoryPathMissing)
	require.Contains(testInstance, resolution.Errors()[0].Error(), "is not a directory")
}

func TestResolverSuggestsRegisteredNames(testInstance *testing.T) {
	fixture := buildResolverFixture(testInstance)
	resolver, creationError := selection.NewResolver(filesystem.OSFileSystem{})
	require.NoError(testInstance, creationError)

	resolution := resolver.Resolve(fixture.registry, registry.ExplicitRepositories("wb", "zzz"))

	resolutionErrors := resolution.Errors()
	require.Len(testInstance, resolutionErrors, 2)
	require.ErrorIs(testInstance, resolutionErrors[0], selection.ErrRepositoryNotRegistered)
	require.Contains(testInstance, resolutionErrors[0].Error(), "did you mean 'web'")
	require.ErrorIs(testInstance, resolutionErrors[1], selection.ErrRepositoryNotRegistered)
	require.NotContains(testInstance, resolutionErrors[1].Error(), "did you mean")
}

func TestResolverIsIdempotentAndDoesNotMutateInputs(testInstance *testing.T) {
	fixture := buildResolverFixture(testInstance)
	resolver, creationError := selection.NewResolver(filesystem.OSFileSystem{})
	require.NoError(testInstance, creationError)

	selector := registry.ExplicitRepositories("cli", "web", "cli", "ghost")
	registrySnapshot := fixture.registry.Clone()
	selectorSnapshot := append([]string{}, selector.Names...)

	firstResolution := resolver.Resolve(fixture.registry, selector)
	secondResolution := resolver.Resolve(fixture.registry, selector)

	require.Equal(testInstance, firstResolution, secondResolution)
	require.Equal(testInstance, registrySnapshot, fixture.registry)
	require.Equal(testInstance, selectorSnapshot, selector.Names)
}

func TestNewResolverRequiresFileSystem(testInstance *testing.T) {
	_, creationError := selection.NewResolver(nil)
	require.ErrorIs(testInstance, creationError, selection.ErrFileSystemNotConfigured)
}
