package registry_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lasso/internal/registry"
)

const (
	testAPIRepositoryNameConstant = "api"
	testWebRepositoryNameConstant = "web"
	testAPIRepositoryPathConstant = "/repos/api"
	testWebRepositoryPathConstant = "/repos/web"
)

func buildTestRegistry(testInstance *testing.T) registry.Registry {
	testInstance.Helper()

	repositoryRegistry := registry.New()
	require.NoError(testInstance, repositoryRegistry.Add(registry.RepositoryRef{Name: testAPIRepositoryNameConstant, Path: testAPIRepositoryPathConstant}))
	require.NoError(testInstance, repositoryRegistry.Add(registry.RepositoryRef{Name: testWebRepositoryNameConstant, Path: testWebRepositoryPathConstant}))
	return repositoryRegistry
}

func TestRegistryAddRejectsInvalidRepositories(testInstance *testing.T) {
	testCases := []struct {
		name          string
		repository    registry.RepositoryRef
		expectedError error
	}{
		{
			name:          "missing_name",
			repository:    registry.RepositoryRef{Name: " ", Path: "/repos/other"},
			expectedError: registry.ErrRepositoryNameRequired,
		},
		{
			name:          "relative_path",
			repository:    registry.RepositoryRef{Name: "other", Path: "repos/other"},
			expectedError: registry.ErrRepositoryPathNotAbsolute,
		},
		{
			name:          "duplicate_path",
			repository:    registry.RepositoryRef{Name: "other", Path: testAPIRepositoryPathConstant + "/"},
			expectedError: registry.ErrDuplicateRepositoryPath,
		},
		{
			name:          "duplicate_name",
			repository:    registry.RepositoryRef{Name: testWebRepositoryNameConstant, Path: "/repos/other"},
			expectedError: registry.ErrDuplicateRepositoryName,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			repositoryRegistry := buildTestRegistry(subtest)
			addError := repositoryRegistry.Add(testCase.repository)
			require.ErrorIs(subtest, addError, testCase.expectedError)
			require.Len(subtest, repositoryRegistry.Repositories, 2)
		})
	}
}

func TestRegistryRemoveDropsContextName(testInstance *testing.T) {
	repositoryRegistry := buildTestRegistry(testInstance)
	require.NoError(testInstance, repositoryRegistry.SetContext(registry.ExplicitRepositories(testWebRepositoryNameConstant, testAPIRepositoryNameConstant)))

	require.True(testInstance, repositoryRegistry.Remove(testAPIRepositoryNameConstant))
	require.False(testInstance, repositoryRegistry.Remove(testAPIRepositoryNameConstant))

	require.Equal(testInstance, []string{testWebRepositoryNameConstant}, repositoryRegistry.Names())
	require.Equal(testInstance, []string{testWebRepositoryNameConstant}, repositoryRegistry.Context.Names)
}

func TestRegistryRemoveOfLastContextNameSelectsAll(testInstance *testing.T) {
	repositoryRegistry := buildTestRegistry(testInstance)
	require.NoError(testInstance, repositoryRegistry.SetContext(registry.ExplicitRepositories(testAPIRepositoryNameConstant)))

	require.True(testInstance, repositoryRegistry.Remove(testAPIRepositoryNameConstant))

	require.True(testInstance, repositoryRegistry.Context.All)
	require.Empty(testInstance, repositoryRegistry.Context.Names)
	require.True(testInstance, repositoryRegistry.InContext(testWebRepositoryNameConstant))
}

func TestRegistrySetContextValidatesNames(testInstance *testing.T) {
	repositoryRegistry := buildTestRegistry(testInstance)

	setError := repositoryRegistry.SetContext(registry.ExplicitRepositories("missing"))
	require.ErrorIs(testInstance, setError, registry.ErrUnknownContextRepository)
	require.True(testInstance, repositoryRegistry.Context.All)

	require.NoError(testInstance, repositoryRegistry.SetContext(registry.ExplicitRepositories(testWebRepositoryNameConstant)))
	require.False(testInstance, repositoryRegistry.Context.All)
	require.Equal(testInstance, 1, repositoryRegistry.ContextSize())
	require.True(testInstance, repositoryRegistry.InContext(testWebRepositoryNameConstant))
	require.False(testInstance, repositoryRegistry.InContext(testAPIRepositoryNameConstant))

	require.NoError(testInstance, repositoryRegistry.SetContext(registry.AllRepositories()))
	require.Equal(testInstance, 2, repositoryRegistry.ContextSize())
}

func TestRegistryDeriveNameAvoidsCollisions(testInstance *testing.T) {
	repositoryRegistry := buildTestRegistry(testInstance)

	require.Equal(testInstance, "cli", repositoryRegistry.DeriveName("/work/cli"))
	require.Equal(testInstance, "work-api", repositoryRegistry.DeriveName("/work/api"))

	require.NoError(testInstance, repositoryRegistry.Add(registry.RepositoryRef{Name: "work-api", Path: "/work/api"}))
	require.Equal(testInstance, "api-2", repositoryRegistry.DeriveName("/other/work/api"))
}

func TestRegistryCloneIsIndependent(testInstance *testing.T) {
	repositoryRegistry := buildTestRegistry(testInstance)
	require.NoError(testInstance, repositoryRegistry.SetContext(registry.ExplicitRepositories(testAPIRepositoryNameConstant)))

	cloned := repositoryRegistry.Clone()
	cloned.Repositories[0].Name = "changed"
	cloned.Context.Names[0] = "changed"

	require.Equal(testInstance, testAPIRepositoryNameConstant, repositoryRegistry.Repositories[0].Name)
	require.Equal(testInstance, testAPIRepositoryNameConstant, repositoryRegistry.Context.Names[0])
}
