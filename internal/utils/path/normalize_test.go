package pathutils_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/lasso/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/alice"

func newTestNormalizer() *pathutils.PathNormalizer {
	return pathutils.NewPathNormalizer(pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	}))
}

func TestPathNormalizerNormalizeAll(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	nestedPath := filepath.Join(workspace, "group", "repository")

	testCases := []struct {
		name     string
		inputs   []string
		expected []string
	}{
		{
			name:     "trims_expands_and_deduplicates",
			inputs:   []string{"", "  " + nestedPath + "\t", "~/src/api", nestedPath + string(filepath.Separator), workspace},
			expected: []string{nestedPath, filepath.Join(testHomeDirectoryConstant, "src", "api"), workspace},
		},
		{
			name:   "blank_inputs_yield_nil",
			inputs: []string{"   ", "\n"},
		},
		{
			name:     "home_shortcut_alone",
			inputs:   []string{"~"},
			expected: []string{testHomeDirectoryConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, newTestNormalizer().NormalizeAll(testCase.inputs))
		})
	}
}

func TestPathNormalizerResolvesRelativePaths(testInstance *testing.T) {
	testInstance.Chdir(testInstance.TempDir())
	workingDirectory, _ := filepath.Abs(".")

	normalizedPath, present := newTestNormalizer().Normalize("./api/")
	require.True(testInstance, present)
	require.Equal(testInstance, filepath.Join(workingDirectory, "api"), normalizedPath)

	_, blankPresent := newTestNormalizer().Normalize("  ")
	require.False(testInstance, blankPresent)
}

func TestPruneNested(testInstance *testing.T) {
	testCases := []struct {
		name     string
		paths    []string
		expected []string
	}{
		{
			name:     "nested_after_parent",
			paths:    []string{"/work", "/work/api", "/srv"},
			expected: []string{"/work", "/srv"},
		},
		{
			name:     "nested_before_parent_keeps_order",
			paths:    []string{"/srv/web", "/work/api", "/work"},
			expected: []string{"/srv/web", "/work"},
		},
		{
			name:     "sibling_prefix_is_not_nested",
			paths:    []string{"/work", "/workshop"},
			expected: []string{"/work", "/workshop"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, pathutils.PruneNested(testCase.paths))
		})
	}
}

func TestIsWithin(testInstance *testing.T) {
	require.True(testInstance, pathutils.IsWithin("/work", "/work"))
	require.True(testInstance, pathutils.IsWithin("/work", "/work/api"))
	require.True(testInstance, pathutils.IsWithin("/work", "/work/..api"))
	require.False(testInstance, pathutils.IsWithin("/work", "/workshop"))
	require.False(testInstance, pathutils.IsWithin("/work/api", "/work"))
	require.True(testInstance, pathutils.IsWithin("/", "/work"))
}
