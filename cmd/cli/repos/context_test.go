package repos_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lasso/cmd/cli/repos"
	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/ui"
)

func TestContextSubcommandsUpdateTheCurrentContext(testInstance *testing.T) {
	testCases := []struct {
		name            string
		initialContext  registry.ContextSelector
		arguments       []string
		expectedOutput  string
		expectedContext registry.ContextSelector
	}{
		{
			name:            "show_all",
			initialContext:  registry.AllRepositories(),
			arguments:       []string{"show"},
			expectedOutput:  "context: all 3 repositories\napi         ~/src/api\nweb         ~/src/web\nlongername  ~/src/longername\n",
			expectedContext: registry.AllRepositories(),
		},
		{
			name:            "set_names",
			initialContext:  registry.AllRepositories(),
			arguments:       []string{"set", "web", "api"},
			expectedOutput:  "context: 2 of 3 repositories\napi  ~/src/api\nweb  ~/src/web\n",
			expectedContext: registry.ExplicitRepositories("web", "api"),
		},
		{
			name:            "all",
			initialContext:  registry.ExplicitRepositories("web"),
			arguments:       []string{"all"},
			expectedOutput:  "context: all 3 repositories\napi         ~/src/api\nweb         ~/src/web\nlongername  ~/src/longername\n",
			expectedContext: registry.AllRepositories(),
		},
		{
			name:            "non_interactive_shows",
			initialContext:  registry.ExplicitRepositories("web"),
			arguments:       []string{},
			expectedOutput:  "context: 1 of 3 repositories\nweb  ~/src/web\n",
			expectedContext: registry.ExplicitRepositories("web"),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			environment := newCommandTestEnvironment(testInstance)
			environment.seedRegistry(testInstance, testCase.initialContext, "api", "web", "longername")

			builder := &repos.ContextCommandBuilder{Dependencies: environment.dependencies()}
			output, executionError := executeCommand(testInstance, builder, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, output)
			require.Equal(testInstance, testCase.expectedContext, environment.loadRegistry(testInstance).Context)
		})
	}
}

func TestContextSetRejectsUnknownNamesWithSuggestions(testInstance *testing.T) {
	environment := newCommandTestEnvironment(testInstance)
	environment.seedRegistry(testInstance, registry.ExplicitRepositories("web"), "api", "web")

	builder := &repos.ContextCommandBuilder{Dependencies: environment.dependencies()}
	_, executionError := executeCommand(testInstance, builder, "set", "web", "ap")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "did you mean 'api'")
	require.Equal(testInstance, registry.ExplicitRepositories("web"), environment.loadRegistry(testInstance).Context)
}

func TestContextInteractiveSelection(testInstance *testing.T) {
	testCases := []struct {
		name            string
		selectorResult  ui.SelectorResult
		expectedContext registry.ContextSelector
	}{
		{
			name:            "confirmed_subset",
			selectorResult:  ui.SelectorResult{Names: []string{"web"}},
			expectedContext: registry.ExplicitRepositories("web"),
		},
		{
			name:            "confirmed_everything",
			selectorResult:  ui.SelectorResult{Names: []string{"api", "web"}},
			expectedContext: registry.AllRepositories(),
		},
		{
			name:            "cancelled",
			selectorResult:  ui.SelectorResult{Cancelled: true},
			expectedContext: registry.ExplicitRepositories("api"),
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			environment := newCommandTestEnvironment(testInstance)
			environment.seedRegistry(testInstance, registry.ExplicitRepositories("api"), "api", "web")
			environment.interactive = true
			environment.selectorResult = testCase.selectorResult

			builder := &repos.ContextCommandBuilder{Dependencies: environment.dependencies()}
			_, executionError := executeCommand(testInstance, builder)
			require.NoError(testInstance, executionError)

			require.Equal(
				testInstance,
				[]ui.SelectorItem{
					{Name: "api", Label: "api (~/src/api)", Selected: true},
					{Name: "web", Label: "web (~/src/web)", Selected: false},
				},
				environment.selectorItems,
			)
			require.Equal(testInstance, testCase.expectedContext, environment.loadRegistry(testInstance).Context)
		})
	}
}
