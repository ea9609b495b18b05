package repos_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/lasso/cmd/cli/repos"
	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/repos/filesystem"
	"github.com/temirov/lasso/internal/ui"
	pathutils "github.com/temirov/lasso/internal/utils/path"
)

const (
	testRegistryFileNameConstant     = "registry.yaml"
	testSourceDirectoryNameConstant  = "src"
	testGitMetadataDirectoryConstant = ".git"
	testCleanStatusOutputConstant    = "# branch.oid 1234567890abcdef\n# branch.head main\n"
	testCommitSummaryOutputConstant  = "1234567890abcdef\x00Initial commit\n"
	testStatusCommandKeyConstant     = "git status --porcelain=v2 --branch --untracked-files=no"
	testCommitCommandKeyConstant     = "git log -1 --format=%H%x00%s"
)

// scriptedCommandRunner answers process invocations from a table keyed by repository directory name and
// command line. Unknown invocations succeed with empty output.
type scriptedCommandRunner struct {
	mutex     sync.Mutex
	responses map[string]execshell.ExecutionResult
	defaults  map[string]execshell.ExecutionResult
	calls     []execshell.ShellCommand
	beforeRun func(command execshell.ShellCommand)
}

func newScriptedCommandRunner() *scriptedCommandRunner {
	return &scriptedCommandRunner{
		responses: map[string]execshell.ExecutionResult{},
		defaults: map[string]execshell.ExecutionResult{
			testStatusCommandKeyConstant: {StandardOutput: []byte(testCleanStatusOutputConstant)},
			testCommitCommandKeyConstant: {StandardOutput: []byte(testCommitSummaryOutputConstant)},
		},
	}
}

func (runner *scriptedCommandRunner) respond(repositoryName string, commandLine string, result execshell.ExecutionResult) {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	runner.responses[repositoryName+":"+commandLine] = result
}

// Run answers from the table. Like a real process, the answer is written to the live sinks when present.
func (runner *scriptedCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.mutex.Lock()
	runner.calls = append(runner.calls, command)
	commandLine := strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), " ")
	result, found := runner.responses[filepath.Base(command.Details.WorkingDirectory)+":"+commandLine]
	if !found {
		result = runner.defaults[commandLine]
	}
	beforeRun := runner.beforeRun
	runner.mutex.Unlock()

	if beforeRun != nil {
		beforeRun(command)
	}
	if command.Details.OutputSink != nil && len(result.StandardOutput) > 0 {
		_, _ = command.Details.OutputSink.Write(result.StandardOutput)
	}
	if command.Details.ErrorSink != nil && len(result.StandardError) > 0 {
		_, _ = command.Details.ErrorSink.Write(result.StandardError)
	}
	return result, nil
}

func (runner *scriptedCommandRunner) recordedCalls() []execshell.ShellCommand {
	runner.mutex.Lock()
	defer runner.mutex.Unlock()
	return append([]execshell.ShellCommand{}, runner.calls...)
}

type commandTestEnvironment struct {
	homeDirectory  string
	registryPath   string
	commandRunner  *scriptedCommandRunner
	interactive    bool
	selectorResult ui.SelectorResult
	selectorItems  []ui.SelectorItem
}

func newCommandTestEnvironment(testInstance *testing.T) *commandTestEnvironment {
	testInstance.Helper()
	homeDirectory, resolveError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, resolveError)
	return &commandTestEnvironment{
		homeDirectory: homeDirectory,
		registryPath:  filepath.Join(homeDirectory, ".config", "lasso", testRegistryFileNameConstant),
		commandRunner: newScriptedCommandRunner(),
	}
}

func (environment *commandTestEnvironment) dependencies() repos.Dependencies {
	homeDirectory := environment.homeDirectory
	return repos.Dependencies{
		ConfigurationProvider: func() repos.Configuration {
			configuration := repos.DefaultConfiguration("")
			configuration.Registry.Path = environment.registryPath
			return configuration
		},
		CommandRunner: environment.commandRunner,
		HomeExpander: pathutils.NewHomeExpanderWithProvider(func() (string, error) {
			return homeDirectory, nil
		}),
		InteractiveDetector: func(io.Writer) bool { return environment.interactive },
		StylingDetector:     func(io.Writer) bool { return false },
		ContextSelector: func(items []ui.SelectorItem) (ui.SelectorResult, error) {
			environment.selectorItems = append([]ui.SelectorItem{}, items...)
			return environment.selectorResult, nil
		},
	}
}

// createRepository makes a directory containing a .git entry beneath the source directory.
func (environment *commandTestEnvironment) createRepository(testInstance *testing.T, relativePath string) string {
	testInstance.Helper()
	repositoryPath := filepath.Join(environment.homeDirectory, testSourceDirectoryNameConstant, relativePath)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, testGitMetadataDirectoryConstant), 0o755))
	return repositoryPath
}

// seedRegistry creates repositories on disk and stores them in registry order with the given context.
func (environment *commandTestEnvironment) seedRegistry(testInstance *testing.T, contextSelector registry.ContextSelector, names ...string) {
	testInstance.Helper()
	repositoryRegistry := registry.New()
	for _, name := range names {
		require.NoError(testInstance, repositoryRegistry.Add(registry.RepositoryRef{Name: name, Path: environment.createRepository(testInstance, name)}))
	}
	require.NoError(testInstance, repositoryRegistry.SetContext(contextSelector))
	environment.saveRegistry(testInstance, repositoryRegistry)
}

func (environment *commandTestEnvironment) saveRegistry(testInstance *testing.T, repositoryRegistry registry.Registry) {
	testInstance.Helper()
	store, storeError := registry.NewStore(environment.registryPath, filesystem.OSFileSystem{})
	require.NoError(testInstance, storeError)
	require.NoError(testInstance, store.Save(repositoryRegistry))
}

func (environment *commandTestEnvironment) loadRegistry(testInstance *testing.T) registry.Registry {
	testInstance.Helper()
	store, storeError := registry.NewStore(environment.registryPath, filesystem.OSFileSystem{})
	require.NoError(testInstance, storeError)
	repositoryRegistry, loadError := store.Load()
	require.NoError(testInstance, loadError)
	return repositoryRegistry
}

func (environment *commandTestEnvironment) displayPath(relativePath string) string {
	return "~/" + filepath.ToSlash(filepath.Join(testSourceDirectoryNameConstant, relativePath))
}

type cobraCommandBuilder interface {
	Build() (*cobra.Command, error)
}

func executeCommand(testInstance *testing.T, builder cobraCommandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()
	var outputBuffer bytes.Buffer
	executionError := executeCommandWithStreams(testInstance, builder, &outputBuffer, io.Discard, arguments...)
	return outputBuffer.String(), executionError
}

func executeCommandWithStreams(testInstance *testing.T, builder cobraCommandBuilder, output io.Writer, errorOutput io.Writer, arguments ...string) error {
	testInstance.Helper()
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetOut(output)
	command.SetErr(errorOutput)
	command.SetArgs(arguments)
	command.SetContext(context.Background())
	command.SilenceUsage = true
	command.SilenceErrors = true

	return command.Execute()
}
