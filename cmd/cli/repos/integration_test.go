package repos_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lasso/cmd/cli/repos"
)

const (
	integrationGitExecutableConstant   = "git"
	integrationTrackedFileNameConstant = "README.md"
)

var integrationIdentityArguments = []string{
	"-c", "user.name=Lasso Test",
	"-c", "user.email=lasso@example.com",
	"-c", "commit.gpgsign=false",
}

func TestRepositoryCommandsAgainstRealRepositories(testInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testInstance.Skip("integration test relies on POSIX paths")
	}
	if _, lookupError := exec.LookPath(integrationGitExecutableConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	environment := newCommandTestEnvironment(testInstance)
	apiPath := initializeGitRepository(testInstance, filepath.Join(environment.homeDirectory, testSourceDirectoryNameConstant, "api"))
	initializeGitRepository(testInstance, filepath.Join(environment.homeDirectory, testSourceDirectoryNameConstant, "web"))
	require.NoError(testInstance, os.WriteFile(filepath.Join(apiPath, integrationTrackedFileNameConstant), []byte("changed\n"), 0o644))

	dependencies := environment.dependencies()
	dependencies.CommandRunner = nil

	registerOutput, registerError := executeCommand(testInstance, &repos.RegisterCommandBuilder{Dependencies: dependencies}, filepath.Join(environment.homeDirectory, testSourceDirectoryNameConstant))
	require.NoError(testInstance, registerError)
	require.Equal(testInstance, "~/src/api: registered\n~/src/web: registered\n", registerOutput)

	statusOutput, statusError := executeCommand(testInstance, &repos.StatusCommandBuilder{Dependencies: dependencies}, "--output", "plain")
	require.NoError(testInstance, statusError)
	require.Equal(testInstance, "api\tmain\t1 modified\t-\t~/src/api\nweb\tmain\tclean\t-\t~/src/web\n", statusOutput)

	gitOutput, gitError := executeCommand(testInstance, &repos.GitCommandBuilder{Dependencies: dependencies}, "rev-parse", "--abbrev-ref", "HEAD")
	require.NoError(testInstance, gitError)
	require.Equal(testInstance, "== ~/src/api ==\nmain\n== ~/src/web ==\nmain\n", gitOutput)
}

func initializeGitRepository(testInstance *testing.T, repositoryPath string) string {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(repositoryPath, 0o755))
	runGit(testInstance, repositoryPath, "init", "--initial-branch=main")
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, integrationTrackedFileNameConstant), []byte("initial\n"), 0o644))
	runGit(testInstance, repositoryPath, "add", integrationTrackedFileNameConstant)
	runGit(testInstance, repositoryPath, append(append([]string{}, integrationIdentityArguments...), "commit", "-m", "Initial commit")...)
	return repositoryPath
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) {
	testInstance.Helper()
	command := exec.Command(integrationGitExecutableConstant, arguments...)
	command.Dir = workingDirectory
	output, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(output))
}
