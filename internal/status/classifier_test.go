package status_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/lasso/internal/execshell"
	"github.com/temirov/lasso/internal/registry"
	"github.com/temirov/lasso/internal/status"
)

const (
	testStatusCommandKeyConstant = "git status --porcelain=v2 --branch --untracked-files=no"
	testLogCommandKeyConstant    = "git log -1 --format=%H%x00%s"
	testCommitHashConstant       = "89abcdef0123456789abcdef0123456789abcdef"
)

type stubTaskExecutor struct {
	mutex    sync.Mutex
	outcomes map[string]execshell.TaskOutcome
	calls    []string
}

func (executor *stubTaskExecutor) Run(_ context.Context, _ string, spec execshell.CommandSpec, _ time.Duration) execshell.TaskOutcome {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	key := spec.String()
	executor.calls = append(executor.calls, key)
	outcome, exists := executor.outcomes[key]
	if !exists {
		return execshell.SpawnFailedOutcome("unexpected command "+key, 0)
	}
	return outcome
}

func completedWith(exitCode int, stdout string, stderr string) execshell.TaskOutcome {
	return execshell.CompletedOutcome(execshell.ExecutionResult{StandardOutput: []byte(stdout), StandardError: []byte(stderr), ExitCode: exitCode}, time.Millisecond)
}

func TestClassifierClassifiesOutcomes(testInstance *testing.T) {
	repository := registry.RepositoryRef{Name: "api", Path: "/repos/api"}

	testCases := []struct {
		name               string
		outcomes           map[string]execshell.TaskOutcome
		expectedKind       execshell.OutcomeKind
		expectedStatus     *status.RepositoryStatus
		expectedError      error
		expectedCallsCount int
	}{
		{
			name: "clean_repository_with_commit",
			outcomes: map[string]execshell.TaskOutcome{
				testStatusCommandKeyConstant: completedWith(0, "# branch.oid "+testCommitHashConstant+"\n# branch.head main\n", ""),
				testLogCommandKeyConstant:    completedWith(0, testCommitHashConstant+"\x00Initial import\n", ""),
			},
			expectedKind: execshell.OutcomeCompleted,
			expectedStatus: &status.RepositoryStatus{
				Branch: "main",
				Commit: status.CommitSummary{Hash: testCommitHashConstant, Subject: "Initial import"},
			},
			expectedCallsCount: 2,
		},
		{
			name: "commit_lookup_failure_keeps_status",
			outcomes: map[string]execshell.TaskOutcome{
				testStatusCommandKeyConstant: completedWith(0, "# branch.oid "+testCommitHashConstant+"\n# branch.head main\n1 .M N... 1 1 1 a a file\n", ""),
				testLogCommandKeyConstant:    completedWith(128, "", "fatal: bad object"),
			},
			expectedKind: execshell.OutcomeCompleted,
			expectedStatus: &status.RepositoryStatus{
				Branch:        "main",
				IsDirty:       true,
				ModifiedCount: 1,
				Commit:        status.CommitSummary{Hash: testCommitHashConstant},
			},
			expectedCallsCount: 2,
		},
		{
			name: "unborn_repository_skips_commit_lookup",
			outcomes: map[string]execshell.TaskOutcome{
				testStatusCommandKeyConstant: completedWith(0, "# branch.oid (initial)\n# branch.head main\n", ""),
			},
			expectedKind:       execshell.OutcomeCompleted,
			expectedStatus:     &status.RepositoryStatus{Branch: "main"},
			expectedCallsCount: 1,
		},
		{
			name: "not_a_repository",
			outcomes: map[string]execshell.TaskOutcome{
				testStatusCommandKeyConstant: completedWith(128, "", "fatal: not a git repository (or any of the parent directories): .git\n"),
			},
			expectedKind:       execshell.OutcomeCompleted,
			expectedError:      status.ErrNotARepository,
			expectedCallsCount: 1,
		},
		{
			name: "unparseable_output",
			outcomes: map[string]execshell.TaskOutcome{
				testStatusCommandKeyConstant: completedWith(0, "garbage\n", ""),
			},
			expectedKind:       execshell.OutcomeCompleted,
			expectedError:      status.ErrNotARepository,
			expectedCallsCount: 1,
		},
		{
			name: "other_git_failure",
			outcomes: map[string]execshell.TaskOutcome{
				testStatusCommandKeyConstant: completedWith(128, "", "fatal: Too many levels of symbolic links\n"),
			},
			expectedKind:       execshell.OutcomeCompleted,
			expectedError:      status.ErrStatusUnavailable,
			expectedCallsCount: 1,
		},
		{
			name: "spawn_failure_is_not_classification",
			outcomes: map[string]execshell.TaskOutcome{
				testStatusCommandKeyConstant: execshell.SpawnFailedOutcome("git not found", 0),
			},
			expectedKind:       execshell.OutcomeSpawnFailed,
			expectedCallsCount: 1,
		},
		{
			name: "timeout_is_not_classification",
			outcomes: map[string]execshell.TaskOutcome{
				testStatusCommandKeyConstant: execshell.TimedOutOutcome(time.Second),
			},
			expectedKind:       execshell.OutcomeTimedOut,
			expectedCallsCount: 1,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			executor := &stubTaskExecutor{outcomes: testCase.outcomes}
			classifier, creationError := status.NewClassifier(zap.NewNop(), executor, 0)
			require.NoError(subtest, creationError)

			result := classifier.Classify(context.Background(), repository)

			require.Equal(subtest, testCase.expectedKind, result.Outcome.Kind)
			require.Equal(subtest, testCase.expectedStatus, result.Status)
			if testCase.expectedError != nil {
				require.ErrorIs(subtest, result.Err, testCase.expectedError)
			} else {
				require.NoError(subtest, result.Err)
			}
			require.Len(subtest, executor.calls, testCase.expectedCallsCount)
		})
	}
}

func TestNewClassifierRequiresExecutor(testInstance *testing.T) {
	_, creationError := status.NewClassifier(zap.NewNop(), nil, 0)
	require.ErrorIs(testInstance, creationError, status.ErrTaskExecutorNotConfigured)
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) {
	testInstance.Helper()
	command := exec.Command("git", append([]string{"-c", "user.name=Lasso Test", "-c", "user.email=lasso@example.com", "-c", "init.defaultBranch=main", "-c", "commit.gpgsign=false"}, arguments...)...)
	command.Dir = workingDirectory
	output, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(output))
}

func TestClassifierAgainstRealRepositories(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	repositoryDirectory := testInstance.TempDir()
	runGit(testInstance, repositoryDirectory, "init", "--quiet")
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryDirectory, "README.md"), []byte("hello\n"), 0o644))
	runGit(testInstance, repositoryDirectory, "add", "README.md")
	runGit(testInstance, repositoryDirectory, "commit", "--quiet", "-m", "Initial commit")
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryDirectory, "README.md"), []byte("changed\n"), 0o644))

	plainDirectory := testInstance.TempDir()

	taskRunner, runnerError := execshell.NewTaskRunner(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, runnerError)
	classifier, classifierError := status.NewClassifier(zap.NewNop(), taskRunner, 10*time.Second)
	require.NoError(testInstance, classifierError)

	repositoryResult := classifier.Classify(context.Background(), registry.RepositoryRef{Name: "repo", Path: repositoryDirectory})
	require.NoError(testInstance, repositoryResult.Err)
	require.NotNil(testInstance, repositoryResult.Status)
	require.Equal(testInstance, "main", repositoryResult.Status.Branch)
	require.True(testInstance, repositoryResult.Status.IsDirty)
	require.False(testInstance, repositoryResult.Status.HasUpstream)
	require.Zero(testInstance, repositoryResult.Status.Ahead)
	require.Equal(testInstance, "Initial commit", repositoryResult.Status.Commit.Subject)

	plainResult := classifier.Classify(context.Background(), registry.RepositoryRef{Name: "plain", Path: plainDirectory})
	require.ErrorIs(testInstance, plainResult.Err, status.ErrNotARepository)
	require.Nil(testInstance, plainResult.Status)
}
