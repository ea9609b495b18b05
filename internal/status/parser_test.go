package status_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lasso/internal/status"
)

func TestParsePorcelainV2(testInstance *testing.T) {
	testCases := []struct {
		name           string
		output         string
		expectedStatus status.RepositoryStatus
		expectError    bool
	}{
		{
			name: "clean_branch_with_upstream",
			output: "# branch.oid 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
				"# branch.head main\n" +
				"# branch.upstream origin/main\n" +
				"# branch.ab +2 -1\n",
			expectedStatus: status.RepositoryStatus{
				Branch:      "main",
				Upstream:    "origin/main",
				HasUpstream: true,
				Ahead:       2,
				Behind:      1,
				Commit:      status.CommitSummary{Hash: "4b825dc642cb6eb9a060e54bf8d69288fbee4904"},
			},
		},
		{
			name: "dirty_without_upstream",
			output: "# branch.oid 1111111111111111111111111111111111111111\n" +
				"# branch.head feature/x\n" +
				"1 .M N... 100644 100644 100644 abc abc README.md\n" +
				"2 R. N... 100644 100644 100644 abc abc R100 new.go\told.go\n" +
				"u UU N... 100644 100644 100644 100644 abc abc abc conflict.go\n" +
				"? untracked.txt\n",
			expectedStatus: status.RepositoryStatus{
				Branch:        "feature/x",
				IsDirty:       true,
				ModifiedCount: 3,
				Commit:        status.CommitSummary{Hash: "1111111111111111111111111111111111111111"},
			},
		},
		{
			name:           "detached_head",
			output:         "# branch.oid 2222222222222222222222222222222222222222\n# branch.head (detached)\n",
			expectedStatus: status.RepositoryStatus{Detached: true, Commit: status.CommitSummary{Hash: "2222222222222222222222222222222222222222"}},
		},
		{
			name:           "unborn_repository",
			output:         "# branch.oid (initial)\n# branch.head main\n",
			expectedStatus: status.RepositoryStatus{Branch: "main"},
		},
		{
			name:        "missing_branch_header",
			output:      "",
			expectError: true,
		},
		{
			name:        "unexpected_line",
			output:      "# branch.head main\n M README.md\n",
			expectError: true,
		},
		{
			name:        "malformed_ahead_behind",
			output:      "# branch.head main\n# branch.ab 2 1\n",
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			repositoryStatus, parseError := status.ParsePorcelainV2([]byte(testCase.output))
			if testCase.expectError {
				require.ErrorIs(subtest, parseError, status.ErrUnparseableStatus)
				return
			}
			require.NoError(subtest, parseError)
			require.Equal(subtest, testCase.expectedStatus, repositoryStatus)
		})
	}
}

func TestParseCommitSummary(testInstance *testing.T) {
	summary, parsed := status.ParseCommitSummary([]byte("0123456789abcdef\x00Fix parser\n"))
	require.True(testInstance, parsed)
	require.Equal(testInstance, "0123456789abcdef", summary.Hash)
	require.Equal(testInstance, "Fix parser", summary.Subject)
	require.Equal(testInstance, "0123456", summary.ShortHash())

	_, parsedEmpty := status.ParseCommitSummary([]byte("\n"))
	require.False(testInstance, parsedEmpty)
}
