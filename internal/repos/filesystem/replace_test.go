package filesystem_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/lasso/internal/repos/filesystem"
)

type renameRejectingFileSystem struct {
	filesystem.OSFileSystem
	removedPaths []string
}

func (fileSystem *renameRejectingFileSystem) Rename(string, string) error {
	return errors.New("cross-device link")
}

func (fileSystem *renameRejectingFileSystem) Remove(path string) error {
	fileSystem.removedPaths = append(fileSystem.removedPaths, path)
	return os.Remove(path)
}

func TestReplaceFile(testInstance *testing.T) {
	testCases := []struct {
		name            string
		existingContent string
	}{
		{name: "creates_missing_parent"},
		{name: "overwrites_previous_content", existingContent: "repositories: []\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			targetPath := filepath.Join(testInstance.TempDir(), "lasso", "registry.yaml")
			if len(testCase.existingContent) > 0 {
				require.NoError(testInstance, os.MkdirAll(filepath.Dir(targetPath), 0o755))
				require.NoError(testInstance, os.WriteFile(targetPath, []byte(testCase.existingContent), 0o644))
			}

			replaceError := filesystem.ReplaceFile(filesystem.OSFileSystem{}, targetPath, []byte("context: all\n"), 0o644)
			require.NoError(testInstance, replaceError)

			content, readError := os.ReadFile(targetPath)
			require.NoError(testInstance, readError)
			require.Equal(testInstance, "context: all\n", string(content))

			_, stagingError := os.Stat(filesystem.StagingPath(targetPath))
			require.ErrorIs(testInstance, stagingError, fs.ErrNotExist)
		})
	}
}

func TestReplaceFileRemovesStagingFileWhenRenameFails(testInstance *testing.T) {
	targetPath := filepath.Join(testInstance.TempDir(), "registry.yaml")
	fileSystem := &renameRejectingFileSystem{}

	replaceError := filesystem.ReplaceFile(fileSystem, targetPath, []byte("context: all\n"), 0o644)
	require.ErrorContains(testInstance, replaceError, "cross-device link")
	require.Equal(testInstance, []string{targetPath + ".tmp"}, fileSystem.removedPaths)

	_, statError := os.Stat(targetPath)
	require.ErrorIs(testInstance, statError, fs.ErrNotExist)
}
