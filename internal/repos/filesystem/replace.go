package filesystem

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/temirov/lasso/internal/repos/shared"
)

const (
	stagingSuffixConstant                = ".tmp"
	directoryPermissionsConstant         = 0o755
	createDirectoryErrorTemplateConstant = "failed to create directory %s: %w"
	writeStagingErrorTemplateConstant    = "failed to write %s: %w"
	replaceErrorTemplateConstant         = "failed to replace %s: %w"
)

// StagingPath returns the sibling file ReplaceFile writes before renaming it over path.
func StagingPath(path string) string {
	return path + stagingSuffixConstant
}

// ReplaceFile writes data to the staging sibling of path and renames it into place, creating the
// parent directory first. Readers observe either the previous content or the new content. The
// staging file is removed when the rename fails.
func ReplaceFile(store shared.DocumentStore, path string, data []byte, permissions fs.FileMode) error {
	parentDirectory := filepath.Dir(path)
	if mkdirError := store.MkdirAll(parentDirectory, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(createDirectoryErrorTemplateConstant, parentDirectory, mkdirError)
	}

	stagingPath := StagingPath(path)
	if writeError := store.WriteFile(stagingPath, data, permissions); writeError != nil {
		return fmt.Errorf(writeStagingErrorTemplateConstant, stagingPath, writeError)
	}
	if renameError := store.Rename(stagingPath, path); renameError != nil {
		_ = store.Remove(stagingPath)
		return fmt.Errorf(replaceErrorTemplateConstant, path, renameError)
	}
	return nil
}
