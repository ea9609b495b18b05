package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem is the shared.FileSystem backed by the host operating system.
type OSFileSystem struct{}

func (OSFileSystem) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (OSFileSystem) Abs(path string) (string, error) { return filepath.Abs(path) }

func (OSFileSystem) EvalSymlinks(path string) (string, error) { return filepath.EvalSymlinks(path) }

func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, data, permissions)
}

func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

func (OSFileSystem) Rename(oldPath string, newPath string) error { return os.Rename(oldPath, newPath) }

func (OSFileSystem) Remove(path string) error { return os.Remove(path) }
