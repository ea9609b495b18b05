package shared

import (
	"io/fs"
	"time"
)

// Clock supplies the start and finish instants recorded on task outcomes.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// DocumentStore is the file access needed to persist the registry document.
type DocumentStore interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
	MkdirAll(path string, permissions fs.FileMode) error
	Rename(oldPath string, newPath string) error
	Remove(path string) error
}

// PathInspector is the read-only path access needed to check registered repositories before a run.
type PathInspector interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	EvalSymlinks(path string) (string, error)
}

// FileSystem combines registry persistence with repository path inspection.
type FileSystem interface {
	DocumentStore
	PathInspector
}

// RepositoryDiscoverer walks registration roots and returns the Git working trees found beneath them.
type RepositoryDiscoverer interface {
	DiscoverRepositories(roots []string) ([]string, error)
}
