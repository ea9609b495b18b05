package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/temirov/lasso/internal/repos/filesystem"
	"github.com/temirov/lasso/internal/repos/shared"
)

const (
	registryFilePermissionsConstant      = 0o644
	readRegistryErrorTemplateConstant    = "failed to read registry %s: %w"
	decodeRegistryErrorTemplateConstant  = "failed to parse registry %s: %w"
	encodeRegistryErrorTemplateConstant  = "failed to encode registry: %w"
	saveRegistryErrorTemplateConstant    = "failed to save registry: %w"
	invalidRegistryErrorTemplateConstant = "%w: %s: %w"
)

var (
	// ErrStorePathRequired indicates the store was constructed without a file path.
	ErrStorePathRequired = errors.New("registry path is required")
	// ErrFileSystemNotConfigured indicates the store was constructed without a filesystem.
	ErrFileSystemNotConfigured = errors.New("registry filesystem not configured")
	// ErrInvalidRegistry indicates the persisted registry violates registry invariants.
	ErrInvalidRegistry = errors.New("invalid registry")
)

// Store loads and saves the registry file.
type Store struct {
	path       string
	fileSystem shared.DocumentStore
	codec      Codec
}

// NewStore constructs a Store for path, choosing the codec from its extension.
func NewStore(path string, fileSystem shared.DocumentStore) (*Store, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathRequired
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	codec, codecError := CodecForPath(trimmedPath)
	if codecError != nil {
		return nil, codecError
	}

	return &Store{path: trimmedPath, fileSystem: fileSystem, codec: codec}, nil
}

// Path returns the registry file location.
func (store *Store) Path() string {
	return store.path
}

// Load reads the registry. A missing file yields an empty registry selecting all repositories.
func (store *Store) Load() (Registry, error) {
	data, readError := store.fileSystem.ReadFile(store.path)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return New(), nil
		}
		return Registry{}, fmt.Errorf(readRegistryErrorTemplateConstant, store.path, readError)
	}

	loaded := Registry{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}
	if decodeError := store.codec.Unmarshal(data, &loaded); decodeError != nil {
		return Registry{}, fmt.Errorf(decodeRegistryErrorTemplateConstant, store.path, decodeError)
	}

	validated := New()
	for _, repository := range loaded.Repositories {
		if addError := validated.Add(repository); addError != nil {
			return Registry{}, fmt.Errorf(invalidRegistryErrorTemplateConstant, ErrInvalidRegistry, store.path, addError)
		}
	}
	validated.Context = ContextSelector{All: loaded.Context.All}
	if !loaded.Context.All {
		validated.Context = ExplicitRepositories(loaded.Context.Names...)
	}

	return validated, nil
}

// Save encodes the registry and replaces the file atomically.
func (store *Store) Save(repositoryRegistry Registry) error {
	encoded, encodeError := store.codec.Marshal(repositoryRegistry)
	if encodeError != nil {
		return fmt.Errorf(encodeRegistryErrorTemplateConstant, encodeError)
	}
	if replaceError := filesystem.ReplaceFile(store.fileSystem, store.path, encoded, registryFilePermissionsConstant); replaceError != nil {
		return fmt.Errorf(saveRegistryErrorTemplateConstant, replaceError)
	}
	return nil
}
