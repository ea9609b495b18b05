package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const homeShortcutConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// HomeExpander translates between "~"-prefixed paths typed by users and the absolute paths stored in
// the registry. The home directory is looked up once; when the lookup fails paths pass through unchanged.
type HomeExpander struct {
	provider HomeDirectoryProvider
	once     sync.Once
	home     string
}

// NewHomeExpander uses os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(nil)
}

// NewHomeExpanderWithProvider uses provider, or os.UserHomeDir when provider is nil.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand rewrites "~", "~/rest", and "~<separator>rest" relative to the home directory.
// "~user" forms are returned as given.
func (expander *HomeExpander) Expand(path string) string {
	remainder, hasShortcut := strings.CutPrefix(path, homeShortcutConstant)
	if expander == nil || !hasShortcut {
		return path
	}
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != filepath.Separator {
		return path
	}
	home := expander.homeDirectory()
	if len(home) == 0 {
		return path
	}
	return filepath.Join(home, remainder[min(1, len(remainder)):])
}

// Shorten rewrites a path at or beneath the home directory as "~" or "~/rest" for display.
// A filesystem root home directory is never shortened.
func (expander *HomeExpander) Shorten(path string) string {
	if expander == nil || len(path) == 0 {
		return path
	}
	home := filepath.Clean(expander.homeDirectory())
	if home == "." || home == string(filepath.Separator) {
		return path
	}

	cleanedPath := filepath.Clean(path)
	if cleanedPath == home {
		return homeShortcutConstant
	}
	if remainder, beneath := strings.CutPrefix(cleanedPath, home+string(filepath.Separator)); beneath {
		return homeShortcutConstant + string(filepath.Separator) + remainder
	}
	return path
}

func (expander *HomeExpander) homeDirectory() string {
	expander.once.Do(func() {
		if home, lookupError := expander.provider(); lookupError == nil {
			expander.home = home
		}
	})
	return expander.home
}
