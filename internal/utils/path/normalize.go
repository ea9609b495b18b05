// Package pathutils converts user supplied repository paths into the absolute form stored in the registry.
package pathutils

import (
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// PathNormalizer trims, home-expands, and absolutizes path arguments.
type PathNormalizer struct {
	expander *HomeExpander
}

// NewPathNormalizer builds a PathNormalizer. A nil expander uses the operating system home directory.
func NewPathNormalizer(expander *HomeExpander) *PathNormalizer {
	if expander == nil {
		expander = NewHomeExpander()
	}
	return &PathNormalizer{expander: expander}
}

// Normalize returns the clean absolute form of path, or false for blank input.
func (normalizer *PathNormalizer) Normalize(path string) (string, bool) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return "", false
	}
	expandedPath := filepath.Clean(normalizer.expander.Expand(trimmedPath))
	if absolutePath, absoluteError := filepath.Abs(expandedPath); absoluteError == nil {
		return absolutePath, true
	}
	return expandedPath, true
}

// NormalizeAll normalizes every path, dropping blanks and repeats and keeping first-seen order.
// It returns nil when nothing remains.
func (normalizer *PathNormalizer) NormalizeAll(paths []string) []string {
	var normalizedPaths []string
	seenKeys := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		normalizedPath, present := normalizer.Normalize(path)
		if !present {
			continue
		}
		key := comparisonKey(normalizedPath)
		if _, seen := seenKeys[key]; seen {
			continue
		}
		seenKeys[key] = struct{}{}
		normalizedPaths = append(normalizedPaths, normalizedPath)
	}
	return normalizedPaths
}

// PruneNested drops every path lying beneath another path of the list. Survivors keep their order.
func PruneNested(paths []string) []string {
	byDepth := slices.Clone(paths)
	slices.SortStableFunc(byDepth, func(first string, second string) int {
		return len(first) - len(second)
	})

	kept := make(map[string]struct{}, len(paths))
	var outermost []string
	for _, candidate := range byDepth {
		if slices.ContainsFunc(outermost, func(parent string) bool { return IsWithin(parent, candidate) }) {
			continue
		}
		outermost = append(outermost, candidate)
		kept[candidate] = struct{}{}
	}

	return slices.DeleteFunc(slices.Clone(paths), func(path string) bool {
		_, survives := kept[path]
		return !survives
	})
}

// IsWithin reports whether candidate equals parent or lies beneath it.
func IsWithin(parent string, candidate string) bool {
	relativePath, relativeError := filepath.Rel(comparisonKey(parent), comparisonKey(candidate))
	if relativeError != nil || filepath.IsAbs(relativePath) {
		return false
	}
	return relativePath != ".." && !strings.HasPrefix(relativePath, ".."+string(filepath.Separator))
}

func comparisonKey(path string) string {
	cleanedPath := filepath.Clean(path)
	if runtime.GOOS == "windows" {
		return strings.ToLower(cleanedPath)
	}
	return cleanedPath
}
