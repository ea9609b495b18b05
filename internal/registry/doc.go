// Package registry models the set of managed repositories and the current context,
// and persists both to a YAML, TOML, or JSON file chosen by extension.
package registry
