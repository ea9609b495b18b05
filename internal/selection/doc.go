// Package selection resolves the current context of a registry into the ordered list of repositories an
// operation targets. Resolution never fails as a whole: every name that cannot be resolved produces a
// ResolutionError in its own position while the remaining targets stay usable.
package selection
