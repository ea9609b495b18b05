// Package status classifies the git state of a repository: branch, dirty flag,
// divergence from upstream, and latest commit. Directories that are not git
// repositories are reported as ErrNotARepository rather than as process failures.
package status
