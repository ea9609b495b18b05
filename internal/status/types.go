package status

import "errors"

const shortCommitHashLengthConstant = 7

var (
	// ErrNotARepository indicates the directory has no git metadata or git output could not be interpreted.
	ErrNotARepository = errors.New("not a git repository")
	// ErrStatusUnavailable indicates git recognized the repository but could not report its state,
	// for example because of a broken submodule or a symlink loop in the working tree.
	ErrStatusUnavailable = errors.New("repository status unavailable")
)

// CommitSummary identifies the commit HEAD points at.
type CommitSummary struct {
	Hash    string `json:"hash,omitempty" yaml:"hash,omitempty"`
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

// ShortHash abbreviates the commit hash for display.
func (summary CommitSummary) ShortHash() string {
	if len(summary.Hash) <= shortCommitHashLengthConstant {
		return summary.Hash
	}
	return summary.Hash[:shortCommitHashLengthConstant]
}

// RepositoryStatus is the semantic summary of a repository's working tree and branch.
// Branch is empty when HEAD is detached. Ahead and Behind are zero when no upstream is configured.
type RepositoryStatus struct {
	Branch        string        `json:"branch,omitempty" yaml:"branch,omitempty"`
	Detached      bool          `json:"detached" yaml:"detached"`
	IsDirty       bool          `json:"is_dirty" yaml:"is_dirty"`
	ModifiedCount int           `json:"modified_count" yaml:"modified_count"`
	Upstream      string        `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	HasUpstream   bool          `json:"has_upstream" yaml:"has_upstream"`
	Ahead         int           `json:"ahead" yaml:"ahead"`
	Behind        int           `json:"behind" yaml:"behind"`
	Commit        CommitSummary `json:"commit" yaml:"commit"`
}
