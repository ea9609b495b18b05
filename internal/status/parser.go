package status

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	headerPrefixConstant             = "# "
	branchOIDHeaderConstant          = "branch.oid"
	branchHeadHeaderConstant         = "branch.head"
	branchUpstreamHeaderConstant     = "branch.upstream"
	branchAheadBehindHeaderConstant  = "branch.ab"
	initialCommitMarkerConstant      = "(initial)"
	detachedHeadMarkerConstant       = "(detached)"
	ordinaryEntryPrefixConstant      = "1 "
	renamedEntryPrefixConstant       = "2 "
	unmergedEntryPrefixConstant      = "u "
	untrackedEntryPrefixConstant     = "? "
	ignoredEntryPrefixConstant       = "! "
	aheadPrefixConstant              = "+"
	behindPrefixConstant             = "-"
	unexpectedLineErrorTemplate      = "%w: unexpected line %q"
	malformedHeaderErrorTemplate     = "%w: malformed header %q"
	missingBranchHeaderErrorTemplate = "%w: missing branch.head header"
	commitFieldSeparatorConstant     = "\x00"
)

// ErrUnparseableStatus indicates git produced output that is not porcelain v2.
var ErrUnparseableStatus = errors.New("unparseable status output")

// ParsePorcelainV2 interprets `git status --porcelain=v2 --branch` output.
func ParsePorcelainV2(output []byte) (RepositoryStatus, error) {
	repositoryStatus := RepositoryStatus{}
	branchHeaderSeen := false

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case len(line) == 0:
			continue
		case strings.HasPrefix(line, headerPrefixConstant):
			headerSeen, headerError := applyHeader(&repositoryStatus, strings.TrimPrefix(line, headerPrefixConstant))
			if headerError != nil {
				return RepositoryStatus{}, headerError
			}
			branchHeaderSeen = branchHeaderSeen || headerSeen
		case strings.HasPrefix(line, ordinaryEntryPrefixConstant),
			strings.HasPrefix(line, renamedEntryPrefixConstant),
			strings.HasPrefix(line, unmergedEntryPrefixConstant):
			repositoryStatus.ModifiedCount++
		case strings.HasPrefix(line, untrackedEntryPrefixConstant),
			strings.HasPrefix(line, ignoredEntryPrefixConstant):
			continue
		default:
			return RepositoryStatus{}, fmt.Errorf(unexpectedLineErrorTemplate, ErrUnparseableStatus, line)
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return RepositoryStatus{}, fmt.Errorf("%w: %w", ErrUnparseableStatus, scanError)
	}

	if !branchHeaderSeen {
		return RepositoryStatus{}, fmt.Errorf(missingBranchHeaderErrorTemplate, ErrUnparseableStatus)
	}

	repositoryStatus.IsDirty = repositoryStatus.ModifiedCount > 0
	return repositoryStatus, nil
}

func applyHeader(repositoryStatus *RepositoryStatus, header string) (bool, error) {
	key, value, _ := strings.Cut(header, " ")
	value = strings.TrimSpace(value)

	switch key {
	case branchOIDHeaderConstant:
		if value != initialCommitMarkerConstant {
			repositoryStatus.Commit.Hash = value
		}
	case branchHeadHeaderConstant:
		if value == detachedHeadMarkerConstant {
			repositoryStatus.Detached = true
		} else {
			repositoryStatus.Branch = value
		}
		return true, nil
	case branchUpstreamHeaderConstant:
		repositoryStatus.Upstream = value
		repositoryStatus.HasUpstream = len(value) > 0
	case branchAheadBehindHeaderConstant:
		ahead, behind, parseError := parseAheadBehind(value)
		if parseError != nil {
			return false, fmt.Errorf(malformedHeaderErrorTemplate, ErrUnparseableStatus, header)
		}
		repositoryStatus.Ahead = ahead
		repositoryStatus.Behind = behind
	}
	return false, nil
}

func parseAheadBehind(value string) (int, int, error) {
	fields := strings.Fields(value)
	if len(fields) != 2 || !strings.HasPrefix(fields[0], aheadPrefixConstant) || !strings.HasPrefix(fields[1], behindPrefixConstant) {
		return 0, 0, ErrUnparseableStatus
	}
	ahead, aheadError := strconv.Atoi(strings.TrimPrefix(fields[0], aheadPrefixConstant))
	if aheadError != nil || ahead < 0 {
		return 0, 0, ErrUnparseableStatus
	}
	behind, behindError := strconv.Atoi(strings.TrimPrefix(fields[1], behindPrefixConstant))
	if behindError != nil || behind < 0 {
		return 0, 0, ErrUnparseableStatus
	}
	return ahead, behind, nil
}

// ParseCommitSummary interprets `git log -1 --format=%H%x00%s` output.
func ParseCommitSummary(output []byte) (CommitSummary, bool) {
	trimmedOutput := strings.TrimRight(string(output), "\r\n")
	hash, subject, found := strings.Cut(trimmedOutput, commitFieldSeparatorConstant)
	if !found || len(strings.TrimSpace(hash)) == 0 {
		return CommitSummary{}, false
	}
	return CommitSummary{Hash: strings.TrimSpace(hash), Subject: subject}, true
}
