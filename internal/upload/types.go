package upload

import (
	"fmt"
	"strings"
)

const (
	// DefaultBranchConstant is the branch written to when none is configured.
	DefaultBranchConstant = "master"
	// DefaultCommitMessageConstant is the commit message used for every file write.
	DefaultCommitMessageConstant = "added via upload"

	lookupPolicyAbsentValueConstant         = "absent"
	lookupPolicyStrictValueConstant         = "strict"
	unsupportedLookupPolicyTemplateConstant = "unsupported lookup failure policy %q"
)

// DefaultIgnoreNames lists the path segments skipped when no ignore set is configured.
func DefaultIgnoreNames() []string {
	return []string{
		"node_modules",
		".git",
		"__pycache__",
		"npm-debug.log*",
		"yarn-debug.log*",
		"yarn-error.log*",
		"pnpm-debug.log*",
		"lerna-debug.log*",
	}
}

// LookupFailurePolicy decides how a failed version-token lookup affects the write.
type LookupFailurePolicy string

// Lookup failure policies.
const (
	// LookupFailureAbsent treats every unsuccessful lookup as "path does not exist yet".
	LookupFailureAbsent LookupFailurePolicy = LookupFailurePolicy(lookupPolicyAbsentValueConstant)
	// LookupFailureStrict treats only 404 as absent and fails the file on any other lookup error.
	LookupFailureStrict LookupFailurePolicy = LookupFailurePolicy(lookupPolicyStrictValueConstant)
)

// ParseLookupFailurePolicy normalizes textual policy values. Empty input selects LookupFailureAbsent.
func ParseLookupFailurePolicy(policyValue string) (LookupFailurePolicy, error) {
	trimmedValue := strings.ToLower(strings.TrimSpace(policyValue))
	switch LookupFailurePolicy(trimmedValue) {
	case "", LookupFailureAbsent:
		return LookupFailureAbsent, nil
	case LookupFailureStrict:
		return LookupFailureStrict, nil
	default:
		return "", fmt.Errorf(unsupportedLookupPolicyTemplateConstant, policyValue)
	}
}

// Target describes one upload run. It is not modified while the run executes.
type Target struct {
	Repository          string
	Branch              string
	IgnoreNames         []string
	IgnoreMode          IgnoreMode
	IncludeParent       bool
	CommitMessage       string
	LookupFailurePolicy LookupFailurePolicy
}

// NewTarget returns a Target for the repository populated with default settings.
func NewTarget(repository string) Target {
	return Target{
		Repository:          repository,
		Branch:              DefaultBranchConstant,
		IgnoreNames:         DefaultIgnoreNames(),
		IgnoreMode:          IgnoreModeGlob,
		IncludeParent:       false,
		CommitMessage:       DefaultCommitMessageConstant,
		LookupFailurePolicy: LookupFailureAbsent,
	}
}

// normalize fills unset fields with defaults. A nil ignore set selects the defaults while an
// empty non-nil set disables ignoring.
func (target Target) normalize() Target {
	normalized := target
	normalized.Repository = strings.TrimSpace(target.Repository)

	normalized.Branch = strings.TrimSpace(target.Branch)
	if len(normalized.Branch) == 0 {
		normalized.Branch = DefaultBranchConstant
	}

	if len(strings.TrimSpace(target.CommitMessage)) == 0 {
		normalized.CommitMessage = DefaultCommitMessageConstant
	}

	if target.IgnoreNames == nil {
		normalized.IgnoreNames = DefaultIgnoreNames()
	} else {
		normalized.IgnoreNames = append([]string{}, target.IgnoreNames...)
	}

	if len(normalized.IgnoreMode) == 0 {
		normalized.IgnoreMode = IgnoreModeGlob
	}
	if len(normalized.LookupFailurePolicy) == 0 {
		normalized.LookupFailurePolicy = LookupFailureAbsent
	}

	return normalized
}

// FileEntry is a discovered file ready to be written.
type FileEntry struct {
	LocalPath      string
	RepositoryPath string
	Content        []byte
}

// Action enumerates per-file outcomes.
type Action string

// Per-file outcomes.
const (
	ActionUploaded Action = "uploaded"
	ActionUpdated  Action = "updated"
	ActionIgnored  Action = "ignored"
	ActionFailed   Action = "failed"
)

// FileResult records what happened to one discovered path.
type FileResult struct {
	LocalPath      string `json:"local_path" yaml:"local_path"`
	RepositoryPath string `json:"repository_path,omitempty" yaml:"repository_path,omitempty"`
	Action         Action `json:"action" yaml:"action"`
	StatusCode     int    `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Detail         string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err            error  `json:"-" yaml:"-"`
}

// Result aggregates the outcome of an upload run.
type Result struct {
	RunID      string       `json:"run_id" yaml:"run_id"`
	Repository string       `json:"repository" yaml:"repository"`
	Branch     string       `json:"branch" yaml:"branch"`
	Files      []FileResult `json:"files" yaml:"files"`
}

// Count returns the number of file results with the provided action.
func (result Result) Count(action Action) int {
	count := 0
	for _, fileResult := range result.Files {
		if fileResult.Action == action {
			count++
		}
	}
	return count
}

// Failed reports whether any file write or lookup failed.
func (result Result) Failed() bool {
	return result.Count(ActionFailed) > 0
}
