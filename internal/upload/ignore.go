package upload

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

const (
	ignoreModeLiteralValueConstant        = "literal"
	ignoreModeGlobValueConstant           = "glob"
	unsupportedIgnoreModeTemplateConstant = "unsupported ignore mode %q"
	invalidIgnorePatternTemplateConstant  = "invalid ignore pattern %q: %w"
	pathSegmentSeparatorConstant          = "/"
)

// IgnoreMode selects how ignore names are compared with path segments.
type IgnoreMode string

// Ignore modes.
const (
	// IgnoreModeLiteral requires a segment to equal an ignore name exactly, so "npm-debug.log*"
	// only matches a segment literally named "npm-debug.log*".
	IgnoreModeLiteral IgnoreMode = IgnoreMode(ignoreModeLiteralValueConstant)
	// IgnoreModeGlob treats each ignore name as a path.Match pattern applied to every segment.
	IgnoreModeGlob IgnoreMode = IgnoreMode(ignoreModeGlobValueConstant)
)

// ParseIgnoreMode normalizes textual ignore modes. Empty input selects IgnoreModeGlob.
func ParseIgnoreMode(modeValue string) (IgnoreMode, error) {
	trimmedValue := strings.ToLower(strings.TrimSpace(modeValue))
	switch IgnoreMode(trimmedValue) {
	case "", IgnoreModeGlob:
		return IgnoreModeGlob, nil
	case IgnoreModeLiteral:
		return IgnoreModeLiteral, nil
	default:
		return "", fmt.Errorf(unsupportedIgnoreModeTemplateConstant, modeValue)
	}
}

// IgnoreMatcher reports whether a local path contains an ignored segment.
type IgnoreMatcher struct {
	mode  IgnoreMode
	names []string
}

// NewIgnoreMatcher builds a matcher from ignore names. Blank names are dropped.
func NewIgnoreMatcher(names []string, mode IgnoreMode) (*IgnoreMatcher, error) {
	parsedMode, modeError := ParseIgnoreMode(string(mode))
	if modeError != nil {
		return nil, modeError
	}

	sanitizedNames := make([]string, 0, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		if parsedMode == IgnoreModeGlob {
			if _, patternError := path.Match(trimmedName, ""); patternError != nil {
				return nil, fmt.Errorf(invalidIgnorePatternTemplateConstant, trimmedName, patternError)
			}
		}
		sanitizedNames = append(sanitizedNames, trimmedName)
	}

	return &IgnoreMatcher{mode: parsedMode, names: sanitizedNames}, nil
}

// Match reports whether any segment of localPath matches an ignore name. Callers pass the full
// local path, so an ignored ancestor of the upload root excludes everything beneath it.
func (matcher *IgnoreMatcher) Match(localPath string) bool {
	if matcher == nil || len(matcher.names) == 0 {
		return false
	}

	for _, segment := range strings.Split(filepath.ToSlash(localPath), pathSegmentSeparatorConstant) {
		if len(segment) == 0 {
			continue
		}
		for _, name := range matcher.names {
			if matcher.segmentMatches(name, segment) {
				return true
			}
		}
	}
	return false
}

func (matcher *IgnoreMatcher) segmentMatches(name string, segment string) bool {
	if matcher.mode == IgnoreModeLiteral {
		return name == segment
	}
	matched, _ := path.Match(name, segment)
	return matched
}
