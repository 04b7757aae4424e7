// Package branching parses the project-context argument that addresses an analysis
// submission: a numeric project ID optionally followed by a branch specifier.
//
//	42
//	42;branchId=7
//	42;branch=main
package branching

import (
	"strconv"
	"strings"
)

const (
	contextSeparator = ";"
	branchIDPrefix   = "branchId="
	branchNamePrefix = "branch="
)

// ErrorKind classifies a context parse failure.
type ErrorKind int

const (
	ErrInvalidProjectID ErrorKind = iota + 1
	ErrMissingProjectID
	ErrMissingBranchSpec
	ErrInvalidBranchID
)

var errorMessages = map[ErrorKind]string{
	ErrInvalidProjectID:  "project id should be a number",
	ErrMissingProjectID:  "Must contain a project ID.",
	ErrMissingBranchSpec: "Must contain branch or branchId identifier.",
	// Also reported for non-numeric or overflowing IDs, not only empty ones.
	ErrInvalidBranchID: "branch-id cannot be empty",
}

// ParseError is returned for malformed project-context or branch-specifier input.
type ParseError struct {
	Kind  ErrorKind
	Input string
}

func (e *ParseError) Error() string {
	return errorMessages[e.Kind]
}

func newParseError(kind ErrorKind, input string) *ParseError {
	return &ParseError{Kind: kind, Input: input}
}

// ProjectContext identifies a project and, optionally, a branch within it. Values
// come from ParseProjectContext and cannot be changed afterwards.
type ProjectContext struct {
	projectID uint32
	branch    *BranchSpec
	raw       string
}

// ParseProjectContext parses "<id>", "<id>;branchId=<n>" or "<id>;branch=<name>".
func ParseProjectContext(input string) (ProjectContext, error) {
	prefix, suffix, found := strings.Cut(input, contextSeparator)
	if !found {
		id, err := parseUint32(input)
		if err != nil {
			return ProjectContext{}, newParseError(ErrInvalidProjectID, input)
		}
		return ProjectContext{projectID: id, raw: input}, nil
	}

	if prefix == "" || !isDigits(prefix) {
		return ProjectContext{}, newParseError(ErrMissingProjectID, input)
	}
	id, err := parseUint32(prefix)
	if err != nil {
		return ProjectContext{}, newParseError(ErrInvalidProjectID, input)
	}

	if suffix == "" {
		return ProjectContext{}, newParseError(ErrMissingBranchSpec, input)
	}
	branch, err := ParseBranchSpec(suffix)
	if err != nil {
		return ProjectContext{}, err
	}

	return ProjectContext{projectID: id, branch: &branch, raw: input}, nil
}

// APIString is the path segment used to address the context on the server. A bare
// context is normalized to its digits; a branch context keeps the input verbatim so
// the server sees the ";branch=..." syntax.
func (c ProjectContext) APIString() string {
	if c.branch == nil {
		return c.ProjectIDString()
	}
	return c.raw
}

// ProjectID returns the numeric project ID.
func (c ProjectContext) ProjectID() uint32 {
	return c.projectID
}

// Branch returns the branch specifier, if the context has one.
func (c ProjectContext) Branch() (BranchSpec, bool) {
	if c.branch == nil {
		return BranchSpec{}, false
	}
	return *c.branch, true
}

// ProjectIDString returns the project ID without any branch specifier.
func (c ProjectContext) ProjectIDString() string {
	return strconv.FormatUint(uint64(c.projectID), 10)
}

// String returns the context as it was entered.
func (c ProjectContext) String() string {
	return c.raw
}

// BranchSpec selects a branch either by numeric ID or by name.
type BranchSpec struct {
	ID   uint32
	Name string
	byID bool
}

// BranchByID returns a specifier that selects a branch by ID.
func BranchByID(id uint32) BranchSpec {
	return BranchSpec{ID: id, byID: true}
}

// BranchByName returns a specifier that selects a branch by name.
func BranchByName(name string) BranchSpec {
	return BranchSpec{Name: name}
}

// ParseBranchSpec parses "branchId=<n>" or "branch=<name>". An empty name is accepted.
func ParseBranchSpec(s string) (BranchSpec, error) {
	switch {
	case strings.HasPrefix(s, branchIDPrefix):
		id, err := parseUint32(strings.TrimPrefix(s, branchIDPrefix))
		if err != nil {
			return BranchSpec{}, newParseError(ErrInvalidBranchID, s)
		}
		return BranchByID(id), nil
	case strings.HasPrefix(s, branchNamePrefix):
		return BranchByName(strings.TrimPrefix(s, branchNamePrefix)), nil
	default:
		return BranchSpec{}, newParseError(ErrMissingBranchSpec, s)
	}
}

// IsByID reports whether the branch is selected by numeric ID.
func (b BranchSpec) IsByID() bool {
	return b.byID
}

func (b BranchSpec) String() string {
	if b.byID {
		return branchIDPrefix + strconv.FormatUint(uint64(b.ID), 10)
	}
	return branchNamePrefix + b.Name
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
