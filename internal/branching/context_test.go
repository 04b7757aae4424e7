package branching_test

import (
	"codedx-client/internal/branching"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProjectContext_Bare(t *testing.T) {
	t.Parallel()

	ctx, err := branching.ParseProjectContext("42")

	require.NoError(t, err)
	assert.Equal(t, uint32(42), ctx.ProjectID())
	_, hasBranch := ctx.Branch()
	assert.False(t, hasBranch)
	assert.Equal(t, "42", ctx.APIString())
	assert.Equal(t, "42", ctx.ProjectIDString())
}

func TestParseProjectContext_BareIsNormalized(t *testing.T) {
	t.Parallel()

	ctx, err := branching.ParseProjectContext("007")

	require.NoError(t, err)
	assert.Equal(t, uint32(7), ctx.ProjectID())
	assert.Equal(t, "7", ctx.APIString(), "bare contexts use the normalized digits")
	assert.Equal(t, "007", ctx.String())
}

func TestParseProjectContext_WithBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		wantID uint32
		branch branching.BranchSpec
	}{
		{name: "branch id", input: "42;branchId=7", wantID: 42, branch: branching.BranchByID(7)},
		{name: "branch name", input: "42;branch=main", wantID: 42, branch: branching.BranchByName("main")},
		{name: "branch name with slash", input: "3;branch=feature/x", wantID: 3, branch: branching.BranchByName("feature/x")},
		{name: "empty branch name", input: "42;branch=", wantID: 42, branch: branching.BranchByName("")},
		{name: "name containing separator", input: "1;branch=a;b", wantID: 1, branch: branching.BranchByName("a;b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, err := branching.ParseProjectContext(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, ctx.ProjectID())
			branch, ok := ctx.Branch()
			require.True(t, ok)
			assert.Equal(t, tt.branch, branch)
			assert.Equal(t, tt.input, ctx.APIString(), "branch contexts keep the input verbatim")
		})
	}
}

func TestParseProjectContext_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		kind    branching.ErrorKind
		message string
	}{
		{name: "non numeric", input: "abc", kind: branching.ErrInvalidProjectID, message: "project id should be a number"},
		{name: "empty", input: "", kind: branching.ErrInvalidProjectID, message: "project id should be a number"},
		{name: "negative", input: "-1", kind: branching.ErrInvalidProjectID, message: "project id should be a number"},
		{name: "overflow", input: "4294967296", kind: branching.ErrInvalidProjectID, message: "project id should be a number"},
		{
			name:    "overflow with branch",
			input:   "99999999999;branch=main",
			kind:    branching.ErrInvalidProjectID,
			message: "project id should be a number",
		},
		{name: "missing suffix", input: "42;", kind: branching.ErrMissingBranchSpec, message: "Must contain branch or branchId identifier."},
		{name: "missing prefix", input: ";branch=main", kind: branching.ErrMissingProjectID, message: "Must contain a project ID."},
		{name: "non digit prefix", input: "4x;branch=main", kind: branching.ErrMissingProjectID, message: "Must contain a project ID."},
		{name: "unknown suffix", input: "42;tag=v1", kind: branching.ErrMissingBranchSpec, message: "Must contain branch or branchId identifier."},
		{name: "non numeric branch id", input: "42;branchId=abc", kind: branching.ErrInvalidBranchID, message: "branch-id cannot be empty"},
		{name: "empty branch id", input: "42;branchId=", kind: branching.ErrInvalidBranchID, message: "branch-id cannot be empty"},
		{name: "overflowing branch id", input: "42;branchId=4294967296", kind: branching.ErrInvalidBranchID, message: "branch-id cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := branching.ParseProjectContext(tt.input)

			require.Error(t, err)
			var parseErr *branching.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.kind, parseErr.Kind)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestParseProjectContext_MaxUint32(t *testing.T) {
	t.Parallel()

	ctx, err := branching.ParseProjectContext("4294967295;branchId=4294967295")

	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), ctx.ProjectID())
	branch, ok := ctx.Branch()
	require.True(t, ok)
	assert.Equal(t, uint32(4294967295), branch.ID)
}

func TestProjectContext_BranchIsACopy(t *testing.T) {
	t.Parallel()

	ctx, err := branching.ParseProjectContext("42;branch=main")
	require.NoError(t, err)

	branch, ok := ctx.Branch()
	require.True(t, ok)
	branch.Name = "release"

	again, _ := ctx.Branch()
	assert.Equal(t, "main", again.Name)
	assert.Equal(t, "42;branch=main", ctx.APIString())
}

func TestParseBranchSpec(t *testing.T) {
	t.Parallel()

	byID, err := branching.ParseBranchSpec("branchId=12")
	require.NoError(t, err)
	assert.True(t, byID.IsByID())
	assert.Equal(t, uint32(12), byID.ID)
	assert.Equal(t, "branchId=12", byID.String())

	byName, err := branching.ParseBranchSpec("branch=release")
	require.NoError(t, err)
	assert.False(t, byName.IsByID())
	assert.Equal(t, "release", byName.Name)
	assert.Equal(t, "branch=release", byName.String())

	_, err = branching.ParseBranchSpec("branchid=12")
	require.Error(t, err, "prefixes are case sensitive")
	assert.Equal(t, "Must contain branch or branchId identifier.", err.Error())
}
