package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddBranchFlagReportsOverrideOnlyWhenSet(t *testing.T) {
	command := &cobra.Command{}
	AddBranchFlag(command, "Branch to write to")

	_, overridden := StringOverride(command, BranchFlagName)
	require.False(t, overridden)

	require.NoError(t, command.ParseFlags([]string{"--branch", " main "}))
	branchValue, overridden := StringOverride(command, BranchFlagName)
	require.True(t, overridden)
	require.Equal(t, "main", branchValue)
}

func TestAddAssumeYesFlagParsesShorthand(t *testing.T) {
	command := &cobra.Command{}
	AddAssumeYesFlag(command)
	AddAssumeYesFlag(command)

	require.NoError(t, command.ParseFlags([]string{"-y"}))
	assumeYes, overridden := BoolOverride(command, AssumeYesFlagName)
	require.True(t, overridden)
	require.True(t, assumeYes)
}

func TestOverridesIgnoreUnknownFlags(t *testing.T) {
	command := &cobra.Command{}
	command.Flags().StringSlice("ignore", nil, "")

	_, stringOverridden := StringOverride(command, "missing")
	require.False(t, stringOverridden)

	require.NoError(t, command.ParseFlags([]string{"--ignore", "dist,.cache", "--ignore", "tmp"}))
	ignoreValues, sliceOverridden := StringSliceOverride(command, "ignore")
	require.True(t, sliceOverridden)
	require.Equal(t, []string{"dist", ".cache", "tmp"}, ignoreValues)

	_, boolOverridden := BoolOverride(command, "ignore")
	require.False(t, boolOverridden)
}
