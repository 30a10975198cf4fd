package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	// BranchFlagName exposes the shared branch flag name.
	BranchFlagName = "branch"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
)

// AddBranchFlag attaches the branch flag with the provided usage to the command.
func AddBranchFlag(command *cobra.Command, usage string) {
	if command == nil || command.Flags().Lookup(BranchFlagName) != nil {
		return
	}
	command.Flags().String(BranchFlagName, "", usage)
}

// AddAssumeYesFlag attaches the assume-yes flag to the command.
func AddAssumeYesFlag(command *cobra.Command) {
	if command == nil || command.Flags().Lookup(AssumeYesFlagName) != nil {
		return
	}
	command.Flags().BoolP(AssumeYesFlagName, AssumeYesFlagShorthand, false, AssumeYesFlagUsage)
}

// StringOverride returns the trimmed flag value and true when the flag was set explicitly.
func StringOverride(command *cobra.Command, flagName string) (string, bool) {
	if command == nil || !command.Flags().Changed(flagName) {
		return "", false
	}
	flagValue, flagError := command.Flags().GetString(flagName)
	if flagError != nil {
		return "", false
	}
	return strings.TrimSpace(flagValue), true
}

// StringSliceOverride returns the flag values and true when the flag was set explicitly.
func StringSliceOverride(command *cobra.Command, flagName string) ([]string, bool) {
	if command == nil || !command.Flags().Changed(flagName) {
		return nil, false
	}
	flagValues, flagError := command.Flags().GetStringSlice(flagName)
	if flagError != nil {
		return nil, false
	}
	return flagValues, true
}

// BoolOverride returns the flag value and true when the flag was set explicitly.
func BoolOverride(command *cobra.Command, flagName string) (bool, bool) {
	if command == nil || !command.Flags().Changed(flagName) {
		return false, false
	}
	flagValue, flagError := command.Flags().GetBool(flagName)
	if flagError != nil {
		return false, false
	}
	return flagValue, true
}
