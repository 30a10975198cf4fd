package upload

import (
	"strings"

	"github.com/temirov/ghpush/internal/upload"
)

const (
	configurationKeySeparatorConstant     = "."
	configurationBranchKeyConstant        = "branch"
	configurationIgnoreKeyConstant        = "ignore"
	configurationIgnoreModeKeyConstant    = "ignore_mode"
	configurationIncludeParentKeyConstant = "include_parent"
	configurationCommitMessageKeyConstant = "commit_message"
	configurationLookupPolicyKeyConstant  = "lookup_policy"
	configurationReportFormatKeyConstant  = "report_format"
)

// CommandConfiguration describes configuration values for the upload command.
type CommandConfiguration struct {
	Branch        string   `mapstructure:"branch"`
	Ignore        []string `mapstructure:"ignore"`
	IgnoreMode    string   `mapstructure:"ignore_mode"`
	IncludeParent bool     `mapstructure:"include_parent"`
	CommitMessage string   `mapstructure:"commit_message"`
	LookupPolicy  string   `mapstructure:"lookup_policy"`
	ReportFormat  string   `mapstructure:"report_format"`
}

// DefaultCommandConfiguration returns baseline upload configuration values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Branch:        upload.DefaultBranchConstant,
		Ignore:        upload.DefaultIgnoreNames(),
		IgnoreMode:    string(upload.IgnoreModeGlob),
		IncludeParent: false,
		CommitMessage: upload.DefaultCommitMessageConstant,
		LookupPolicy:  string(upload.LookupFailureAbsent),
		ReportFormat:  string(upload.ReportFormatText),
	}
}

// DefaultConfigurationValues produces Viper defaults for the upload command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationBranchKeyConstant:        defaults.Branch,
		prefix + configurationIgnoreKeyConstant:        defaults.Ignore,
		prefix + configurationIgnoreModeKeyConstant:    defaults.IgnoreMode,
		prefix + configurationIncludeParentKeyConstant: defaults.IncludeParent,
		prefix + configurationCommitMessageKeyConstant: defaults.CommitMessage,
		prefix + configurationLookupPolicyKeyConstant:  defaults.LookupPolicy,
		prefix + configurationReportFormatKeyConstant:  defaults.ReportFormat,
	}
}

// sanitize trims values and drops blank ignore names. A nil ignore list stays nil so the
// uploader applies its defaults, while an explicitly empty list disables ignoring.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Branch = strings.TrimSpace(configuration.Branch)
	sanitized.IgnoreMode = strings.TrimSpace(configuration.IgnoreMode)
	sanitized.LookupPolicy = strings.TrimSpace(configuration.LookupPolicy)
	sanitized.ReportFormat = strings.TrimSpace(configuration.ReportFormat)
	if configuration.Ignore != nil {
		sanitized.Ignore = make([]string, 0, len(configuration.Ignore))
		for _, name := range configuration.Ignore {
			if trimmedName := strings.TrimSpace(name); len(trimmedName) > 0 {
				sanitized.Ignore = append(sanitized.Ignore, trimmedName)
			}
		}
	}
	return sanitized
}
