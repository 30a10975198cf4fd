package repos

import (
	"strings"

	"github.com/temirov/ghpush/internal/githubapi"
)

const (
	createConfigurationKeyConstant      = "create"
	configurationBranchKeyConstant      = "branch"
	configurationPrivateKeyConstant     = "private"
	configurationAutoInitKeyConstant    = "auto_init"
	configurationDescriptionKeyConstant = "description"
	configurationKeySeparatorConstant   = "."
)

// ToolsConfiguration captures repository command configuration sections.
type ToolsConfiguration struct {
	Create CreateConfiguration `mapstructure:"create"`
}

// CreateConfiguration describes configuration values for repo-create.
type CreateConfiguration struct {
	Branch      string `mapstructure:"branch"`
	Private     bool   `mapstructure:"private"`
	AutoInit    bool   `mapstructure:"auto_init"`
	Description string `mapstructure:"description"`
}

// DefaultToolsConfiguration returns baseline configuration values for repository commands.
func DefaultToolsConfiguration() ToolsConfiguration {
	defaults := githubapi.DefaultRepositorySettings("")
	return ToolsConfiguration{
		Create: CreateConfiguration{
			Branch:      defaults.Branch,
			Private:     defaults.Private,
			AutoInit:    defaults.AutoInit,
			Description: defaults.Description,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for repository commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultToolsConfiguration()
	createKey := rootKey + configurationKeySeparatorConstant + createConfigurationKeyConstant + configurationKeySeparatorConstant
	return map[string]any{
		createKey + configurationBranchKeyConstant:      defaults.Create.Branch,
		createKey + configurationPrivateKeyConstant:     defaults.Create.Private,
		createKey + configurationAutoInitKeyConstant:    defaults.Create.AutoInit,
		createKey + configurationDescriptionKeyConstant: defaults.Create.Description,
	}
}

// settings converts the configuration into creation settings for name. The description is kept
// verbatim since the default is deliberately whitespace.
func (configuration CreateConfiguration) settings(name string) githubapi.RepositorySettings {
	settings := githubapi.DefaultRepositorySettings(name)
	if branch := strings.TrimSpace(configuration.Branch); len(branch) > 0 {
		settings.Branch = branch
	}
	if len(configuration.Description) > 0 {
		settings.Description = configuration.Description
	}
	settings.Private = configuration.Private
	settings.AutoInit = configuration.AutoInit
	return settings
}
