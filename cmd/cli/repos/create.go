package repos

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghpush/internal/repos/shared"
	flagutils "github.com/temirov/ghpush/internal/utils/flags"
)

const (
	createUseConstant              = "repo-create <name>"
	createShortDescriptionConstant = "Create a repository for the authenticated user"
	createLongDescriptionConstant  = "repo-create creates a repository owned by the authenticated user. Flags override tools.repos.create configuration."
	createDescriptionFlagName      = "description"
	createDescriptionFlagUsage     = "Repository description"
	createPrivateFlagName          = "private"
	createPrivateFlagUsage         = "Create a private repository"
	createAutoInitFlagName         = "auto-init"
	createAutoInitFlagUsage        = "Initialize the repository with a first commit"
	createBranchFlagUsage          = "Initial branch name"
	createSuccessTemplateConstant  = "Repo: %s created Successfully for %s at branch: %s\n"
	createCompletedMessageConstant = "repository created"
	logFieldRepositoryConstant     = "repository"
	logFieldOwnerConstant          = "owner"
	logFieldBranchConstant         = "branch"
	logFieldPrivateConstant        = "private"
)

// ConfigurationProvider returns the repository commands configuration.
type ConfigurationProvider func() ToolsConfiguration

// CreateCommandBuilder assembles the repo-create command.
type CreateCommandBuilder struct {
	LoggerProvider        LoggerProvider
	SessionProvider       SessionProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the repo-create command.
func (builder *CreateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   createUseConstant,
		Short: createShortDescriptionConstant,
		Long:  createLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	defaults := DefaultToolsConfiguration().Create
	command.Flags().String(createDescriptionFlagName, "", createDescriptionFlagUsage)
	flagutils.AddToggleFlag(command.Flags(), nil, createPrivateFlagName, defaults.Private, createPrivateFlagUsage)
	flagutils.AddToggleFlag(command.Flags(), nil, createAutoInitFlagName, defaults.AutoInit, createAutoInitFlagUsage)
	flagutils.AddBranchFlag(command, createBranchFlagUsage)

	return command, nil
}

func (builder *CreateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	name, argumentError := requireRepositoryArgument(command, arguments)
	if argumentError != nil {
		return argumentError
	}

	configuration := builder.resolveConfiguration().Create
	if description, overridden := flagutils.StringOverride(command, createDescriptionFlagName); overridden {
		configuration.Description = description
	}
	if private, overridden := flagutils.BoolOverride(command, createPrivateFlagName); overridden {
		configuration.Private = private
	}
	if autoInit, overridden := flagutils.BoolOverride(command, createAutoInitFlagName); overridden {
		configuration.AutoInit = autoInit
	}
	if branch, overridden := flagutils.StringOverride(command, flagutils.BranchFlagName); overridden {
		configuration.Branch = branch
	}
	settings := configuration.settings(name)

	client, clientConfiguration, sessionError := resolveSession(builder.SessionProvider, command)
	if sessionError != nil {
		return sessionError
	}

	if createError := client.CreateRepository(command.Context(), clientConfiguration, settings); createError != nil {
		return createError
	}

	shared.NewWriterReporter(command.OutOrStdout()).Printf(createSuccessTemplateConstant, settings.Name, clientConfiguration.Owner, settings.Branch)
	resolveLogger(builder.LoggerProvider).Info(
		createCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, settings.Name),
		zap.String(logFieldOwnerConstant, clientConfiguration.Owner),
		zap.String(logFieldBranchConstant, settings.Branch),
		zap.Bool(logFieldPrivateConstant, settings.Private),
	)
	return nil
}

func (builder *CreateCommandBuilder) resolveConfiguration() ToolsConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultToolsConfiguration()
	}
	return builder.ConfigurationProvider()
}
