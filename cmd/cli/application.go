package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/ghpush/cmd/cli/repos"
	uploadcommand "github.com/temirov/ghpush/cmd/cli/upload"
	"github.com/temirov/ghpush/internal/githubapi"
	"github.com/temirov/ghpush/internal/upload"
	"github.com/temirov/ghpush/internal/utils"
	flagutils "github.com/temirov/ghpush/internal/utils/flags"
	pathutils "github.com/temirov/ghpush/internal/utils/path"
)

const (
	applicationNameConstant                 = "ghpush"
	applicationShortDescriptionConstant     = "Manage GitHub repositories and push local directories into them"
	applicationLongDescriptionConstant      = "ghpush lists, inspects, creates and deletes repositories of the authenticated GitHub user, and uploads local directory trees into a repository branch through the REST contents API."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	githubConfigurationKeyConstant          = "github"
	githubAPIBaseURLConfigKeyConstant       = githubConfigurationKeyConstant + ".api_base_url"
	githubTokenSourceConfigKeyConstant      = githubConfigurationKeyConstant + ".token_source"
	githubRequestTimeoutConfigKeyConstant   = githubConfigurationKeyConstant + ".request_timeout"
	defaultRequestTimeoutConstant           = "30s"
	environmentPrefixConstant               = "GHPUSH"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "~/.ghpush"
	toolsConfigurationKeyConstant           = "tools"
	reposConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".repos"
	uploadConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".upload"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	GitHub ApplicationGitHubConfiguration `mapstructure:"github"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Repos  repos.ToolsConfiguration           `mapstructure:"repos"`
	Upload uploadcommand.CommandConfiguration `mapstructure:"upload"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	session               *githubSession
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, pathutils.NewHomeExpander().Expand(userConfigurationSearchPathConstant)},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}
	application.session = newGitHubSession(
		func() ApplicationGitHubConfiguration { return application.configuration.GitHub },
		application.loggerInstance,
	)

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	repositorySessionProvider := func(executionContext context.Context) (repos.RepositoryClient, githubapi.ClientConfiguration, error) {
		return application.session.Resolve(executionContext)
	}
	toolsConfigurationProvider := func() repos.ToolsConfiguration {
		return application.configuration.Tools.Repos
	}

	builders := []interface {
		Build() (*cobra.Command, error)
	}{
		&repos.ListCommandBuilder{LoggerProvider: application.loggerInstance, SessionProvider: repositorySessionProvider},
		&repos.ViewCommandBuilder{LoggerProvider: application.loggerInstance, SessionProvider: repositorySessionProvider},
		&repos.CreateCommandBuilder{
			LoggerProvider:        application.loggerInstance,
			SessionProvider:       repositorySessionProvider,
			ConfigurationProvider: toolsConfigurationProvider,
		},
		&repos.DeleteCommandBuilder{LoggerProvider: application.loggerInstance, SessionProvider: repositorySessionProvider},
		&repos.ContentsCommandBuilder{LoggerProvider: application.loggerInstance, SessionProvider: repositorySessionProvider},
		&uploadcommand.CommandBuilder{
			LoggerProvider: application.loggerInstance,
			SessionProvider: func(executionContext context.Context) (upload.ContentStore, githubapi.ClientConfiguration, error) {
				return application.session.Resolve(executionContext)
			},
			ConfigurationProvider: func() uploadcommand.CommandConfiguration {
				return application.configuration.Tools.Upload
			},
		},
	}
	for _, builder := range builders {
		subcommand, buildError := builder.Build()
		if buildError == nil {
			cobraCommand.AddCommand(subcommand)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.executeArguments(os.Args[1:])
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) executeArguments(arguments []string) error {
	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(arguments))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:       string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:      string(utils.LogFormatStructured),
		githubAPIBaseURLConfigKeyConstant:     githubapi.DefaultBaseURLConstant,
		githubTokenSourceConfigKeyConstant:    "",
		githubRequestTimeoutConfigKeyConstant: defaultRequestTimeoutConstant,
	}
	for configurationKey, configurationValue := range repos.DefaultConfigurationValues(reposConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range uploadcommand.DefaultConfigurationValues(uploadConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) loggerInstance() *zap.Logger {
	return application.logger
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
