package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghpush/internal/githubapi"
	"github.com/temirov/ghpush/internal/repos/dependencies"
	"github.com/temirov/ghpush/internal/repos/shared"
	"github.com/temirov/ghpush/internal/upload"
	"github.com/temirov/ghpush/internal/utils"
	flagutils "github.com/temirov/ghpush/internal/utils/flags"
	pathutils "github.com/temirov/ghpush/internal/utils/path"
)

const (
	commandUseConstant                    = "upload <directory> <repository>"
	commandShortDescriptionConstant       = "Upload a local directory tree into a repository branch"
	commandLongDescriptionConstant        = "upload walks a local directory, skips ignored paths, and writes every remaining file into the repository branch through the contents API. Existing files are updated in place. Flags override tools.upload configuration."
	ignoreFlagName                        = "ignore"
	ignoreFlagUsage                       = "Path segment names to skip (replaces the configured ignore set; repeatable or comma separated)"
	ignoreModeFlagName                    = "ignore-mode"
	ignoreModeFlagUsage                   = "How ignore names match path segments"
	includeParentFlagName                 = "include-parent"
	includeParentFlagUsage                = "Prefix repository paths with the root directory name"
	messageFlagName                       = "message"
	messageFlagUsage                      = "Commit message used for every file write"
	lookupPolicyFlagName                  = "lookup-policy"
	lookupPolicyFlagUsage                 = "How failed existing-file lookups are treated"
	reportFormatFlagName                  = "report-format"
	reportFormatFlagUsage                 = "Output format for per-file results"
	branchFlagUsage                       = "Branch receiving the files"
	argumentsMissingMessageConstant       = "directory and repository arguments are required"
	sessionProviderMissingMessageConstant = "GitHub session provider not configured"
	uploadFailuresTemplateConstant        = "upload finished with %d failed of %d files"
	commandCompletedMessageConstant       = "upload command completed"
	logFieldRootConstant                  = "root"
	logFieldRepositoryConstant            = "repository"
	logFieldFormatConstant                = "format"
)

var (
	errArgumentsMissing       = errors.New(argumentsMissingMessageConstant)
	errSessionProviderMissing = errors.New(sessionProviderMissingMessageConstant)
)

// FailedFilesError reports an upload run that completed with failed files.
type FailedFilesError struct {
	Failed int
	Total  int
}

// Error describes the failure counts.
func (failedFilesError FailedFilesError) Error() string {
	return fmt.Sprintf(uploadFailuresTemplateConstant, failedFilesError.Failed, failedFilesError.Total)
}

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the upload command configuration.
type ConfigurationProvider func() CommandConfiguration

// SessionProvider resolves the content store and owner-bound configuration used by a run.
type SessionProvider func(executionContext context.Context) (upload.ContentStore, githubapi.ClientConfiguration, error)

// CommandBuilder assembles the upload command.
type CommandBuilder struct {
	LoggerProvider         LoggerProvider
	SessionProvider        SessionProvider
	ConfigurationProvider  ConfigurationProvider
	FileSystem             shared.FileSystem
	HomeExpander           *pathutils.HomeExpander
	RunIdentifierGenerator upload.RunIdentifierGenerator
}

// Build constructs the upload command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(2),
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	flagutils.AddBranchFlag(command, branchFlagUsage)
	command.Flags().StringSlice(ignoreFlagName, nil, ignoreFlagUsage)
	flagutils.AddChoiceFlag(command.Flags(), ignoreModeFlagName, defaults.IgnoreMode, []string{string(upload.IgnoreModeGlob), string(upload.IgnoreModeLiteral)}, ignoreModeFlagUsage)
	flagutils.AddToggleFlag(command.Flags(), nil, includeParentFlagName, defaults.IncludeParent, includeParentFlagUsage)
	command.Flags().String(messageFlagName, "", messageFlagUsage)
	flagutils.AddChoiceFlag(command.Flags(), lookupPolicyFlagName, defaults.LookupPolicy, []string{string(upload.LookupFailureAbsent), string(upload.LookupFailureStrict)}, lookupPolicyFlagUsage)
	flagutils.AddChoiceFlag(command.Flags(), reportFormatFlagName, defaults.ReportFormat, []string{string(upload.ReportFormatText), string(upload.ReportFormatYAML), string(upload.ReportFormatJSON)}, reportFormatFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) < 2 || len(strings.TrimSpace(arguments[0])) == 0 || len(strings.TrimSpace(arguments[1])) == 0 {
		_ = command.Help()
		return errArgumentsMissing
	}

	rootDirectory, rootError := builder.resolveHomeExpander().Resolve(arguments[0])
	if rootError != nil {
		return rootError
	}

	configuration := builder.applyFlagOverrides(command, builder.resolveConfiguration()).sanitize()
	target, reportFormat, targetError := buildTarget(strings.TrimSpace(arguments[1]), configuration)
	if targetError != nil {
		return targetError
	}

	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	if _, rootCheckError := upload.ResolveRoot(fileSystem, rootDirectory); rootCheckError != nil {
		return rootCheckError
	}

	if builder.SessionProvider == nil {
		return errSessionProviderMissing
	}
	store, clientConfiguration, sessionError := builder.SessionProvider(command.Context())
	if sessionError != nil {
		return sessionError
	}

	logger := builder.resolveLogger()
	service, serviceError := upload.NewService(logger, store, fileSystem)
	if serviceError != nil {
		return serviceError
	}
	if builder.RunIdentifierGenerator != nil {
		service.WithRunIdentifierGenerator(builder.RunIdentifierGenerator)
	}

	output := utils.NewFlushingWriter(command.OutOrStdout())
	if reportFormat == upload.ReportFormatText {
		reporter := shared.NewWriterReporter(output)
		service.WithResultObserver(func(fileResult upload.FileResult) {
			upload.ReportFileResult(reporter, target.Repository, target.Branch, fileResult)
		})
	}

	result, uploadError := service.Upload(command.Context(), clientConfiguration, rootDirectory, target)
	if reportFormat != upload.ReportFormatText {
		if renderError := upload.RenderReport(output, result, reportFormat); renderError != nil {
			return renderError
		}
	}
	if uploadError != nil {
		return uploadError
	}

	logger.Debug(
		commandCompletedMessageConstant,
		zap.String(logFieldRootConstant, rootDirectory),
		zap.String(logFieldRepositoryConstant, target.Repository),
		zap.String(logFieldFormatConstant, string(reportFormat)),
	)

	if result.Failed() {
		return FailedFilesError{Failed: result.Count(upload.ActionFailed), Total: len(result.Files)}
	}
	return nil
}

func (builder *CommandBuilder) applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	if branch, overridden := flagutils.StringOverride(command, flagutils.BranchFlagName); overridden {
		configuration.Branch = branch
	}
	if ignoreNames, overridden := flagutils.StringSliceOverride(command, ignoreFlagName); overridden {
		configuration.Ignore = append([]string{}, ignoreNames...)
	}
	if ignoreMode, overridden := flagutils.StringOverride(command, ignoreModeFlagName); overridden {
		configuration.IgnoreMode = ignoreMode
	}
	if includeParent, overridden := flagutils.BoolOverride(command, includeParentFlagName); overridden {
		configuration.IncludeParent = includeParent
	}
	if message, overridden := flagutils.StringOverride(command, messageFlagName); overridden {
		configuration.CommitMessage = message
	}
	if lookupPolicy, overridden := flagutils.StringOverride(command, lookupPolicyFlagName); overridden {
		configuration.LookupPolicy = lookupPolicy
	}
	if reportFormat, overridden := flagutils.StringOverride(command, reportFormatFlagName); overridden {
		configuration.ReportFormat = reportFormat
	}
	return configuration
}

func buildTarget(repository string, configuration CommandConfiguration) (upload.Target, upload.ReportFormat, error) {
	ignoreMode, ignoreModeError := upload.ParseIgnoreMode(configuration.IgnoreMode)
	if ignoreModeError != nil {
		return upload.Target{}, "", ignoreModeError
	}
	lookupPolicy, lookupPolicyError := upload.ParseLookupFailurePolicy(configuration.LookupPolicy)
	if lookupPolicyError != nil {
		return upload.Target{}, "", lookupPolicyError
	}
	reportFormat, reportFormatError := upload.ParseReportFormat(configuration.ReportFormat)
	if reportFormatError != nil {
		return upload.Target{}, "", reportFormatError
	}

	target := upload.NewTarget(repository)
	target.Branch = configuration.Branch
	target.IgnoreNames = configuration.Ignore
	target.IgnoreMode = ignoreMode
	target.IncludeParent = configuration.IncludeParent
	target.CommitMessage = configuration.CommitMessage
	target.LookupFailurePolicy = lookupPolicy
	return target, reportFormat, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander == nil {
		return pathutils.NewHomeExpander()
	}
	return builder.HomeExpander
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if logger := builder.LoggerProvider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}
