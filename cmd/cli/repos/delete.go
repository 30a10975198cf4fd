package repos

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghpush/internal/repos/dependencies"
	"github.com/temirov/ghpush/internal/repos/shared"
	flagutils "github.com/temirov/ghpush/internal/utils/flags"
)

const (
	deleteUseConstant               = "repo-delete <repository>"
	deleteShortDescriptionConstant  = "Delete a repository"
	deleteLongDescriptionConstant   = "repo-delete permanently deletes a repository after confirmation. Use --yes when stdin is not a terminal."
	deletePromptTemplateConstant    = "Delete repository %s permanently? [y/N] "
	deleteCancelledTemplateConstant = "Deletion of %s cancelled\n"
	deleteSuccessTemplateConstant   = "Successfully deleted repository: %s\n"
	deleteCompletedMessageConstant  = "repository deleted"
	deleteDeclinedMessageConstant   = "repository deletion declined"
)

// DeleteCommandBuilder assembles the repo-delete command.
type DeleteCommandBuilder struct {
	LoggerProvider        LoggerProvider
	SessionProvider       SessionProvider
	PrompterFactory       PrompterFactory
	InteractivityDetector dependencies.InteractivityDetector
}

// Build constructs the repo-delete command.
func (builder *DeleteCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   deleteUseConstant,
		Short: deleteShortDescriptionConstant,
		Long:  deleteLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}
	flagutils.AddAssumeYesFlag(command)
	return command, nil
}

func (builder *DeleteCommandBuilder) run(command *cobra.Command, arguments []string) error {
	repository, argumentError := requireRepositoryArgument(command, arguments)
	if argumentError != nil {
		return argumentError
	}

	assumeYes, _ := flagutils.BoolOverride(command, flagutils.AssumeYesFlagName)
	logger := resolveLogger(builder.LoggerProvider)
	reporter := shared.NewWriterReporter(command.OutOrStdout())

	if shared.ConfirmationPolicyFromBool(assumeYes).ShouldPrompt() {
		var injected shared.ConfirmationPrompter
		if builder.PrompterFactory != nil {
			injected = builder.PrompterFactory(command)
		}
		prompter, prompterError := dependencies.ResolveConfirmationPrompter(injected, builder.InteractivityDetector, command.InOrStdin(), command.OutOrStdout())
		if prompterError != nil {
			return prompterError
		}

		confirmed, confirmError := prompter.Confirm(fmt.Sprintf(deletePromptTemplateConstant, repository))
		if confirmError != nil {
			return confirmError
		}
		if !confirmed {
			reporter.Printf(deleteCancelledTemplateConstant, repository)
			logger.Info(deleteDeclinedMessageConstant, zap.String(logFieldRepositoryConstant, repository))
			return nil
		}
	}

	client, configuration, sessionError := resolveSession(builder.SessionProvider, command)
	if sessionError != nil {
		return sessionError
	}

	if deleteError := client.DeleteRepository(command.Context(), configuration, repository); deleteError != nil {
		return deleteError
	}

	reporter.Printf(deleteSuccessTemplateConstant, repository)
	logger.Info(deleteCompletedMessageConstant, zap.String(logFieldRepositoryConstant, repository), zap.String(logFieldOwnerConstant, configuration.Owner))
	return nil
}
