package repos

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghpush/internal/repos/shared"
)

const (
	listUseConstant              = "repo-list"
	listShortDescriptionConstant = "List repositories of the authenticated user"
	listLongDescriptionConstant  = "repo-list prints the name of every repository visible to the authenticated user, one per line."
	listLineTemplateConstant     = "%s\n"
	listCompletedMessageConstant = "repositories listed"
	logFieldCountConstant        = "count"
)

// ListCommandBuilder assembles the repo-list command.
type ListCommandBuilder struct {
	LoggerProvider  LoggerProvider
	SessionProvider SessionProvider
}

// Build constructs the repo-list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, _ []string) error {
	client, configuration, sessionError := resolveSession(builder.SessionProvider, command)
	if sessionError != nil {
		return sessionError
	}

	names, listError := client.ListRepositories(command.Context(), configuration)
	if listError != nil {
		return listError
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	for _, name := range names {
		reporter.Printf(listLineTemplateConstant, name)
	}

	resolveLogger(builder.LoggerProvider).Debug(listCompletedMessageConstant, zap.Int(logFieldCountConstant, len(names)))
	return nil
}
