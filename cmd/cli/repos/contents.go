package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/ghpush/internal/repos/shared"
	flagutils "github.com/temirov/ghpush/internal/utils/flags"
)

const (
	contentsUseConstant              = "repo-contents <repository>"
	contentsShortDescriptionConstant = "List top-level repository contents"
	contentsLongDescriptionConstant  = "repo-contents prints the path, type and version token of each top-level entry on a branch."
	contentsBranchFlagUsage          = "Branch to list (defaults to the repository default branch)"
	contentsLineTemplateConstant     = "%s\t%s\t%s\n"
)

// ContentsCommandBuilder assembles the repo-contents command.
type ContentsCommandBuilder struct {
	LoggerProvider  LoggerProvider
	SessionProvider SessionProvider
}

// Build constructs the repo-contents command.
func (builder *ContentsCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   contentsUseConstant,
		Short: contentsShortDescriptionConstant,
		Long:  contentsLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}
	flagutils.AddBranchFlag(command, contentsBranchFlagUsage)
	return command, nil
}

func (builder *ContentsCommandBuilder) run(command *cobra.Command, arguments []string) error {
	repository, argumentError := requireRepositoryArgument(command, arguments)
	if argumentError != nil {
		return argumentError
	}
	branch, _ := flagutils.StringOverride(command, flagutils.BranchFlagName)

	client, configuration, sessionError := resolveSession(builder.SessionProvider, command)
	if sessionError != nil {
		return sessionError
	}

	entries, listError := client.ListContents(command.Context(), configuration, repository, branch)
	if listError != nil {
		return listError
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	for _, entry := range entries {
		reporter.Printf(contentsLineTemplateConstant, entry.Path, entry.Type, entry.SHA)
	}
	return nil
}
