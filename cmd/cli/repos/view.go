package repos

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	viewUseConstant              = "repo-view <repository>"
	viewShortDescriptionConstant = "Show repository details"
	viewLongDescriptionConstant  = "repo-view fetches a repository (name or owner/name) and prints its details as YAML."
	viewExampleConstant          = "ghpush repo-view GithubApi\nghpush repo-view octocat/Hello-World"
	viewIndentWidthConstant      = 2
)

// ViewCommandBuilder assembles the repo-view command.
type ViewCommandBuilder struct {
	LoggerProvider  LoggerProvider
	SessionProvider SessionProvider
}

// Build constructs the repo-view command.
func (builder *ViewCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     viewUseConstant,
		Short:   viewShortDescriptionConstant,
		Long:    viewLongDescriptionConstant,
		Example: viewExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}
	return command, nil
}

func (builder *ViewCommandBuilder) run(command *cobra.Command, arguments []string) error {
	repository, argumentError := requireRepositoryArgument(command, arguments)
	if argumentError != nil {
		return argumentError
	}

	client, configuration, sessionError := resolveSession(builder.SessionProvider, command)
	if sessionError != nil {
		return sessionError
	}

	details, fetchError := client.GetRepository(command.Context(), configuration, repository)
	if fetchError != nil {
		return fetchError
	}

	encoder := yaml.NewEncoder(command.OutOrStdout())
	encoder.SetIndent(viewIndentWidthConstant)
	if encodeError := encoder.Encode(details); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
