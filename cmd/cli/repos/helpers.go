package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghpush/internal/githubapi"
	"github.com/temirov/ghpush/internal/repos/shared"
)

const (
	repositoryArgumentMissingMessageConstant = "repository name is required"
	sessionProviderMissingMessageConstant    = "GitHub session provider not configured"
)

var (
	errRepositoryArgumentMissing = errors.New(repositoryArgumentMissingMessageConstant)
	errSessionProviderMissing    = errors.New(sessionProviderMissingMessageConstant)
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RepositoryClient lists, inspects, creates and deletes repositories.
type RepositoryClient interface {
	ListRepositories(executionContext context.Context, configuration githubapi.ClientConfiguration) ([]string, error)
	GetRepository(executionContext context.Context, configuration githubapi.ClientConfiguration, repository string) (githubapi.Repository, error)
	CreateRepository(executionContext context.Context, configuration githubapi.ClientConfiguration, settings githubapi.RepositorySettings) error
	DeleteRepository(executionContext context.Context, configuration githubapi.ClientConfiguration, repository string) error
	ListContents(executionContext context.Context, configuration githubapi.ClientConfiguration, repository string, branch string) ([]githubapi.ContentEntry, error)
}

// SessionProvider resolves the client and owner-bound configuration used by a command run.
type SessionProvider func(executionContext context.Context) (RepositoryClient, githubapi.ClientConfiguration, error)

// PrompterFactory creates confirmation prompters scoped to a Cobra command.
type PrompterFactory func(*cobra.Command) shared.ConfirmationPrompter

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveSession(provider SessionProvider, command *cobra.Command) (RepositoryClient, githubapi.ClientConfiguration, error) {
	if provider == nil {
		return nil, githubapi.ClientConfiguration{}, errSessionProviderMissing
	}
	return provider(command.Context())
}

func requireRepositoryArgument(command *cobra.Command, arguments []string) (string, error) {
	if len(arguments) > 0 {
		if repository := strings.TrimSpace(arguments[0]); len(repository) > 0 {
			return repository, nil
		}
	}
	if command != nil {
		_ = command.Help()
	}
	return "", errRepositoryArgumentMissing
}
