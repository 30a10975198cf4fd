package cli

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ghpush/internal/githubapi"
	"github.com/temirov/ghpush/internal/githubauth"
	"github.com/temirov/ghpush/internal/repos/dependencies"
)

const (
	tokenResolutionErrorTemplateConstant = "unable to resolve GitHub token: %w"
	sessionEstablishedMessageConstant    = "github session established"
	logFieldOwnerConstant                = "owner"
	logFieldBaseURLConstant              = "base_url"
)

// ApplicationGitHubConfiguration describes how the CLI reaches the GitHub REST API.
type ApplicationGitHubConfiguration struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	TokenSource    string        `mapstructure:"token_source"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// githubSession lazily builds the API client and resolves the authenticated owner once per process.
type githubSession struct {
	configurationProvider func() ApplicationGitHubConfiguration
	loggerProvider        func() *zap.Logger
	httpClient            *http.Client
	tokenResolver         *githubauth.TokenResolver

	mutex               sync.Mutex
	client              *githubapi.Client
	clientConfiguration githubapi.ClientConfiguration
	established         bool
}

func newGitHubSession(configurationProvider func() ApplicationGitHubConfiguration, loggerProvider func() *zap.Logger) *githubSession {
	return &githubSession{
		configurationProvider: configurationProvider,
		loggerProvider:        loggerProvider,
		tokenResolver:         githubauth.NewTokenResolver(nil, nil),
	}
}

// Resolve returns the shared client and an owner-bound configuration. Failures are not cached.
func (session *githubSession) Resolve(executionContext context.Context) (*githubapi.Client, githubapi.ClientConfiguration, error) {
	session.mutex.Lock()
	defer session.mutex.Unlock()

	if session.established {
		return session.client, session.clientConfiguration, nil
	}

	configuration := session.configurationProvider()

	tokenSource, sourceError := githubauth.ParseTokenSource(configuration.TokenSource)
	if sourceError != nil {
		return nil, githubapi.ClientConfiguration{}, fmt.Errorf(tokenResolutionErrorTemplateConstant, sourceError)
	}
	token, tokenError := session.tokenResolver.Resolve(tokenSource)
	if tokenError != nil {
		return nil, githubapi.ClientConfiguration{}, fmt.Errorf(tokenResolutionErrorTemplateConstant, tokenError)
	}

	clientConfiguration, configurationError := githubapi.NewClientConfiguration(configuration.APIBaseURL, token)
	if configurationError != nil {
		return nil, githubapi.ClientConfiguration{}, configurationError
	}
	clientConfiguration = clientConfiguration.WithRequestTimeout(configuration.RequestTimeout)

	client, clientError := githubapi.NewClient(dependencies.ResolveHTTPClient(session.httpClient))
	if clientError != nil {
		return nil, githubapi.ClientConfiguration{}, clientError
	}

	owner, ownerError := client.ResolveAuthenticatedUser(executionContext, clientConfiguration)
	if ownerError != nil {
		return nil, githubapi.ClientConfiguration{}, ownerError
	}
	clientConfiguration = clientConfiguration.WithOwner(owner)

	session.client = client
	session.clientConfiguration = clientConfiguration
	session.established = true

	if session.loggerProvider != nil {
		if logger := session.loggerProvider(); logger != nil {
			logger.Debug(sessionEstablishedMessageConstant, zap.String(logFieldOwnerConstant, owner), zap.String(logFieldBaseURLConstant, clientConfiguration.BaseURL))
		}
	}

	return client, clientConfiguration, nil
}
