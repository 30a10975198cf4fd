package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	authenticatedUserEndpointConstant     = "/user"
	userRepositoriesEndpointConstant      = "/user/repos"
	repositoryEndpointTemplateConstant    = "/repos/%s/%s"
	repositoryNameFieldNameConstant       = "name"
	loginMissingMessageConstant           = "response did not include a login"
	resolveUserOperationNameConstant      = OperationName("ResolveAuthenticatedUser")
	listRepositoriesOperationNameConstant = OperationName("ListRepositories")
	getRepositoryOperationNameConstant    = OperationName("GetRepository")
	createRepositoryOperationNameConstant = OperationName("CreateRepository")
	deleteRepositoryOperationNameConstant = OperationName("DeleteRepository")
	defaultRepositoryDescriptionConstant  = "  "
	defaultRepositoryBranchConstant       = "master"
)

// Repository contains the repository fields surfaced by the CLI.
type Repository struct {
	Name          string `json:"name" yaml:"name"`
	FullName      string `json:"full_name" yaml:"full_name"`
	Description   string `json:"description" yaml:"description"`
	Private       bool   `json:"private" yaml:"private"`
	DefaultBranch string `json:"default_branch" yaml:"default_branch"`
	HTMLURL       string `json:"html_url" yaml:"html_url"`
}

// RepositorySettings describes a repository to create under the authenticated user.
type RepositorySettings struct {
	Name        string
	Description string
	Private     bool
	AutoInit    bool
	Branch      string
}

// DefaultRepositorySettings returns settings mirroring GitHub's initialized-repository defaults.
func DefaultRepositorySettings(name string) RepositorySettings {
	return RepositorySettings{
		Name:        name,
		Description: defaultRepositoryDescriptionConstant,
		Private:     false,
		AutoInit:    true,
		Branch:      defaultRepositoryBranchConstant,
	}
}

type createRepositoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	AutoInit    bool   `json:"auto_init"`
	Branch      string `json:"branch"`
}

// ResolveAuthenticatedUser returns the login name of the token owner.
func (client *Client) ResolveAuthenticatedUser(executionContext context.Context, configuration ClientConfiguration) (string, error) {
	response, executionError := client.execute(executionContext, configuration, resolveUserOperationNameConstant, http.MethodGet, authenticatedUserEndpointConstant, nil, nil)
	if executionError != nil {
		return "", executionError
	}
	if response.statusCode != http.StatusOK {
		return "", UnexpectedStatusError{Operation: resolveUserOperationNameConstant, StatusCode: response.statusCode, Body: response.bodyText()}
	}

	var user struct {
		Login string `json:"login"`
	}
	if decodingError := decodeResponse(resolveUserOperationNameConstant, response, &user); decodingError != nil {
		return "", decodingError
	}

	login := strings.TrimSpace(user.Login)
	if len(login) == 0 {
		return "", OperationError{Operation: resolveUserOperationNameConstant, Cause: InvalidInputError{FieldName: ownerFieldNameConstant, Message: loginMissingMessageConstant}}
	}
	return login, nil
}

// ListRepositories returns the names of repositories visible to the authenticated user.
func (client *Client) ListRepositories(executionContext context.Context, configuration ClientConfiguration) ([]string, error) {
	response, executionError := client.execute(executionContext, configuration, listRepositoriesOperationNameConstant, http.MethodGet, userRepositoriesEndpointConstant, nil, nil)
	if executionError != nil {
		return nil, executionError
	}
	if response.statusCode != http.StatusOK {
		return nil, UnexpectedStatusError{Operation: listRepositoriesOperationNameConstant, StatusCode: response.statusCode, Body: response.bodyText()}
	}

	var repositories []Repository
	if decodingError := decodeResponse(listRepositoriesOperationNameConstant, response, &repositories); decodingError != nil {
		return nil, decodingError
	}

	names := make([]string, 0, len(repositories))
	for _, repository := range repositories {
		names = append(names, repository.Name)
	}
	return names, nil
}

// GetRepository fetches repository metadata.
func (client *Client) GetRepository(executionContext context.Context, configuration ClientConfiguration, repository string) (Repository, error) {
	owner, name, coordinatesError := repositoryCoordinates(configuration, repository)
	if coordinatesError != nil {
		return Repository{}, coordinatesError
	}

	endpoint := fmt.Sprintf(repositoryEndpointTemplateConstant, escapePath(owner), escapePath(name))
	response, executionError := client.execute(executionContext, configuration, getRepositoryOperationNameConstant, http.MethodGet, endpoint, nil, nil)
	if executionError != nil {
		return Repository{}, executionError
	}
	if response.statusCode != http.StatusOK {
		return Repository{}, UnexpectedStatusError{Operation: getRepositoryOperationNameConstant, StatusCode: response.statusCode, Body: response.bodyText()}
	}

	var repositoryDocument Repository
	if decodingError := decodeResponse(getRepositoryOperationNameConstant, response, &repositoryDocument); decodingError != nil {
		return Repository{}, decodingError
	}
	return repositoryDocument, nil
}

// CreateRepository creates a repository for the authenticated user. Only 201 counts as success.
func (client *Client) CreateRepository(executionContext context.Context, configuration ClientConfiguration, settings RepositorySettings) error {
	name := strings.TrimSpace(settings.Name)
	if len(name) == 0 {
		return InvalidInputError{FieldName: repositoryNameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	branch := strings.TrimSpace(settings.Branch)
	if len(branch) == 0 {
		branch = defaultRepositoryBranchConstant
	}

	description := settings.Description
	if len(description) == 0 {
		description = defaultRepositoryDescriptionConstant
	}

	payload := createRepositoryPayload{
		Name:        name,
		Description: description,
		Private:     settings.Private,
		AutoInit:    settings.AutoInit,
		Branch:      branch,
	}

	response, executionError := client.execute(executionContext, configuration, createRepositoryOperationNameConstant, http.MethodPost, userRepositoriesEndpointConstant, nil, payload)
	if executionError != nil {
		return executionError
	}
	if response.statusCode != http.StatusCreated {
		return UnexpectedStatusError{Operation: createRepositoryOperationNameConstant, StatusCode: response.statusCode, Body: response.bodyText()}
	}
	return nil
}

// DeleteRepository permanently deletes a repository. Only 204 counts as success.
func (client *Client) DeleteRepository(executionContext context.Context, configuration ClientConfiguration, repository string) error {
	owner, name, coordinatesError := repositoryCoordinates(configuration, repository)
	if coordinatesError != nil {
		return coordinatesError
	}

	endpoint := fmt.Sprintf(repositoryEndpointTemplateConstant, escapePath(owner), escapePath(name))
	response, executionError := client.execute(executionContext, configuration, deleteRepositoryOperationNameConstant, http.MethodDelete, endpoint, nil, nil)
	if executionError != nil {
		return executionError
	}
	if response.statusCode != http.StatusNoContent {
		return UnexpectedStatusError{Operation: deleteRepositoryOperationNameConstant, StatusCode: response.statusCode, Body: response.bodyText()}
	}
	return nil
}
