package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	contentsEndpointTemplateConstant   = "/repos/%s/%s/contents/%s"
	referenceQueryParameterConstant    = "ref"
	pathFieldNameConstant              = "path"
	messageFieldNameConstant           = "message"
	branchFieldNameConstant            = "branch"
	lookupContentOperationNameConstant = OperationName("LookupContentVersion")
	putContentOperationNameConstant    = OperationName("PutContent")
	listContentsOperationNameConstant  = OperationName("ListContents")
)

// ContentVersion describes the outcome of a version-token lookup for a repository path.
type ContentVersion struct {
	SHA        string
	StatusCode int
}

// Found reports whether the lookup produced a version token.
func (version ContentVersion) Found() bool {
	return len(version.SHA) > 0
}

// ContentWrite describes a create-or-update request for a single repository path.
// Content must already be base64 encoded. SHA is required by GitHub when the path exists.
type ContentWrite struct {
	Message string
	Content string
	Branch  string
	SHA     string
}

// ContentWriteResult reports the status returned by a successful write.
type ContentWriteResult struct {
	StatusCode int
}

// ContentEntry is a single directory listing entry.
type ContentEntry struct {
	Path string `json:"path" yaml:"path"`
	Type string `json:"type" yaml:"type"`
	SHA  string `json:"sha" yaml:"sha"`
}

type contentWritePayload struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
	SHA     string `json:"sha,omitempty"`
}

// LookupContentVersion resolves the version token for a path on a branch.
// A 200 response yields the token. Any other status yields an absent token together with
// that status; transport failures are returned as errors so callers can choose how to treat them.
func (client *Client) LookupContentVersion(executionContext context.Context, configuration ClientConfiguration, repository string, repositoryPath string, branch string) (ContentVersion, error) {
	endpoint, endpointError := contentsEndpoint(configuration, repository, repositoryPath)
	if endpointError != nil {
		return ContentVersion{}, endpointError
	}

	query := url.Values{}
	if trimmedBranch := strings.TrimSpace(branch); len(trimmedBranch) > 0 {
		query.Set(referenceQueryParameterConstant, trimmedBranch)
	}

	response, executionError := client.execute(executionContext, configuration, lookupContentOperationNameConstant, http.MethodGet, endpoint, query, nil)
	if executionError != nil {
		return ContentVersion{}, executionError
	}
	if response.statusCode != http.StatusOK {
		return ContentVersion{StatusCode: response.statusCode}, nil
	}

	var document struct {
		SHA string `json:"sha"`
	}
	if decodingError := decodeResponse(lookupContentOperationNameConstant, response, &document); decodingError != nil {
		return ContentVersion{StatusCode: response.statusCode}, decodingError
	}

	return ContentVersion{SHA: document.SHA, StatusCode: response.statusCode}, nil
}

// PutContent creates or updates a path. 200 and 201 count as success.
func (client *Client) PutContent(executionContext context.Context, configuration ClientConfiguration, repository string, repositoryPath string, write ContentWrite) (ContentWriteResult, error) {
	endpoint, endpointError := contentsEndpoint(configuration, repository, repositoryPath)
	if endpointError != nil {
		return ContentWriteResult{}, endpointError
	}
	if len(strings.TrimSpace(write.Message)) == 0 {
		return ContentWriteResult{}, InvalidInputError{FieldName: messageFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(write.Branch)) == 0 {
		return ContentWriteResult{}, InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := contentWritePayload{
		Message: write.Message,
		Content: write.Content,
		Branch:  strings.TrimSpace(write.Branch),
		SHA:     strings.TrimSpace(write.SHA),
	}

	response, executionError := client.execute(executionContext, configuration, putContentOperationNameConstant, http.MethodPut, endpoint, nil, payload)
	if executionError != nil {
		return ContentWriteResult{}, executionError
	}
	switch response.statusCode {
	case http.StatusOK, http.StatusCreated:
		return ContentWriteResult{StatusCode: response.statusCode}, nil
	default:
		return ContentWriteResult{StatusCode: response.statusCode}, UnexpectedStatusError{Operation: putContentOperationNameConstant, StatusCode: response.statusCode, Body: response.bodyText()}
	}
}

// ListContents lists the top-level entries of a repository on a branch.
func (client *Client) ListContents(executionContext context.Context, configuration ClientConfiguration, repository string, branch string) ([]ContentEntry, error) {
	owner, name, coordinatesError := repositoryCoordinates(configuration, repository)
	if coordinatesError != nil {
		return nil, coordinatesError
	}

	endpoint := fmt.Sprintf(contentsEndpointTemplateConstant, escapePath(owner), escapePath(name), "")
	query := url.Values{}
	if trimmedBranch := strings.TrimSpace(branch); len(trimmedBranch) > 0 {
		query.Set(referenceQueryParameterConstant, trimmedBranch)
	}

	response, executionError := client.execute(executionContext, configuration, listContentsOperationNameConstant, http.MethodGet, endpoint, query, nil)
	if executionError != nil {
		return nil, executionError
	}
	if response.statusCode != http.StatusOK {
		return nil, UnexpectedStatusError{Operation: listContentsOperationNameConstant, StatusCode: response.statusCode, Body: response.bodyText()}
	}

	var entries []ContentEntry
	if decodingError := decodeResponse(listContentsOperationNameConstant, response, &entries); decodingError != nil {
		return nil, decodingError
	}
	return entries, nil
}

func contentsEndpoint(configuration ClientConfiguration, repository string, repositoryPath string) (string, error) {
	owner, name, coordinatesError := repositoryCoordinates(configuration, repository)
	if coordinatesError != nil {
		return "", coordinatesError
	}

	escapedPath := escapePath(repositoryPath)
	if len(escapedPath) == 0 {
		return "", InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	return fmt.Sprintf(contentsEndpointTemplateConstant, escapePath(owner), escapePath(name), escapedPath), nil
}
