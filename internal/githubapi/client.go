package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURLConstant is the public GitHub REST API endpoint.
	DefaultBaseURLConstant                  = "https://api.github.com"
	defaultUserAgentConstant                = "ghpush"
	authorizationHeaderNameConstant         = "Authorization"
	authorizationHeaderTemplateConstant     = "token %s"
	acceptHeaderNameConstant                = "Accept"
	acceptHeaderValueConstant               = "application/vnd.github+json"
	contentTypeHeaderNameConstant           = "Content-Type"
	contentTypeJSONConstant                 = "application/json"
	userAgentHeaderNameConstant             = "User-Agent"
	repositorySeparatorConstant             = "/"
	queryPrefixConstant                     = "?"
	requiredValueMessageConstant            = "value required"
	invalidRepositoryMessageConstant        = "expected <name> or <owner>/<name>"
	ownerUnresolvedMessageConstant          = "owner not resolved; call ResolveAuthenticatedUser first"
	invalidBaseURLMessageTemplateConstant   = "invalid base url: %s"
	httpClientNotConfiguredMessageConstant  = "github api http client not configured"
	baseURLFieldNameConstant                = "base_url"
	tokenFieldNameConstant                  = "token"
	ownerFieldNameConstant                  = "owner"
	repositoryFieldNameConstant             = "repository"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	unexpectedStatusErrorTemplateConstant   = "%s returned status %d: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingErrorTemplateConstant    = "%s payload encoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
)

// OperationName describes a named GitHub REST workflow supported by the client.
type OperationName string

// HTTPClient is the subset of *http.Client used by the API client.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// ClientConfiguration carries the immutable connection settings shared by every request.
type ClientConfiguration struct {
	BaseURL        string
	Token          string
	Owner          string
	UserAgent      string
	RequestTimeout time.Duration
}

// NewClientConfiguration validates and normalizes connection settings.
func NewClientConfiguration(baseURL string, token string) (ClientConfiguration, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), repositorySeparatorConstant)
	if len(trimmedBaseURL) == 0 {
		trimmedBaseURL = DefaultBaseURLConstant
	}

	parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
	if parseError != nil || len(parsedBaseURL.Scheme) == 0 || len(parsedBaseURL.Host) == 0 {
		return ClientConfiguration{}, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: fmt.Sprintf(invalidBaseURLMessageTemplateConstant, baseURL)}
	}

	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return ClientConfiguration{}, InvalidInputError{FieldName: tokenFieldNameConstant, Message: requiredValueMessageConstant}
	}

	return ClientConfiguration{
		BaseURL:   trimmedBaseURL,
		Token:     trimmedToken,
		UserAgent: defaultUserAgentConstant,
	}, nil
}

// WithOwner returns a copy of the configuration bound to the provided owner login.
func (configuration ClientConfiguration) WithOwner(owner string) ClientConfiguration {
	configuration.Owner = strings.TrimSpace(owner)
	return configuration
}

// WithRequestTimeout returns a copy of the configuration applying a per-request timeout.
func (configuration ClientConfiguration) WithRequestTimeout(timeout time.Duration) ClientConfiguration {
	if timeout < 0 {
		timeout = 0
	}
	configuration.RequestTimeout = timeout
	return configuration
}

// Client issues GitHub REST requests through an HTTPClient.
type Client struct {
	httpClient HTTPClient
}

var (
	// ErrHTTPClientNotConfigured indicates the client was constructed without an HTTP client.
	ErrHTTPClientNotConfigured = errors.New(httpClientNotConfiguredMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps transport issues for GitHub REST operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// UnexpectedStatusError reports a response whose status does not indicate success.
type UnexpectedStatusError struct {
	Operation  OperationName
	StatusCode int
	Body       string
}

// Error describes the unexpected status.
func (statusError UnexpectedStatusError) Error() string {
	return fmt.Sprintf(unexpectedStatusErrorTemplateConstant, statusError.Operation, statusError.StatusCode, statusError.Body)
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError indicates JSON encoding issues.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingErrorTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}

// NewClient constructs a GitHub REST client.
func NewClient(httpClient HTTPClient) (*Client, error) {
	if httpClient == nil {
		return nil, ErrHTTPClientNotConfigured
	}
	return &Client{httpClient: httpClient}, nil
}

type apiResponse struct {
	statusCode int
	body       []byte
}

func (response apiResponse) bodyText() string {
	return strings.TrimSpace(string(response.body))
}

func (client *Client) execute(executionContext context.Context, configuration ClientConfiguration, operation OperationName, method string, endpoint string, query url.Values, payload any) (apiResponse, error) {
	var requestBody io.Reader
	if payload != nil {
		payloadBytes, encodingError := json.Marshal(payload)
		if encodingError != nil {
			return apiResponse{}, PayloadEncodingError{Operation: operation, Cause: encodingError}
		}
		requestBody = bytes.NewReader(payloadBytes)
	}

	if executionContext == nil {
		executionContext = context.Background()
	}
	if configuration.RequestTimeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, configuration.RequestTimeout)
		defer cancel()
	}

	requestURL := configuration.BaseURL + endpoint
	if len(query) > 0 {
		requestURL += queryPrefixConstant + query.Encode()
	}

	request, requestError := http.NewRequestWithContext(executionContext, method, requestURL, requestBody)
	if requestError != nil {
		return apiResponse{}, OperationError{Operation: operation, Cause: requestError}
	}

	request.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(authorizationHeaderTemplateConstant, configuration.Token))
	request.Header.Set(acceptHeaderNameConstant, acceptHeaderValueConstant)
	if len(configuration.UserAgent) > 0 {
		request.Header.Set(userAgentHeaderNameConstant, configuration.UserAgent)
	}
	if payload != nil {
		request.Header.Set(contentTypeHeaderNameConstant, contentTypeJSONConstant)
	}

	response, executionError := client.httpClient.Do(request)
	if executionError != nil {
		return apiResponse{}, OperationError{Operation: operation, Cause: executionError}
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return apiResponse{}, OperationError{Operation: operation, Cause: readError}
	}

	return apiResponse{statusCode: response.StatusCode, body: responseBody}, nil
}

func decodeResponse(operation OperationName, response apiResponse, target any) error {
	if decodingError := json.Unmarshal(response.body, target); decodingError != nil {
		return ResponseDecodingError{Operation: operation, Cause: decodingError}
	}
	return nil
}

// repositoryCoordinates resolves "<name>" against the configured owner or splits "<owner>/<name>".
func repositoryCoordinates(configuration ClientConfiguration, repository string) (string, string, error) {
	trimmedRepository := strings.Trim(strings.TrimSpace(repository), repositorySeparatorConstant)
	if len(trimmedRepository) == 0 {
		return "", "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	segments := strings.Split(trimmedRepository, repositorySeparatorConstant)
	switch len(segments) {
	case 1:
		if len(configuration.Owner) == 0 {
			return "", "", InvalidInputError{FieldName: ownerFieldNameConstant, Message: ownerUnresolvedMessageConstant}
		}
		return configuration.Owner, segments[0], nil
	case 2:
		owner := strings.TrimSpace(segments[0])
		name := strings.TrimSpace(segments[1])
		if len(owner) == 0 || len(name) == 0 {
			return "", "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: invalidRepositoryMessageConstant}
		}
		return owner, name, nil
	default:
		return "", "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: invalidRepositoryMessageConstant}
	}
}

// escapePath escapes every segment of a slash-separated repository path.
func escapePath(repositoryPath string) string {
	segments := strings.Split(strings.Trim(repositoryPath, repositorySeparatorConstant), repositorySeparatorConstant)
	escapedSegments := make([]string, 0, len(segments))
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		escapedSegments = append(escapedSegments, url.PathEscape(segment))
	}
	return strings.Join(escapedSegments, repositorySeparatorConstant)
}
