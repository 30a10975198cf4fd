package upload

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/ghpush/internal/githubapi"
	"github.com/temirov/ghpush/internal/repos/shared"
)

const (
	loggerNotConfiguredMessageConstant       = "upload logger not configured"
	contentStoreNotConfiguredMessageConstant = "upload content store not configured"
	fileSystemNotConfiguredMessageConstant   = "upload file system not configured"
	repositoryRequiredMessageConstant        = "upload repository must be provided"
	rootRequiredMessageConstant              = "upload root directory must be provided"
	rootNotDirectoryMessageConstant          = "upload root must be a directory"
	rootNotDirectoryTemplateConstant         = "%w: %s"
	resolveRootErrorTemplateConstant         = "unable to resolve upload root %s: %w"
	inspectRootErrorTemplateConstant         = "unable to inspect upload root %s: %w"
	resolveRootLinkErrorTemplateConstant     = "unable to follow upload root %s: %w"
	readFileErrorTemplateConstant            = "unable to read %s: %w"
	walkErrorTemplateConstant                = "unable to walk %s: %w"
	lookupStatusDetailTemplateConstant       = "version lookup returned status %d"
	uploadStartedMessageConstant             = "upload started"
	uploadCompletedMessageConstant           = "upload completed"
	uploadAbortedMessageConstant             = "upload aborted"
	fileIgnoredMessageConstant               = "path ignored"
	fileLookupMessageConstant                = "version lookup"
	fileLookupFailedMessageConstant          = "version lookup failed"
	fileWrittenMessageConstant               = "file written"
	fileWriteFailedMessageConstant           = "file write failed"
	logFieldRunIDConstant                    = "run_id"
	logFieldRepositoryConstant               = "repository"
	logFieldBranchConstant                   = "branch"
	logFieldRootConstant                     = "root"
	logFieldLocalPathConstant                = "local_path"
	logFieldRepositoryPathConstant           = "repository_path"
	logFieldActionConstant                   = "action"
	logFieldStatusCodeConstant               = "status_code"
	logFieldTokenFoundConstant               = "token_found"
	logFieldUploadedConstant                 = "uploaded"
	logFieldUpdatedConstant                  = "updated"
	logFieldIgnoredConstant                  = "ignored"
	logFieldFailedConstant                   = "failed"
	logFieldIncludeParentConstant            = "include_parent"
	logFieldIgnoreModeConstant               = "ignore_mode"
	logFieldLookupPolicyConstant             = "lookup_policy"
)

var (
	// ErrLoggerNotConfigured indicates the service was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrContentStoreNotConfigured indicates the service was constructed without a content store.
	ErrContentStoreNotConfigured = errors.New(contentStoreNotConfiguredMessageConstant)
	// ErrFileSystemNotConfigured indicates the service was constructed without a file system.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrRepositoryRequired indicates the target did not name a repository.
	ErrRepositoryRequired = errors.New(repositoryRequiredMessageConstant)
	// ErrRootRequired indicates no local directory was provided.
	ErrRootRequired = errors.New(rootRequiredMessageConstant)
	// ErrRootNotDirectory indicates the local root exists but is not a directory.
	ErrRootNotDirectory = errors.New(rootNotDirectoryMessageConstant)
)

// ContentStore is the subset of the GitHub contents API used by the uploader.
type ContentStore interface {
	LookupContentVersion(executionContext context.Context, configuration githubapi.ClientConfiguration, repository string, repositoryPath string, branch string) (githubapi.ContentVersion, error)
	PutContent(executionContext context.Context, configuration githubapi.ClientConfiguration, repository string, repositoryPath string, write githubapi.ContentWrite) (githubapi.ContentWriteResult, error)
}

// RunIdentifierGenerator yields identifiers correlating the log lines of one run.
type RunIdentifierGenerator func() string

// ResultObserver receives each file result as soon as it is recorded.
type ResultObserver func(fileResult FileResult)

// Service walks local directories and writes their files to a repository branch.
type Service struct {
	logger                 *zap.Logger
	store                  ContentStore
	fileSystem             shared.FileSystem
	runIdentifierGenerator RunIdentifierGenerator
	resultObserver         ResultObserver
}

// NewService constructs an upload Service.
func NewService(logger *zap.Logger, store ContentStore, fileSystem shared.FileSystem) (*Service, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if store == nil {
		return nil, ErrContentStoreNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Service{
		logger:                 logger,
		store:                  store,
		fileSystem:             fileSystem,
		runIdentifierGenerator: uuid.NewString,
	}, nil
}

// WithRunIdentifierGenerator overrides how run identifiers are produced.
func (service *Service) WithRunIdentifierGenerator(generator RunIdentifierGenerator) *Service {
	if generator != nil {
		service.runIdentifierGenerator = generator
	}
	return service
}

// WithResultObserver registers a callback invoked for every file result in walk order.
func (service *Service) WithResultObserver(observer ResultObserver) *Service {
	service.resultObserver = observer
	return service
}

// Upload writes every non-ignored regular file beneath rootDirectory to the target repository.
// Files are handled one at a time: lookup, then write. Lookup and write failures are recorded in
// the returned Result and the walk continues. Local walk or read failures abort the run and are
// returned together with the results gathered so far.
func (service *Service) Upload(executionContext context.Context, configuration githubapi.ClientConfiguration, rootDirectory string, target Target) (Result, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	normalizedTarget := target.normalize()
	if len(normalizedTarget.Repository) == 0 {
		return Result{}, ErrRepositoryRequired
	}

	trimmedRoot := strings.TrimSpace(rootDirectory)
	if len(trimmedRoot) == 0 {
		return Result{}, ErrRootRequired
	}

	if _, policyError := ParseLookupFailurePolicy(string(normalizedTarget.LookupFailurePolicy)); policyError != nil {
		return Result{}, policyError
	}

	matcher, matcherError := NewIgnoreMatcher(normalizedTarget.IgnoreNames, normalizedTarget.IgnoreMode)
	if matcherError != nil {
		return Result{}, matcherError
	}

	absoluteRoot, rootError := ResolveRoot(service.fileSystem, trimmedRoot)
	if rootError != nil {
		return Result{}, rootError
	}

	walkRoot, linkError := service.fileSystem.EvalSymlinks(absoluteRoot)
	if linkError != nil {
		return Result{}, fmt.Errorf(resolveRootLinkErrorTemplateConstant, absoluteRoot, linkError)
	}

	result := Result{
		RunID:      service.runIdentifierGenerator(),
		Repository: normalizedTarget.Repository,
		Branch:     normalizedTarget.Branch,
	}
	runLogger := service.logger.With(zap.String(logFieldRunIDConstant, result.RunID))
	runLogger.Info(
		uploadStartedMessageConstant,
		zap.String(logFieldRepositoryConstant, normalizedTarget.Repository),
		zap.String(logFieldBranchConstant, normalizedTarget.Branch),
		zap.String(logFieldRootConstant, absoluteRoot),
		zap.Bool(logFieldIncludeParentConstant, normalizedTarget.IncludeParent),
		zap.String(logFieldIgnoreModeConstant, string(normalizedTarget.IgnoreMode)),
		zap.String(logFieldLookupPolicyConstant, string(normalizedTarget.LookupFailurePolicy)),
	)

	// A symlinked root is walked through its target while every reported path keeps the link prefix.
	walkError := service.fileSystem.WalkDir(walkRoot, func(walkedPath string, directoryEntry fs.DirEntry, entryError error) error {
		localPath, rebaseError := rebasePath(walkRoot, absoluteRoot, walkedPath)
		if rebaseError != nil {
			return rebaseError
		}
		if entryError != nil {
			return fmt.Errorf(walkErrorTemplateConstant, localPath, entryError)
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		if directoryEntry.IsDir() {
			if matcher.Match(localPath) {
				service.record(&result, service.ignored(runLogger, localPath))
				return fs.SkipDir
			}
			return nil
		}

		if !directoryEntry.Type().IsRegular() {
			return nil
		}

		if matcher.Match(localPath) {
			service.record(&result, service.ignored(runLogger, localPath))
			return nil
		}

		entry, entryBuildError := service.readEntry(absoluteRoot, localPath, normalizedTarget.IncludeParent)
		if entryBuildError != nil {
			return entryBuildError
		}

		service.record(&result, service.writeEntry(executionContext, runLogger, configuration, normalizedTarget, entry))
		return nil
	})

	if walkError != nil {
		runLogger.Warn(uploadAbortedMessageConstant, zap.Error(walkError))
		return result, walkError
	}

	runLogger.Info(
		uploadCompletedMessageConstant,
		zap.Int(logFieldUploadedConstant, result.Count(ActionUploaded)),
		zap.Int(logFieldUpdatedConstant, result.Count(ActionUpdated)),
		zap.Int(logFieldIgnoredConstant, result.Count(ActionIgnored)),
		zap.Int(logFieldFailedConstant, result.Count(ActionFailed)),
	)

	return result, nil
}

func (service *Service) record(result *Result, fileResult FileResult) {
	result.Files = append(result.Files, fileResult)
	if service.resultObserver != nil {
		service.resultObserver(fileResult)
	}
}

func (service *Service) ignored(runLogger *zap.Logger, localPath string) FileResult {
	runLogger.Debug(fileIgnoredMessageConstant, zap.String(logFieldLocalPathConstant, localPath))
	return FileResult{LocalPath: localPath, Action: ActionIgnored}
}

func (service *Service) readEntry(absoluteRoot string, localPath string, includeParent bool) (FileEntry, error) {
	content, readError := service.fileSystem.ReadFile(localPath)
	if readError != nil {
		return FileEntry{}, fmt.Errorf(readFileErrorTemplateConstant, localPath, readError)
	}

	repositoryPath, pathError := RepositoryPath(absoluteRoot, localPath, includeParent)
	if pathError != nil {
		return FileEntry{}, pathError
	}

	return FileEntry{LocalPath: localPath, RepositoryPath: repositoryPath, Content: content}, nil
}

func (service *Service) writeEntry(executionContext context.Context, runLogger *zap.Logger, configuration githubapi.ClientConfiguration, target Target, entry FileEntry) FileResult {
	fileResult := FileResult{LocalPath: entry.LocalPath, RepositoryPath: entry.RepositoryPath}
	fileLogger := runLogger.With(zap.String(logFieldRepositoryPathConstant, entry.RepositoryPath))

	version, lookupError := service.store.LookupContentVersion(executionContext, configuration, target.Repository, entry.RepositoryPath, target.Branch)
	versionToken, lookupFailure := resolveVersionToken(target.LookupFailurePolicy, version, lookupError)
	if lookupFailure != nil {
		fileLogger.Warn(fileLookupFailedMessageConstant, zap.Int(logFieldStatusCodeConstant, version.StatusCode), zap.Error(lookupFailure))
		fileResult.Action = ActionFailed
		fileResult.StatusCode = version.StatusCode
		fileResult.Detail = lookupFailure.Error()
		fileResult.Err = lookupFailure
		return fileResult
	}
	fileLogger.Debug(fileLookupMessageConstant, zap.Int(logFieldStatusCodeConstant, version.StatusCode), zap.Bool(logFieldTokenFoundConstant, len(versionToken) > 0))

	write := githubapi.ContentWrite{
		Message: target.CommitMessage,
		Content: base64.StdEncoding.EncodeToString(entry.Content),
		Branch:  target.Branch,
		SHA:     versionToken,
	}

	writeResult, writeError := service.store.PutContent(executionContext, configuration, target.Repository, entry.RepositoryPath, write)
	fileResult.StatusCode = writeResult.StatusCode
	if writeError != nil {
		fileResult.Action = ActionFailed
		fileResult.Detail = describeWriteFailure(writeError)
		fileResult.Err = writeError
		fileLogger.Warn(fileWriteFailedMessageConstant, zap.Int(logFieldStatusCodeConstant, writeResult.StatusCode), zap.Error(writeError))
		return fileResult
	}

	fileResult.Action = ActionUploaded
	if len(versionToken) > 0 {
		fileResult.Action = ActionUpdated
	}
	fileLogger.Debug(fileWrittenMessageConstant, zap.String(logFieldActionConstant, string(fileResult.Action)), zap.Int(logFieldStatusCodeConstant, writeResult.StatusCode))
	return fileResult
}

// resolveVersionToken applies the lookup failure policy. It returns the token to send with the
// write, or an error when the policy forbids writing.
func resolveVersionToken(policy LookupFailurePolicy, version githubapi.ContentVersion, lookupError error) (string, error) {
	if policy != LookupFailureStrict {
		if lookupError != nil {
			return "", nil
		}
		return version.SHA, nil
	}

	if lookupError != nil {
		return "", lookupError
	}
	switch version.StatusCode {
	case http.StatusOK:
		return version.SHA, nil
	case http.StatusNotFound:
		return "", nil
	default:
		return "", fmt.Errorf(lookupStatusDetailTemplateConstant, version.StatusCode)
	}
}

func describeWriteFailure(writeError error) string {
	var statusError githubapi.UnexpectedStatusError
	if errors.As(writeError, &statusError) && len(statusError.Body) > 0 {
		return statusError.Body
	}
	return writeError.Error()
}
