package upload_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/ghpush/internal/githubapi"
	"github.com/temirov/ghpush/internal/repos/filesystem"
	"github.com/temirov/ghpush/internal/upload"
)

const (
	testRepositoryConstant           = "GithubApi"
	testBranchConstant               = "master"
	testProjectDirectoryConstant     = "proj"
	testRunIdentifierConstant        = "run-1"
	testExistingTokenConstant        = "abc123"
	testTopLevelFileConstant         = "a.txt"
	testTopLevelContentConstant      = "alpha"
	testDirectoryPermissionsConstant = 0o755
	testFilePermissionsConstant      = 0o644
)

type lookupResponse struct {
	version githubapi.ContentVersion
	err     error
}

type recordedWrite struct {
	repository     string
	repositoryPath string
	write          githubapi.ContentWrite
}

type fakeContentStore struct {
	lookups         map[string]lookupResponse
	writeErrors     map[string]error
	writeStatus     map[string]int
	recordedLookups []string
	recordedWrites  []recordedWrite
}

func (store *fakeContentStore) LookupContentVersion(_ context.Context, _ githubapi.ClientConfiguration, _ string, repositoryPath string, _ string) (githubapi.ContentVersion, error) {
	store.recordedLookups = append(store.recordedLookups, repositoryPath)
	if response, exists := store.lookups[repositoryPath]; exists {
		return response.version, response.err
	}
	return githubapi.ContentVersion{StatusCode: http.StatusNotFound}, nil
}

func (store *fakeContentStore) PutContent(_ context.Context, _ githubapi.ClientConfiguration, repository string, repositoryPath string, write githubapi.ContentWrite) (githubapi.ContentWriteResult, error) {
	store.recordedWrites = append(store.recordedWrites, recordedWrite{repository: repository, repositoryPath: repositoryPath, write: write})
	if writeError, exists := store.writeErrors[repositoryPath]; exists {
		return githubapi.ContentWriteResult{StatusCode: http.StatusUnprocessableEntity}, writeError
	}
	if statusCode, exists := store.writeStatus[repositoryPath]; exists {
		return githubapi.ContentWriteResult{StatusCode: statusCode}, nil
	}
	return githubapi.ContentWriteResult{StatusCode: http.StatusCreated}, nil
}

func (store *fakeContentStore) writtenPaths() []string {
	paths := make([]string, 0, len(store.recordedWrites))
	for _, write := range store.recordedWrites {
		paths = append(paths, write.repositoryPath)
	}
	return paths
}

type failingReadFileSystem struct {
	filesystem.OSFileSystem
	failingSuffix string
}

func (fileSystem failingReadFileSystem) ReadFile(path string) ([]byte, error) {
	if strings.HasSuffix(filepath.ToSlash(path), fileSystem.failingSuffix) {
		return nil, fs.ErrPermission
	}
	return fileSystem.OSFileSystem.ReadFile(path)
}

// writeTree creates files under root from slash-separated relative paths.
func writeTree(testInstance *testing.T, rootDirectory string, files map[string]string) {
	testInstance.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), testDirectoryPermissionsConstant))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), testFilePermissionsConstant))
	}
}

func newProjectTree(testInstance *testing.T) string {
	testInstance.Helper()
	projectDirectory := filepath.Join(testInstance.TempDir(), testProjectDirectoryConstant)
	writeTree(testInstance, projectDirectory, map[string]string{
		testTopLevelFileConstant: testTopLevelContentConstant,
		"node_modules/b.js":      "module.exports = {}",
		".git/HEAD":              "ref: refs/heads/master",
	})
	return projectDirectory
}

func newService(testInstance *testing.T, store upload.ContentStore, logger *zap.Logger) *upload.Service {
	testInstance.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}
	service, serviceError := upload.NewService(logger, store, filesystem.OSFileSystem{})
	require.NoError(testInstance, serviceError)
	return service.WithRunIdentifierGenerator(func() string { return testRunIdentifierConstant })
}

func testClientConfiguration() githubapi.ClientConfiguration {
	return githubapi.ClientConfiguration{BaseURL: githubapi.DefaultBaseURLConstant, Token: "token", Owner: "octocat"}
}

func TestNewServiceValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		store         upload.ContentStore
		fileSystem    filesystem.OSFileSystem
		useFileSystem bool
		expectedError error
	}{
		{name: "missing_logger", store: &fakeContentStore{}, useFileSystem: true, expectedError: upload.ErrLoggerNotConfigured},
		{name: "missing_store", logger: zap.NewNop(), useFileSystem: true, expectedError: upload.ErrContentStoreNotConfigured},
		{name: "missing_file_system", logger: zap.NewNop(), store: &fakeContentStore{}, expectedError: upload.ErrFileSystemNotConfigured},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var service *upload.Service
			var serviceError error
			if testCase.useFileSystem {
				service, serviceError = upload.NewService(testCase.logger, testCase.store, testCase.fileSystem)
			} else {
				service, serviceError = upload.NewService(testCase.logger, testCase.store, nil)
			}
			require.ErrorIs(testInstance, serviceError, testCase.expectedError)
			require.Nil(testInstance, service)
		})
	}
}

func TestUploadWritesOnlyNonIgnoredFiles(testInstance *testing.T) {
	testCases := []struct {
		name          string
		includeParent bool
		expectedPath  string
	}{
		{name: "without_parent", includeParent: false, expectedPath: testTopLevelFileConstant},
		{name: "with_parent", includeParent: true, expectedPath: testProjectDirectoryConstant + "/" + testTopLevelFileConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			projectDirectory := newProjectTree(testInstance)
			store := &fakeContentStore{}
			service := newService(testInstance, store, nil)

			target := upload.NewTarget(testRepositoryConstant)
			target.IncludeParent = testCase.includeParent

			result, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, target)
			require.NoError(testInstance, uploadError)

			require.Equal(testInstance, []string{testCase.expectedPath}, store.writtenPaths())
			require.Equal(testInstance, []string{testCase.expectedPath}, store.recordedLookups)
			require.Equal(testInstance, testRepositoryConstant, store.recordedWrites[0].repository)

			write := store.recordedWrites[0].write
			require.Equal(testInstance, upload.DefaultCommitMessageConstant, write.Message)
			require.Equal(testInstance, testBranchConstant, write.Branch)
			require.Equal(testInstance, base64.StdEncoding.EncodeToString([]byte(testTopLevelContentConstant)), write.Content)
			require.Empty(testInstance, write.SHA)

			require.Equal(testInstance, testRunIdentifierConstant, result.RunID)
			require.Equal(testInstance, 1, result.Count(upload.ActionUploaded))
			require.Equal(testInstance, 2, result.Count(upload.ActionIgnored))
			require.False(testInstance, result.Failed())
		})
	}
}

func TestUploadRelativePathsHonorIncludeParent(testInstance *testing.T) {
	projectDirectory := filepath.Join(testInstance.TempDir(), testProjectDirectoryConstant)
	writeTree(testInstance, projectDirectory, map[string]string{
		"a.txt":             "a",
		"src/main.go":       "package main",
		"src/lib/util.go":   "package lib",
		"docs/proj/note.md": "note",
	})

	for _, includeParent := range []bool{false, true} {
		store := &fakeContentStore{}
		service := newService(testInstance, store, nil)
		target := upload.NewTarget(testRepositoryConstant)
		target.IncludeParent = includeParent

		_, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, target)
		require.NoError(testInstance, uploadError)
		require.Len(testInstance, store.recordedWrites, 4)

		for _, writtenPath := range store.writtenPaths() {
			hasParentPrefix := strings.HasPrefix(writtenPath, testProjectDirectoryConstant+"/")
			require.Equal(testInstance, includeParent, hasParentPrefix, writtenPath)
		}
	}
}

func TestUploadSendsVersionTokenOnlyWhenFound(testInstance *testing.T) {
	testCases := []struct {
		name           string
		lookup         lookupResponse
		writeStatus    int
		expectedSHA    string
		expectedAction upload.Action
	}{
		{
			name:           "token_found_updates",
			lookup:         lookupResponse{version: githubapi.ContentVersion{SHA: testExistingTokenConstant, StatusCode: http.StatusOK}},
			writeStatus:    http.StatusOK,
			expectedSHA:    testExistingTokenConstant,
			expectedAction: upload.ActionUpdated,
		},
		{
			name:           "not_found_uploads",
			lookup:         lookupResponse{version: githubapi.ContentVersion{StatusCode: http.StatusNotFound}},
			writeStatus:    http.StatusCreated,
			expectedAction: upload.ActionUploaded,
		},
		{
			name:           "server_error_is_treated_as_absent",
			lookup:         lookupResponse{version: githubapi.ContentVersion{StatusCode: http.StatusInternalServerError}},
			writeStatus:    http.StatusCreated,
			expectedAction: upload.ActionUploaded,
		},
		{
			name:           "transport_error_is_treated_as_absent",
			lookup:         lookupResponse{err: githubapi.OperationError{Operation: "LookupContentVersion", Cause: errors.New("connection reset")}},
			writeStatus:    http.StatusCreated,
			expectedAction: upload.ActionUploaded,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			projectDirectory := newProjectTree(testInstance)
			store := &fakeContentStore{
				lookups:     map[string]lookupResponse{testTopLevelFileConstant: testCase.lookup},
				writeStatus: map[string]int{testTopLevelFileConstant: testCase.writeStatus},
			}
			service := newService(testInstance, store, nil)

			result, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, upload.NewTarget(testRepositoryConstant))
			require.NoError(testInstance, uploadError)

			require.Len(testInstance, store.recordedWrites, 1)
			require.Equal(testInstance, testCase.expectedSHA, store.recordedWrites[0].write.SHA)
			require.Equal(testInstance, 1, result.Count(testCase.expectedAction))
			require.Equal(testInstance, testCase.writeStatus, writtenResult(testInstance, result).StatusCode)
		})
	}
}

func TestUploadStrictLookupPolicy(testInstance *testing.T) {
	testCases := []struct {
		name           string
		lookup         lookupResponse
		expectWrite    bool
		expectedAction upload.Action
	}{
		{name: "not_found_still_writes", lookup: lookupResponse{version: githubapi.ContentVersion{StatusCode: http.StatusNotFound}}, expectWrite: true, expectedAction: upload.ActionUploaded},
		{name: "found_updates", lookup: lookupResponse{version: githubapi.ContentVersion{SHA: testExistingTokenConstant, StatusCode: http.StatusOK}}, expectWrite: true, expectedAction: upload.ActionUpdated},
		{name: "server_error_fails_file", lookup: lookupResponse{version: githubapi.ContentVersion{StatusCode: http.StatusBadGateway}}, expectedAction: upload.ActionFailed},
		{name: "transport_error_fails_file", lookup: lookupResponse{err: errors.New("dial tcp: timeout")}, expectedAction: upload.ActionFailed},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			projectDirectory := newProjectTree(testInstance)
			store := &fakeContentStore{lookups: map[string]lookupResponse{testTopLevelFileConstant: testCase.lookup}}
			service := newService(testInstance, store, nil)

			target := upload.NewTarget(testRepositoryConstant)
			target.LookupFailurePolicy = upload.LookupFailureStrict

			result, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, target)
			require.NoError(testInstance, uploadError)
			require.Equal(testInstance, testCase.expectWrite, len(store.recordedWrites) == 1)
			require.Equal(testInstance, 1, result.Count(testCase.expectedAction))
		})
	}
}

func TestUploadContinuesPastWriteFailures(testInstance *testing.T) {
	projectDirectory := filepath.Join(testInstance.TempDir(), testProjectDirectoryConstant)
	writeTree(testInstance, projectDirectory, map[string]string{
		"a.txt": "a",
		"b.txt": "b",
		"c.txt": "c",
	})

	store := &fakeContentStore{
		writeErrors: map[string]error{
			"a.txt": githubapi.UnexpectedStatusError{Operation: "PutContent", StatusCode: http.StatusUnprocessableEntity, Body: `{"message":"Invalid request"}`},
		},
	}
	service := newService(testInstance, store, nil)

	result, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, upload.NewTarget(testRepositoryConstant))
	require.NoError(testInstance, uploadError)
	require.Equal(testInstance, []string{"a.txt", "b.txt", "c.txt"}, store.writtenPaths())
	require.True(testInstance, result.Failed())
	require.Equal(testInstance, 1, result.Count(upload.ActionFailed))
	require.Equal(testInstance, 2, result.Count(upload.ActionUploaded))

	failedResult := result.Files[0]
	require.Equal(testInstance, upload.ActionFailed, failedResult.Action)
	require.Equal(testInstance, http.StatusUnprocessableEntity, failedResult.StatusCode)
	require.Equal(testInstance, `{"message":"Invalid request"}`, failedResult.Detail)
	require.Error(testInstance, failedResult.Err)
}

func TestUploadSkipsEverythingBelowIgnoredAncestor(testInstance *testing.T) {
	projectDirectory := filepath.Join(testInstance.TempDir(), "node_modules", testProjectDirectoryConstant)
	writeTree(testInstance, projectDirectory, map[string]string{"a.txt": "a", "src/b.txt": "b"})

	store := &fakeContentStore{}
	service := newService(testInstance, store, nil)

	result, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, upload.NewTarget(testRepositoryConstant))
	require.NoError(testInstance, uploadError)
	require.Empty(testInstance, store.recordedWrites)
	require.Empty(testInstance, store.recordedLookups)
	require.Equal(testInstance, 1, result.Count(upload.ActionIgnored))
}

func TestUploadLiteralIgnoreModeKeepsGlobEntriesLiteral(testInstance *testing.T) {
	projectDirectory := filepath.Join(testInstance.TempDir(), testProjectDirectoryConstant)
	writeTree(testInstance, projectDirectory, map[string]string{"a.txt": "a", "npm-debug.log.42": "trace"})

	for _, testCase := range []struct {
		mode          upload.IgnoreMode
		expectedPaths []string
	}{
		{mode: upload.IgnoreModeLiteral, expectedPaths: []string{"a.txt", "npm-debug.log.42"}},
		{mode: upload.IgnoreModeGlob, expectedPaths: []string{"a.txt"}},
	} {
		store := &fakeContentStore{}
		service := newService(testInstance, store, nil)
		target := upload.NewTarget(testRepositoryConstant)
		target.IgnoreMode = testCase.mode

		_, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, target)
		require.NoError(testInstance, uploadError)
		require.Equal(testInstance, testCase.expectedPaths, store.writtenPaths(), string(testCase.mode))
	}
}

func TestUploadAbortsOnLocalReadFailure(testInstance *testing.T) {
	projectDirectory := filepath.Join(testInstance.TempDir(), testProjectDirectoryConstant)
	writeTree(testInstance, projectDirectory, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})

	store := &fakeContentStore{}
	service, serviceError := upload.NewService(zap.NewNop(), store, failingReadFileSystem{failingSuffix: "/b.txt"})
	require.NoError(testInstance, serviceError)

	result, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, upload.NewTarget(testRepositoryConstant))
	require.ErrorIs(testInstance, uploadError, fs.ErrPermission)
	require.Equal(testInstance, []string{"a.txt"}, store.writtenPaths())
	require.Len(testInstance, result.Files, 1)
}

func TestUploadRejectsMissingRoot(testInstance *testing.T) {
	store := &fakeContentStore{}
	service := newService(testInstance, store, nil)

	_, uploadError := service.Upload(context.Background(), testClientConfiguration(), filepath.Join(testInstance.TempDir(), "missing"), upload.NewTarget(testRepositoryConstant))
	require.ErrorIs(testInstance, uploadError, fs.ErrNotExist)
	require.Empty(testInstance, store.recordedWrites)
}

func TestUploadRejectsFileRoot(testInstance *testing.T) {
	projectDirectory := newProjectTree(testInstance)
	store := &fakeContentStore{}
	service := newService(testInstance, store, nil)

	result, uploadError := service.Upload(context.Background(), testClientConfiguration(), filepath.Join(projectDirectory, testTopLevelFileConstant), upload.NewTarget(testRepositoryConstant))
	require.ErrorIs(testInstance, uploadError, upload.ErrRootNotDirectory)
	require.Empty(testInstance, result.Files)
	require.Empty(testInstance, store.recordedLookups)
	require.Empty(testInstance, store.recordedWrites)
}

func TestUploadFollowsSymlinkedRoot(testInstance *testing.T) {
	const linkNameConstant = "link"

	testCases := []struct {
		name          string
		includeParent bool
		expectedPath  string
	}{
		{name: "without_parent", includeParent: false, expectedPath: testTopLevelFileConstant},
		{name: "with_parent", includeParent: true, expectedPath: linkNameConstant + "/" + testTopLevelFileConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			projectDirectory := newProjectTree(testInstance)
			linkPath := filepath.Join(testInstance.TempDir(), linkNameConstant)
			if symlinkError := os.Symlink(projectDirectory, linkPath); symlinkError != nil {
				testInstance.Skipf("symbolic links unavailable: %v", symlinkError)
			}

			store := &fakeContentStore{}
			service := newService(testInstance, store, nil)
			target := upload.NewTarget(testRepositoryConstant)
			target.IncludeParent = testCase.includeParent

			result, uploadError := service.Upload(context.Background(), testClientConfiguration(), linkPath, target)
			require.NoError(testInstance, uploadError)
			require.Equal(testInstance, []string{testCase.expectedPath}, store.writtenPaths())
			require.Equal(testInstance, 1, result.Count(upload.ActionUploaded))
			require.Equal(testInstance, 2, result.Count(upload.ActionIgnored))

			absoluteLinkPath, absoluteError := filepath.Abs(linkPath)
			require.NoError(testInstance, absoluteError)
			for _, fileResult := range result.Files {
				require.True(testInstance, strings.HasPrefix(fileResult.LocalPath, absoluteLinkPath+string(filepath.Separator)), fileResult.LocalPath)
			}
		})
	}
}

func TestUploadValidatesTarget(testInstance *testing.T) {
	service := newService(testInstance, &fakeContentStore{}, nil)

	_, uploadError := service.Upload(context.Background(), testClientConfiguration(), testInstance.TempDir(), upload.Target{})
	require.ErrorIs(testInstance, uploadError, upload.ErrRepositoryRequired)

	_, uploadError = service.Upload(context.Background(), testClientConfiguration(), " ", upload.NewTarget(testRepositoryConstant))
	require.ErrorIs(testInstance, uploadError, upload.ErrRootRequired)

	invalidTarget := upload.NewTarget(testRepositoryConstant)
	invalidTarget.LookupFailurePolicy = upload.LookupFailurePolicy("sometimes")
	_, uploadError = service.Upload(context.Background(), testClientConfiguration(), testInstance.TempDir(), invalidTarget)
	require.Error(testInstance, uploadError)
}

func TestUploadAppliesTargetDefaults(testInstance *testing.T) {
	projectDirectory := newProjectTree(testInstance)
	store := &fakeContentStore{}
	service := newService(testInstance, store, nil)

	result, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, upload.Target{Repository: testRepositoryConstant})
	require.NoError(testInstance, uploadError)
	require.Equal(testInstance, []string{testTopLevelFileConstant}, store.writtenPaths())
	require.Equal(testInstance, testBranchConstant, result.Branch)
	require.Equal(testInstance, upload.DefaultCommitMessageConstant, store.recordedWrites[0].write.Message)
}

func TestUploadLogsRunSummary(testInstance *testing.T) {
	projectDirectory := newProjectTree(testInstance)
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	service := newService(testInstance, &fakeContentStore{}, zap.New(observedCore))

	_, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, upload.NewTarget(testRepositoryConstant))
	require.NoError(testInstance, uploadError)

	completedEntries := observedLogs.FilterMessage("upload completed").All()
	require.Len(testInstance, completedEntries, 1)
	contextMap := completedEntries[0].ContextMap()
	require.Equal(testInstance, testRunIdentifierConstant, contextMap["run_id"])
	require.EqualValues(testInstance, 1, contextMap["uploaded"])
	require.EqualValues(testInstance, 2, contextMap["ignored"])
	require.Equal(testInstance, 2, observedLogs.FilterMessage("path ignored").Len())
}

func TestUploadStopsWhenContextCancelled(testInstance *testing.T) {
	projectDirectory := newProjectTree(testInstance)
	store := &fakeContentStore{}
	service := newService(testInstance, store, nil)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, uploadError := service.Upload(cancelledContext, testClientConfiguration(), projectDirectory, upload.NewTarget(testRepositoryConstant))
	require.ErrorIs(testInstance, uploadError, context.Canceled)
	require.Empty(testInstance, store.recordedWrites)
}

func writtenResult(testInstance *testing.T, result upload.Result) upload.FileResult {
	testInstance.Helper()
	for _, fileResult := range result.Files {
		if fileResult.Action == upload.ActionUploaded || fileResult.Action == upload.ActionUpdated {
			return fileResult
		}
	}
	testInstance.Fatalf("no written file in result")
	return upload.FileResult{}
}

func TestUploadNotifiesObserverInWalkOrder(testInstance *testing.T) {
	projectDirectory := newProjectTree(testInstance)
	service := newService(testInstance, &fakeContentStore{}, nil)

	var observedActions []upload.Action
	service.WithResultObserver(func(fileResult upload.FileResult) {
		observedActions = append(observedActions, fileResult.Action)
	})

	result, uploadError := service.Upload(context.Background(), testClientConfiguration(), projectDirectory, upload.NewTarget(testRepositoryConstant))
	require.NoError(testInstance, uploadError)
	require.Len(testInstance, observedActions, len(result.Files))
	require.Equal(testInstance, []upload.Action{upload.ActionIgnored, upload.ActionUploaded, upload.ActionIgnored}, observedActions)
}
