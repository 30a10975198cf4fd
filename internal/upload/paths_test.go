package upload_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghpush/internal/repos/filesystem"
	"github.com/temirov/ghpush/internal/upload"
)

func TestRepositoryPath(testInstance *testing.T) {
	rootDirectory := filepath.FromSlash("/work/proj")

	testCases := []struct {
		name          string
		localPath     string
		includeParent bool
		expectedPath  string
		expectError   bool
	}{
		{name: "top_level_file", localPath: "/work/proj/a.txt", expectedPath: "a.txt"},
		{name: "nested_file", localPath: "/work/proj/src/lib/b.go", expectedPath: "src/lib/b.go"},
		{name: "include_parent", localPath: "/work/proj/a.txt", includeParent: true, expectedPath: "proj/a.txt"},
		{name: "include_parent_nested", localPath: "/work/proj/src/b.go", includeParent: true, expectedPath: "proj/src/b.go"},
		{name: "basename_repeated_below_root", localPath: "/work/proj/proj/c.txt", expectedPath: "proj/c.txt"},
		{name: "outside_root", localPath: "/work/other/a.txt", expectError: true},
		{name: "root_itself", localPath: "/work/proj", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath, pathError := upload.RepositoryPath(rootDirectory, filepath.FromSlash(testCase.localPath), testCase.includeParent)
			if testCase.expectError {
				require.Error(testInstance, pathError)
				return
			}
			require.NoError(testInstance, pathError)
			require.Equal(testInstance, testCase.expectedPath, repositoryPath)
		})
	}
}

func TestResolveRoot(testInstance *testing.T) {
	workDirectory := testInstance.TempDir()
	projectDirectory := filepath.Join(workDirectory, "proj")
	require.NoError(testInstance, os.MkdirAll(projectDirectory, 0o755))
	regularFile := filepath.Join(projectDirectory, "a.txt")
	require.NoError(testInstance, os.WriteFile(regularFile, []byte("a"), 0o644))
	linkPath := filepath.Join(workDirectory, "link")
	linkAvailable := os.Symlink(projectDirectory, linkPath) == nil

	testCases := []struct {
		name          string
		rootDirectory string
		requiresLink  bool
		expectedRoot  string
		expectedError error
	}{
		{name: "directory", rootDirectory: projectDirectory, expectedRoot: projectDirectory},
		{name: "symlinked_directory_keeps_link", rootDirectory: linkPath, requiresLink: true, expectedRoot: linkPath},
		{name: "blank", rootDirectory: "  ", expectedError: upload.ErrRootRequired},
		{name: "regular_file", rootDirectory: regularFile, expectedError: upload.ErrRootNotDirectory},
		{name: "missing", rootDirectory: filepath.Join(workDirectory, "missing"), expectedError: fs.ErrNotExist},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			if testCase.requiresLink && !linkAvailable {
				testInstance.Skip("symbolic links unavailable")
			}
			resolvedRoot, resolveError := upload.ResolveRoot(filesystem.OSFileSystem{}, testCase.rootDirectory)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedRoot, resolvedRoot)
		})
	}

	_, unconfiguredError := upload.ResolveRoot(nil, projectDirectory)
	require.ErrorIs(testInstance, unconfiguredError, upload.ErrFileSystemNotConfigured)
}
