package upload

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/temirov/ghpush/internal/repos/shared"
)

const (
	parentDirectoryPrefixConstant       = ".."
	pathOutsideRootTemplateConstant     = "path %s is outside upload root %s"
	relativePathFailureTemplateConstant = "unable to relate %s to %s: %w"
	pathIsRootTemplateConstant          = "path %s is the upload root itself, not a file beneath it"
)

// ResolveRoot returns the absolute form of rootDirectory after confirming it names a directory.
// Symbolic links are followed for the check, so a link to a directory is accepted.
func ResolveRoot(fileSystem shared.FileSystem, rootDirectory string) (string, error) {
	if fileSystem == nil {
		return "", ErrFileSystemNotConfigured
	}
	trimmedRoot := strings.TrimSpace(rootDirectory)
	if len(trimmedRoot) == 0 {
		return "", ErrRootRequired
	}

	absoluteRoot, absoluteError := fileSystem.Abs(trimmedRoot)
	if absoluteError != nil {
		return "", fmt.Errorf(resolveRootErrorTemplateConstant, trimmedRoot, absoluteError)
	}

	rootInfo, statError := fileSystem.Stat(absoluteRoot)
	if statError != nil {
		return "", fmt.Errorf(inspectRootErrorTemplateConstant, absoluteRoot, statError)
	}
	if !rootInfo.IsDir() {
		return "", fmt.Errorf(rootNotDirectoryTemplateConstant, ErrRootNotDirectory, absoluteRoot)
	}
	return absoluteRoot, nil
}

func rebasePath(fromRoot string, toRoot string, walkedPath string) (string, error) {
	if fromRoot == toRoot {
		return walkedPath, nil
	}
	relativePath, relativeError := filepath.Rel(fromRoot, walkedPath)
	if relativeError != nil {
		return "", fmt.Errorf(relativePathFailureTemplateConstant, walkedPath, fromRoot, relativeError)
	}
	return filepath.Join(toRoot, relativePath), nil
}

// RepositoryPath computes the slash-separated path a local file takes inside the repository.
// With includeParent the root directory's base name prefixes the path.
func RepositoryPath(rootDirectory string, localPath string, includeParent bool) (string, error) {
	relativePath, relativeError := filepath.Rel(rootDirectory, localPath)
	if relativeError != nil {
		return "", fmt.Errorf(relativePathFailureTemplateConstant, localPath, rootDirectory, relativeError)
	}

	slashPath := filepath.ToSlash(relativePath)
	if slashPath == "." {
		return "", fmt.Errorf(pathIsRootTemplateConstant, localPath)
	}
	if slashPath == parentDirectoryPrefixConstant || strings.HasPrefix(slashPath, parentDirectoryPrefixConstant+pathSegmentSeparatorConstant) {
		return "", fmt.Errorf(pathOutsideRootTemplateConstant, localPath, rootDirectory)
	}

	if !includeParent {
		return slashPath, nil
	}
	return path.Join(filepath.Base(rootDirectory), slashPath), nil
}
