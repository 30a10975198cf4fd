package shared

import (
	"io/fs"
)

// FileSystem exposes filesystem operations required by upload and repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	EvalSymlinks(path string) (string, error)
	ReadFile(path string) ([]byte, error)
	WalkDir(root string, walkFunction fs.WalkDirFunc) error
}

// ConfirmationPrompter collects user confirmations prior to destructive actions.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}
