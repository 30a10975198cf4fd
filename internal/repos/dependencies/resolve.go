package dependencies

import (
	"errors"
	"io"
	"net/http"

	"github.com/temirov/ghpush/internal/repos/filesystem"
	"github.com/temirov/ghpush/internal/repos/prompt"
	"github.com/temirov/ghpush/internal/repos/shared"
)

const nonInteractiveConfirmationMessageConstant = "confirmation required but input is not a terminal; pass --yes to proceed"

// ErrNonInteractiveConfirmation indicates a prompt was needed while stdin is not a terminal.
var ErrNonInteractiveConfirmation = errors.New(nonInteractiveConfirmationMessageConstant)

// InteractivityDetector reports whether the provided input is attached to a terminal.
type InteractivityDetector func(input io.Reader) bool

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveHTTPClient returns the provided client or the default net/http client.
func ResolveHTTPClient(existing *http.Client) *http.Client {
	if existing != nil {
		return existing
	}
	return &http.Client{}
}

// ResolveConfirmationPrompter returns the provided prompter, or a terminal-backed one when input
// is interactive. Non-interactive input without an injected prompter yields ErrNonInteractiveConfirmation.
func ResolveConfirmationPrompter(existing shared.ConfirmationPrompter, detector InteractivityDetector, input io.Reader, output io.Writer) (shared.ConfirmationPrompter, error) {
	if existing != nil {
		return existing, nil
	}
	if detector == nil {
		detector = prompt.IsInteractive
	}
	if !detector(input) {
		return nil, ErrNonInteractiveConfirmation
	}
	return prompt.NewIOConfirmationPrompter(input, output), nil
}
