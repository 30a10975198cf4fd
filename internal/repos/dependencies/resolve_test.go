package dependencies_test

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghpush/internal/repos/dependencies"
	"github.com/temirov/ghpush/internal/repos/filesystem"
)

type stubPrompter struct{}

func (stubPrompter) Confirm(string) (bool, error) { return true, nil }

func TestResolveConfirmationPrompter(testInstance *testing.T) {
	testCases := []struct {
		name          string
		existing      bool
		interactive   bool
		expectedError error
	}{
		{name: "injected_prompter_wins", existing: true},
		{name: "interactive_terminal", interactive: true},
		{name: "non_interactive_refuses", interactive: false, expectedError: dependencies.ErrNonInteractiveConfirmation},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			detector := func(io.Reader) bool { return testCase.interactive }

			var existing stubPrompter
			var prompterError error
			var confirmed bool
			if testCase.existing {
				prompter, resolveError := dependencies.ResolveConfirmationPrompter(existing, detector, strings.NewReader(""), &output)
				require.NoError(testInstance, resolveError)
				confirmed, prompterError = prompter.Confirm("continue? ")
				require.NoError(testInstance, prompterError)
				require.True(testInstance, confirmed)
				require.Empty(testInstance, output.String())
				return
			}

			prompter, resolveError := dependencies.ResolveConfirmationPrompter(nil, detector, strings.NewReader("yes\n"), &output)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				require.Nil(testInstance, prompter)
				return
			}
			require.NoError(testInstance, resolveError)
			confirmed, prompterError = prompter.Confirm("continue? ")
			require.NoError(testInstance, prompterError)
			require.True(testInstance, confirmed)
			require.Equal(testInstance, "continue? ", output.String())
		})
	}
}

func TestResolveDefaults(testInstance *testing.T) {
	require.Equal(testInstance, filesystem.OSFileSystem{}, dependencies.ResolveFileSystem(nil))

	customClient := &http.Client{}
	require.Same(testInstance, customClient, dependencies.ResolveHTTPClient(customClient))
	require.NotNil(testInstance, dependencies.ResolveHTTPClient(nil))
}
