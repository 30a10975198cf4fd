package tests

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationCommandTimeout        = 2 * time.Minute
	integrationOwnerResponseConstant = `{"login":"octocat"}`
)

func repositoryRoot(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(workingDirectory)
}

// runIntegrationCommand executes the CLI through "go run ." and returns combined output.
func runIntegrationCommand(testInstance *testing.T, environment []string, arguments ...string) (string, error) {
	testInstance.Helper()
	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", append([]string{"run", "."}, arguments...)...)
	command.Dir = repositoryRoot(testInstance)
	command.Env = append(append([]string{}, os.Environ()...), environment...)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func filterStructuredOutput(rawOutput string) string {
	lines := strings.Split(rawOutput, "\n")
	var filtered []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "{") {
			continue
		}
		filtered = append(filtered, line)
	}
	if len(filtered) == 0 {
		return ""
	}
	return strings.Join(filtered, "\n") + "\n"
}

type contentsServer struct {
	server       *httptest.Server
	mutex        sync.Mutex
	writtenPaths []string
}

func newContentsServer(testInstance *testing.T) *contentsServer {
	testInstance.Helper()
	fake := &contentsServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(responseWriter http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(responseWriter, integrationOwnerResponseConstant)
	})
	mux.HandleFunc("/repos/octocat/", func(responseWriter http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPut {
			responseWriter.WriteHeader(http.StatusNotFound)
			return
		}
		fake.mutex.Lock()
		fake.writtenPaths = append(fake.writtenPaths, request.URL.Path)
		fake.mutex.Unlock()
		responseWriter.WriteHeader(http.StatusCreated)
	})
	fake.server = httptest.NewServer(mux)
	testInstance.Cleanup(fake.server.Close)
	return fake
}

func (fake *contentsServer) paths() []string {
	fake.mutex.Lock()
	defer fake.mutex.Unlock()
	return append([]string{}, fake.writtenPaths...)
}
