package branches

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/stale-branches/internal/execshell"
)

const (
	unsupportedBackendTemplateConstant = "backend %q is not available"
)

// BackendSettings carries the inputs every backend needs to reach a repository.
type BackendSettings struct {
	RemoteName     string
	RepositoryPath string
	Logger         *zap.Logger
	GitExecutor    GitExecutor
}

// Backend pairs a branch lister with the commit object source for the same remote.
type Backend struct {
	Lister BranchLister
	Source CommitObjectSource
}

// BackendFactory builds a Backend for the supplied settings.
type BackendFactory func(settings BackendSettings) (Backend, error)

// NewGitBackend builds a Backend that shells out to the git executable.
func NewGitBackend(settings BackendSettings) (Backend, error) {
	lister, listerError := NewGitRemoteLister(settings.GitExecutor, settings.RemoteName, settings.RepositoryPath)
	if listerError != nil {
		return Backend{}, listerError
	}
	source, sourceError := NewGitCommitObjectSource(settings.GitExecutor, settings.RemoteName, settings.RepositoryPath)
	if sourceError != nil {
		return Backend{}, sourceError
	}
	return Backend{Lister: lister, Source: source}, nil
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing GitExecutor, logger *zap.Logger, observers ...execshell.CommandEventObserver) (GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	activeObservers := make([]execshell.CommandEventObserver, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			activeObservers = append(activeObservers, observer)
		}
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), activeObservers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveFileSystem returns the provided filesystem or the OS filesystem.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveBackendFactory selects the factory registered for backendName. The git
// executable backend is always available.
func ResolveBackendFactory(backendName string, registered map[string]BackendFactory) (BackendFactory, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(backendName))
	if factory, exists := registered[normalizedName]; exists && factory != nil {
		return factory, nil
	}
	if normalizedName == BackendCLI || len(normalizedName) == 0 {
		return NewGitBackend, nil
	}
	return nil, fmt.Errorf(unsupportedBackendTemplateConstant, backendName)
}
