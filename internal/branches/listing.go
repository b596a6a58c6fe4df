package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/stale-branches/internal/execshell"
)

const (
	remoteUnavailableMessageConstant     = "remote unavailable"
	remoteListingErrorTemplateConstant   = "%w: listing branches on %s: %w"
	gitLSRemoteSubcommandConstant        = "ls-remote"
	gitHeadsFlagConstant                 = "--heads"
	gitTerminalPromptEnvironmentConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant    = "0"
	remoteListingFieldSeparatorConstant  = "\t"
	remoteListingLineSeparatorConstant   = "\n"
	// BranchReferencePrefix is the ref namespace stripped from listed branch names.
	BranchReferencePrefix = "refs/heads/"
)

// ErrRemoteUnavailable indicates the remote could not be listed because of transport or authentication failure.
var ErrRemoteUnavailable = errors.New(remoteUnavailableMessageConstant)

// GitExecutor exposes the subset of shell execution used by branch analysis.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// BranchLister enumerates the branches currently present on a remote.
type BranchLister interface {
	ListBranches(executionContext context.Context) ([]BranchReference, error)
}

// GitRemoteLister lists remote heads through git ls-remote.
type GitRemoteLister struct {
	executor         GitExecutor
	remoteName       string
	workingDirectory string
}

// NewGitRemoteLister constructs a lister for remoteName, running git inside workingDirectory.
func NewGitRemoteLister(executor GitExecutor, remoteName string, workingDirectory string) (*GitRemoteLister, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return nil, ErrRemoteNameRequired
	}
	return &GitRemoteLister{executor: executor, remoteName: trimmedRemoteName, workingDirectory: workingDirectory}, nil
}

// ListBranches returns the remote heads in listing order. On failure it returns an
// empty slice together with an error wrapping ErrRemoteUnavailable.
func (lister *GitRemoteLister) ListBranches(executionContext context.Context) ([]BranchReference, error) {
	executionResult, executionError := lister.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitLSRemoteSubcommandConstant, gitHeadsFlagConstant, lister.remoteName},
		WorkingDirectory:     lister.workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentConstant: gitTerminalPromptDisabledConstant},
	})
	if executionError != nil {
		return []BranchReference{}, fmt.Errorf(remoteListingErrorTemplateConstant, ErrRemoteUnavailable, lister.remoteName, executionError)
	}

	return ParseRemoteHeads(executionResult.StandardOutput), nil
}

// ParseRemoteHeads converts "<commitId>\t<refPath>" lines into branch references.
// Blank or malformed lines are skipped and a repeated branch name keeps its first entry.
func ParseRemoteHeads(listing string) []BranchReference {
	references := []BranchReference{}
	seenNames := map[string]struct{}{}

	for _, rawLine := range strings.Split(listing, remoteListingLineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(rawLine)
		if len(trimmedLine) == 0 {
			continue
		}

		commitID, referencePath, separatorFound := strings.Cut(trimmedLine, remoteListingFieldSeparatorConstant)
		if !separatorFound {
			continue
		}

		commitID = strings.TrimSpace(commitID)
		branchName := strings.TrimPrefix(strings.TrimSpace(referencePath), BranchReferencePrefix)
		if len(commitID) == 0 || len(branchName) == 0 {
			continue
		}

		if _, duplicate := seenNames[branchName]; duplicate {
			continue
		}
		seenNames[branchName] = struct{}{}

		references = append(references, BranchReference{Name: branchName, CommitID: commitID})
	}

	return references
}
