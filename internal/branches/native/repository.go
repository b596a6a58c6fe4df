package native

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/temirov/stale-branches/internal/branches"
)

const (
	repositoryOpenErrorTemplateConstant   = "open repository %s: %w"
	remoteListingErrorTemplateConstant    = "%w: listing branches on %s: %w"
	commitLookupErrorTemplateConstant     = "read commit %s: %w"
	invalidCommitIDTemplateConstant       = "invalid commit id %q"
	branchFetchRefSpecTemplateConstant    = "+refs/heads/%s:refs/remotes/%s/%s"
	commitFetchRefSpecTemplateConstant    = "%s:%s"
	commitFetchReferenceTemplateConstant  = "refs/remotes/%s/stale-branches-fetch-%s"
	shallowFetchDepthConstant             = 1
	commitIDLengthConstant                = 40
	repositoryPathRequiredMessageConstant = "repository path required"
)

// ErrRepositoryPathRequired indicates a blank repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// Repository lists remote branches and reads commit objects through go-git, so no
// git executable is required. It satisfies both branches.BranchLister and
// branches.CommitObjectSource.
type Repository struct {
	repository *git.Repository
	remoteName string

	mutex            sync.Mutex
	branchesByCommit map[string]string
}

// Open opens the clone at repositoryPath, searching parent directories for the .git entry.
func Open(repositoryPath string, remoteName string) (*Repository, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return nil, branches.ErrRemoteNameRequired
	}

	repository, openError := git.PlainOpenWithOptions(trimmedPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(repositoryOpenErrorTemplateConstant, trimmedPath, openError)
	}

	return &Repository{repository: repository, remoteName: trimmedRemoteName, branchesByCommit: map[string]string{}}, nil
}

// NewBackend adapts Open to branches.BackendFactory.
func NewBackend(settings branches.BackendSettings) (branches.Backend, error) {
	repository, openError := Open(settings.RepositoryPath, settings.RemoteName)
	if openError != nil {
		return branches.Backend{}, openError
	}
	return branches.Backend{Lister: repository, Source: repository}, nil
}

// ListBranches queries the remote for its heads. References are returned in
// ref-name order, matching git ls-remote. Failures produce an empty slice and an
// error wrapping branches.ErrRemoteUnavailable.
func (repository *Repository) ListBranches(executionContext context.Context) ([]branches.BranchReference, error) {
	remote, remoteError := repository.repository.Remote(repository.remoteName)
	if remoteError != nil {
		return []branches.BranchReference{}, fmt.Errorf(remoteListingErrorTemplateConstant, branches.ErrRemoteUnavailable, repository.remoteName, remoteError)
	}

	advertised, listError := remote.ListContext(executionContext, &git.ListOptions{})
	if listError != nil {
		return []branches.BranchReference{}, fmt.Errorf(remoteListingErrorTemplateConstant, branches.ErrRemoteUnavailable, repository.remoteName, listError)
	}

	headReferences := make([]*plumbing.Reference, 0, len(advertised))
	for _, reference := range advertised {
		if reference.Type() != plumbing.HashReference || !reference.Name().IsBranch() {
			continue
		}
		headReferences = append(headReferences, reference)
	}
	sort.SliceStable(headReferences, func(leftIndex int, rightIndex int) bool {
		return headReferences[leftIndex].Name().String() < headReferences[rightIndex].Name().String()
	})

	references := make([]branches.BranchReference, 0, len(headReferences))
	seenNames := make(map[string]struct{}, len(headReferences))
	for _, reference := range headReferences {
		branchName := strings.TrimPrefix(reference.Name().String(), branches.BranchReferencePrefix)
		if _, duplicate := seenNames[branchName]; duplicate {
			continue
		}
		seenNames[branchName] = struct{}{}
		references = append(references, branches.BranchReference{Name: branchName, CommitID: reference.Hash().String()})
	}
	repository.rememberBranches(references)

	return references, nil
}

// FetchShallow fetches the commit at depth one. Commits seen by ListBranches
// are fetched through their branch into refs/remotes/<remote>/<branch>, which
// any server accepts. Other commits need a server that allows fetching by id;
// the temporary ref created for them is removed afterwards. An already present
// object is not an error.
func (repository *Repository) FetchShallow(executionContext context.Context, commitID string) error {
	if !isCommitID(commitID) {
		return fmt.Errorf(invalidCommitIDTemplateConstant, commitID)
	}

	refSpec, temporaryReference := repository.fetchRefSpec(commitID)
	fetchError := repository.repository.FetchContext(executionContext, &git.FetchOptions{
		RemoteName: repository.remoteName,
		RefSpecs:   []config.RefSpec{refSpec},
		Depth:      shallowFetchDepthConstant,
	})
	if len(temporaryReference) > 0 {
		_ = repository.repository.Storer.RemoveReference(temporaryReference)
	}
	if errors.Is(fetchError, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return fetchError
}

func (repository *Repository) rememberBranches(references []branches.BranchReference) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	for _, reference := range references {
		if _, known := repository.branchesByCommit[reference.CommitID]; !known {
			repository.branchesByCommit[reference.CommitID] = reference.Name
		}
	}
}

func (repository *Repository) fetchRefSpec(commitID string) (config.RefSpec, plumbing.ReferenceName) {
	repository.mutex.Lock()
	branchName, known := repository.branchesByCommit[commitID]
	repository.mutex.Unlock()

	if known {
		return config.RefSpec(fmt.Sprintf(branchFetchRefSpecTemplateConstant, branchName, repository.remoteName, branchName)), ""
	}
	temporaryReference := plumbing.ReferenceName(fmt.Sprintf(commitFetchReferenceTemplateConstant, repository.remoteName, commitID))
	return config.RefSpec(fmt.Sprintf(commitFetchRefSpecTemplateConstant, commitID, temporaryReference)), temporaryReference
}

// ReadTimestamp returns the committer date of the commit in UTC.
func (repository *Repository) ReadTimestamp(executionContext context.Context, commitID string) (time.Time, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return time.Time{}, contextError
	}
	if !isCommitID(commitID) {
		return time.Time{}, fmt.Errorf(invalidCommitIDTemplateConstant, commitID)
	}

	commit, lookupError := repository.repository.CommitObject(plumbing.NewHash(commitID))
	if lookupError != nil {
		return time.Time{}, fmt.Errorf(commitLookupErrorTemplateConstant, commitID, lookupError)
	}
	return commit.Committer.When.UTC(), nil
}

func isCommitID(candidate string) bool {
	if len(candidate) != commitIDLengthConstant {
		return false
	}
	for _, character := range candidate {
		isDigit := character >= '0' && character <= '9'
		isHexLetter := character >= 'a' && character <= 'f'
		if !isDigit && !isHexLetter {
			return false
		}
	}
	return true
}
