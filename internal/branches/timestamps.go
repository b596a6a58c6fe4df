package branches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/stale-branches/internal/execshell"
)

const (
	timestampUnresolvableMessageConstant = "commit timestamp unresolvable"
	timestampFailureTemplateConstant     = "%w: %s: %w"
	emptyTimestampOutputMessageConstant  = "empty commit date output"
	timestampParseErrorTemplateConstant  = "parse commit date %q: %w"
	gitFetchSubcommandConstant           = "fetch"
	gitShallowDepthFlagConstant          = "--depth=1"
	gitLogSubcommandConstant             = "log"
	gitSingleCommitFlagConstant          = "-1"
	gitCommitterDateFormatFlagConstant   = "--format=%cI"
	// DefaultFetchTimeout bounds the shallow fetch of a single commit.
	DefaultFetchTimeout = 10 * time.Second
	// DefaultReadTimeout bounds reading a commit date.
	DefaultReadTimeout = 5 * time.Second
)

// ErrTimestampUnresolvable indicates a commit date could not be obtained for a branch head.
var ErrTimestampUnresolvable = errors.New(timestampUnresolvableMessageConstant)

var errEmptyTimestampOutput = errors.New(emptyTimestampOutputMessageConstant)

// TimestampResolution is either a resolved UTC commit time or the reason resolution failed.
type TimestampResolution struct {
	commitTime time.Time
	failure    error
}

// ResolvedTimestamp builds a successful resolution.
func ResolvedTimestamp(commitTime time.Time) TimestampResolution {
	return TimestampResolution{commitTime: commitTime.UTC()}
}

// UnresolvedTimestamp builds a failed resolution wrapping ErrTimestampUnresolvable.
func UnresolvedTimestamp(commitID string, reason error) TimestampResolution {
	if reason == nil {
		reason = errEmptyTimestampOutput
	}
	return TimestampResolution{failure: fmt.Errorf(timestampFailureTemplateConstant, ErrTimestampUnresolvable, commitID, reason)}
}

// Timestamp returns the commit time and true when resolution succeeded.
func (resolution TimestampResolution) Timestamp() (time.Time, bool) {
	if resolution.failure != nil {
		return time.Time{}, false
	}
	return resolution.commitTime, true
}

// Failure returns the resolution error, or nil on success.
func (resolution TimestampResolution) Failure() error {
	return resolution.failure
}

// CommitObjectSource provides access to commit objects by id. FetchShallow makes
// a single commit available locally without its ancestry; ReadTimestamp returns
// the committer date.
type CommitObjectSource interface {
	FetchShallow(executionContext context.Context, commitID string) error
	ReadTimestamp(executionContext context.Context, commitID string) (time.Time, error)
}

// TimestampResolver resolves a commit id to its commit time.
type TimestampResolver interface {
	Resolve(executionContext context.Context, commitID string) TimestampResolution
}

// CommitTimestampResolver performs a bounded best-effort shallow fetch followed
// by a bounded timestamp read. It never retries.
type CommitTimestampResolver struct {
	source       CommitObjectSource
	fetchEnabled bool
	fetchTimeout time.Duration
	readTimeout  time.Duration
}

// ResolverOptions configures CommitTimestampResolver.
type ResolverOptions struct {
	FetchEnabled bool
	FetchTimeout time.Duration
	ReadTimeout  time.Duration
}

// NewCommitTimestampResolver constructs a resolver. Non-positive timeouts fall back to the defaults.
func NewCommitTimestampResolver(source CommitObjectSource, options ResolverOptions) (*CommitTimestampResolver, error) {
	if source == nil {
		return nil, ErrCommitObjectSourceNotConfigured
	}

	fetchTimeout := options.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	readTimeout := options.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	return &CommitTimestampResolver{
		source:       source,
		fetchEnabled: options.FetchEnabled,
		fetchTimeout: fetchTimeout,
		readTimeout:  readTimeout,
	}, nil
}

// Resolve returns the commit time of commitID. Fetch failures are ignored since the
// object may already be present; read failures and timeouts produce an unresolved result.
func (resolver *CommitTimestampResolver) Resolve(executionContext context.Context, commitID string) TimestampResolution {
	if resolver.fetchEnabled {
		fetchContext, cancelFetch := context.WithTimeout(executionContext, resolver.fetchTimeout)
		_ = resolver.source.FetchShallow(fetchContext, commitID)
		cancelFetch()
	}

	readContext, cancelRead := context.WithTimeout(executionContext, resolver.readTimeout)
	defer cancelRead()

	commitTime, readError := resolver.source.ReadTimestamp(readContext, commitID)
	if readError != nil {
		return UnresolvedTimestamp(commitID, readError)
	}
	return ResolvedTimestamp(commitTime)
}

// GitCommitObjectSource implements CommitObjectSource with the git binary.
type GitCommitObjectSource struct {
	executor         GitExecutor
	remoteName       string
	workingDirectory string
}

// NewGitCommitObjectSource constructs a git-backed commit object source.
func NewGitCommitObjectSource(executor GitExecutor, remoteName string, workingDirectory string) (*GitCommitObjectSource, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		return nil, ErrRemoteNameRequired
	}
	return &GitCommitObjectSource{executor: executor, remoteName: trimmedRemoteName, workingDirectory: workingDirectory}, nil
}

// FetchShallow runs git fetch --depth=1 for the single commit.
func (source *GitCommitObjectSource) FetchShallow(executionContext context.Context, commitID string) error {
	_, executionError := source.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitFetchSubcommandConstant, gitShallowDepthFlagConstant, source.remoteName, commitID},
		WorkingDirectory:     source.workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentConstant: gitTerminalPromptDisabledConstant},
	})
	return executionError
}

// ReadTimestamp reads the strict ISO 8601 committer date of the commit.
func (source *GitCommitObjectSource) ReadTimestamp(executionContext context.Context, commitID string) (time.Time, error) {
	executionResult, executionError := source.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitSingleCommitFlagConstant, gitCommitterDateFormatFlagConstant, commitID},
		WorkingDirectory: source.workingDirectory,
	})
	if executionError != nil {
		return time.Time{}, executionError
	}
	return ParseCommitTimestamp(executionResult.StandardOutput)
}

// ParseCommitTimestamp parses an ISO 8601 date with offset, as printed by %cI, into UTC.
func ParseCommitTimestamp(rawValue string) (time.Time, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return time.Time{}, errEmptyTimestampOutput
	}

	parsedTime, parseError := time.Parse(time.RFC3339, trimmedValue)
	if parseError != nil {
		return time.Time{}, fmt.Errorf(timestampParseErrorTemplateConstant, trimmedValue, parseError)
	}
	return parsedTime.UTC(), nil
}
