package branches_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/temirov/stale-branches/internal/branches"
	"github.com/temirov/stale-branches/internal/execshell"
)

const (
	testRemoteNameConstant      = "origin"
	testOldCommitConstant       = "1111111111111111111111111111111111111111"
	testRecentCommitConstant    = "2222222222222222222222222222222222222222"
	testProtectedCommitConstant = "3333333333333333333333333333333333333333"
	testBrokenCommitConstant    = "4444444444444444444444444444444444444444"
	testOlderCommitConstant     = "5555555555555555555555555555555555555555"
)

var testNow = time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type scriptedGitExecutor struct {
	mutex       sync.Mutex
	responses   map[string]scriptedResponse
	invocations []execshell.CommandDetails
}

func newScriptedGitExecutor(responses map[string]scriptedResponse) *scriptedGitExecutor {
	return &scriptedGitExecutor{responses: responses}
}

func (executor *scriptedGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	executor.invocations = append(executor.invocations, details)
	key := strings.Join(details.Arguments, " ")
	if response, found := executor.responses[key]; found {
		return response.result, response.err
	}
	return execshell.ExecutionResult{}, fmt.Errorf("unexpected git command: %s", key)
}

func (executor *scriptedGitExecutor) commandLines() []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	lines := make([]string, 0, len(executor.invocations))
	for _, invocation := range executor.invocations {
		lines = append(lines, strings.Join(invocation.Arguments, " "))
	}
	return lines
}

type stubLister struct {
	references []branches.BranchReference
	err        error
}

func (lister stubLister) ListBranches(context.Context) ([]branches.BranchReference, error) {
	return lister.references, lister.err
}

type stubResolver struct {
	mutex      sync.Mutex
	timestamps map[string]time.Time
	requested  []string
}

func (resolver *stubResolver) Resolve(_ context.Context, commitID string) branches.TimestampResolution {
	resolver.mutex.Lock()
	defer resolver.mutex.Unlock()

	resolver.requested = append(resolver.requested, commitID)
	if commitTime, found := resolver.timestamps[commitID]; found {
		return branches.ResolvedTimestamp(commitTime)
	}
	return branches.UnresolvedTimestamp(commitID, fmt.Errorf("bad object %s", commitID))
}

func (resolver *stubResolver) requestedCommits() []string {
	resolver.mutex.Lock()
	defer resolver.mutex.Unlock()
	return append([]string(nil), resolver.requested...)
}

func standardTimestamps() map[string]time.Time {
	return map[string]time.Time{
		testOldCommitConstant:       time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC),
		testRecentCommitConstant:    time.Date(2024, time.January, 9, 12, 0, 0, 0, time.UTC),
		testProtectedCommitConstant: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		testOlderCommitConstant:     time.Date(2023, time.December, 1, 8, 30, 0, 0, time.UTC),
	}
}

func standardReferences() []branches.BranchReference {
	return []branches.BranchReference{
		{Name: "main", CommitID: testProtectedCommitConstant},
		{Name: "feature/old", CommitID: testOldCommitConstant},
		{Name: "feature/new", CommitID: testRecentCommitConstant},
		{Name: "broken", CommitID: testBrokenCommitConstant},
	}
}

func bannerLine() string {
	return strings.Repeat("=", 80)
}
