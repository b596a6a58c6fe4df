package branches_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/stale-branches/internal/branches"
)

type serviceFixture struct {
	service    *branches.Service
	output     *bytes.Buffer
	fileSystem afero.Fs
	logs       *observer.ObservedLogs
	resolver   *stubResolver
}

func newServiceFixture(testInstance *testing.T, lister branches.BranchLister, paths branches.ArtifactPaths) serviceFixture {
	testInstance.Helper()

	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	resolver := &stubResolver{timestamps: standardTimestamps()}
	classifier, classifierError := branches.NewClassifier(branches.NewProtectedBranchSet(branches.DefaultProtectedBranchNames), resolver)
	require.NoError(testInstance, classifierError)

	fileSystem := afero.NewMemMapFs()
	output := &bytes.Buffer{}
	service, serviceError := branches.NewService(
		zap.New(observerCore),
		lister,
		classifier,
		branches.NewArtifactRenderer(testRemoteNameConstant),
		branches.NewArtifactWriter(fileSystem, paths),
		branches.NewWriterReporter(output),
		fixedClock{instant: testNow},
	)
	require.NoError(testInstance, serviceError)

	return serviceFixture{service: service, output: output, fileSystem: fileSystem, logs: observedLogs, resolver: resolver}
}

func TestServiceScanNarratesProgressAndWritesArtifacts(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, stubLister{references: standardReferences()}, branches.ArtifactPaths{})

	outcome, scanError := fixture.service.Scan(context.Background(), branches.ScanOptions{ThresholdDays: 1, BatchSize: 10})
	require.NoError(testInstance, scanError)

	expectedOutput := strings.Join([]string{
		bannerLine(),
		"Branch Age Analysis",
		bannerLine(),
		"",
		"Current time: 2024-01-10 00:00:00 UTC",
		"Cutoff time (1 day ago): 2024-01-09 00:00:00 UTC",
		"",
		"Fetching branches...",
		"Found 4 branches",
		"",
		"Analyzing branches...",
		"",
		"Processing branches 1-4 of 4...",
		"  [PROTECTED] main",
		"  [OLD - 2d] feature/old",
		"  [RECENT] feature/new",
		"  [ERROR] broken - could not get commit date",
		"",
		bannerLine(),
		"Summary",
		bannerLine(),
		"Total branches: 4",
		"Old branches (>1 day): 1",
		"Recent branches: 1",
		"Protected branches: 1",
		"Errors: 1",
		"",
		"Deletion script written to: delete-branches-batch.sh",
		"",
		"Report written to: old-branches-report.txt",
		"",
	}, "\n") + "\n"
	require.Equal(testInstance, expectedOutput, fixture.output.String())

	require.Equal(testInstance, branches.ScanSummary{Total: 4, Old: 1, Recent: 1, Protected: 1, Errors: 1}, outcome.Result.Summary())
	require.Equal(testInstance, "delete-branches-batch.sh", outcome.Written.ScriptPath)
	require.Empty(testInstance, outcome.SummaryPath)

	script, readError := afero.ReadFile(fixture.fileSystem, outcome.Written.ScriptPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, outcome.Artifacts.Script, string(script))
	require.Contains(testInstance, string(script), "--delete 'feature/old'")
	require.NotContains(testInstance, string(script), "'main'")

	require.NotContains(testInstance, fixture.resolver.requestedCommits(), testProtectedCommitConstant)

	unresolvedEntries := fixture.logs.FilterMessage("commit timestamp unresolved").All()
	require.Len(testInstance, unresolvedEntries, 1)
	require.Equal(testInstance, zapcore.DebugLevel, unresolvedEntries[0].Level)
	require.Equal(testInstance, "broken", unresolvedEntries[0].ContextMap()["branch"])
}

func TestServiceScanAnnouncesBatches(testInstance *testing.T) {
	references := make([]branches.BranchReference, 0, 5)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		references = append(references, branches.BranchReference{Name: name, CommitID: testRecentCommitConstant})
	}
	fixture := newServiceFixture(testInstance, stubLister{references: references}, branches.ArtifactPaths{})

	_, scanError := fixture.service.Scan(context.Background(), branches.ScanOptions{ThresholdDays: 1, BatchSize: 2})
	require.NoError(testInstance, scanError)

	output := fixture.output.String()
	require.Contains(testInstance, output, "Processing branches 1-2 of 5...\n  [RECENT] a\n  [RECENT] b\n")
	require.Contains(testInstance, output, "Processing branches 3-4 of 5...\n")
	require.Contains(testInstance, output, "Processing branches 5-5 of 5...\n  [RECENT] e\n")
	require.True(testInstance, strings.HasSuffix(output, "No old branches found!\n"))
}

func TestServiceScanWithoutOldBranchesWritesNothing(testInstance *testing.T) {
	references := []branches.BranchReference{
		{Name: "main", CommitID: testProtectedCommitConstant},
		{Name: "feature/new", CommitID: testRecentCommitConstant},
	}
	fixture := newServiceFixture(testInstance, stubLister{references: references}, branches.ArtifactPaths{OutputDirectory: "reports"})

	outcome, scanError := fixture.service.Scan(context.Background(), branches.ScanOptions{ThresholdDays: 1})
	require.NoError(testInstance, scanError)
	require.True(testInstance, outcome.Artifacts.NothingToDo)
	require.Equal(testInstance, branches.WriteOutcome{}, outcome.Written)
	require.Contains(testInstance, fixture.output.String(), "No old branches found!\n")

	directoryExists, existsError := afero.DirExists(fixture.fileSystem, "reports")
	require.NoError(testInstance, existsError)
	require.False(testInstance, directoryExists)
}

func TestServiceScanContinuesWhenRemoteUnavailable(testInstance *testing.T) {
	listingFailure := errors.Join(branches.ErrRemoteUnavailable, errors.New("could not resolve host"))
	fixture := newServiceFixture(testInstance, stubLister{references: []branches.BranchReference{}, err: listingFailure}, branches.ArtifactPaths{})

	outcome, scanError := fixture.service.Scan(context.Background(), branches.ScanOptions{ThresholdDays: 1})
	require.NoError(testInstance, scanError)
	require.Equal(testInstance, 0, outcome.Result.Summary().Total)
	require.Contains(testInstance, fixture.output.String(), "Found 0 branches\n")
	require.Contains(testInstance, fixture.output.String(), "No old branches found!\n")

	warnings := fixture.logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(testInstance, warnings, 1)
	require.Equal(testInstance, "remote branch listing failed; continuing with no branches", warnings[0].Message)
}

func TestServiceScanWritesSummaryWhenConfigured(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, stubLister{references: standardReferences()}, branches.ArtifactPaths{OutputDirectory: "reports", SummaryFile: "scan.yaml"})

	outcome, scanError := fixture.service.Scan(context.Background(), branches.ScanOptions{ThresholdDays: 1})
	require.NoError(testInstance, scanError)
	require.Equal(testInstance, "reports/scan.yaml", outcome.SummaryPath)
	require.Contains(testInstance, fixture.output.String(), "Scan summary written to: reports/scan.yaml\n")

	summary, readError := afero.ReadFile(fixture.fileSystem, outcome.SummaryPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(summary), "name: feature/old")
}

func TestServiceScanWritesOnlySummaryWhenNothingToDo(testInstance *testing.T) {
	references := []branches.BranchReference{{Name: "feature/new", CommitID: testRecentCommitConstant}}
	fixture := newServiceFixture(testInstance, stubLister{references: references}, branches.ArtifactPaths{OutputDirectory: "reports", SummaryFile: "scan.yaml"})

	outcome, scanError := fixture.service.Scan(context.Background(), branches.ScanOptions{ThresholdDays: 1})
	require.NoError(testInstance, scanError)
	require.True(testInstance, outcome.Artifacts.NothingToDo)
	require.Equal(testInstance, "reports/scan.yaml", outcome.SummaryPath)

	files, readDirError := afero.ReadDir(fixture.fileSystem, "reports")
	require.NoError(testInstance, readDirError)
	require.Len(testInstance, files, 1)
	require.Equal(testInstance, "scan.yaml", files[0].Name())
}

func TestServiceScanDiscardsArtifactsWhenSummaryFails(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, stubLister{references: standardReferences()}, branches.ArtifactPaths{OutputDirectory: "reports", SummaryFile: "scan.yaml"})
	require.NoError(testInstance, fixture.fileSystem.MkdirAll("reports/scan.yaml", 0o755))

	_, scanError := fixture.service.Scan(context.Background(), branches.ScanOptions{ThresholdDays: 1})
	require.ErrorContains(testInstance, scanError, "write artifacts")
	require.NotContains(testInstance, fixture.output.String(), "Deletion script written to")

	for _, path := range []string{"reports/delete-branches-batch.sh", "reports/old-branches-report.txt"} {
		exists, existsError := afero.Exists(fixture.fileSystem, path)
		require.NoError(testInstance, existsError)
		require.False(testInstance, exists, path)
	}
}

func TestServiceScanStopsWhenCancelled(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, stubLister{references: standardReferences()}, branches.ArtifactPaths{})

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, scanError := fixture.service.Scan(cancelledContext, branches.ScanOptions{ThresholdDays: 1})
	require.ErrorIs(testInstance, scanError, context.Canceled)
	require.Empty(testInstance, fixture.resolver.requestedCommits())

	files, readDirError := afero.ReadDir(fixture.fileSystem, ".")
	require.NoError(testInstance, readDirError)
	require.Empty(testInstance, files)
}

func TestServiceScanRejectsNegativeThreshold(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, stubLister{}, branches.ArtifactPaths{})

	_, scanError := fixture.service.Scan(context.Background(), branches.ScanOptions{ThresholdDays: -1})
	require.ErrorIs(testInstance, scanError, branches.ErrNegativeThreshold)
	require.Empty(testInstance, fixture.output.String())
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	classifier, classifierError := branches.NewClassifier(branches.NewProtectedBranchSet(nil), &stubResolver{})
	require.NoError(testInstance, classifierError)
	writer := branches.NewArtifactWriter(afero.NewMemMapFs(), branches.ArtifactPaths{})
	renderer := branches.NewArtifactRenderer(testRemoteNameConstant)

	_, listerError := branches.NewService(nil, nil, classifier, renderer, writer, nil, nil)
	require.ErrorIs(testInstance, listerError, branches.ErrListerNotConfigured)

	_, classifierMissingError := branches.NewService(nil, stubLister{}, nil, renderer, writer, nil, nil)
	require.ErrorIs(testInstance, classifierMissingError, branches.ErrClassifierNotConfigured)

	_, writerError := branches.NewService(nil, stubLister{}, classifier, renderer, nil, nil, nil)
	require.ErrorIs(testInstance, writerError, branches.ErrWriterNotConfigured)
}
