package branches

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	gitExecutorNotConfiguredMessageConstant        = "git executor not configured"
	remoteNameRequiredMessageConstant              = "remote name required"
	listerNotConfiguredMessageConstant             = "branch lister not configured"
	classifierNotConfiguredMessageConstant         = "branch classifier not configured"
	writerNotConfiguredMessageConstant             = "artifact writer not configured"
	commitObjectSourceNotConfiguredMessageConstant = "commit object source not configured"
	timestampResolverNotConfiguredMessageConstant  = "timestamp resolver not configured"
	negativeThresholdMessageConstant               = "threshold days must not be negative"
	scanInterruptedTemplateConstant                = "scan interrupted after %d of %d branches: %w"
	artifactWriteFailedTemplateConstant            = "write artifacts: %w"

	analysisTitleConstant                 = "Branch Age Analysis"
	summaryTitleConstant                  = "Summary"
	currentTimeTemplateConstant           = "Current time: %s\n"
	cutoffTimeTemplateConstant            = "Cutoff time (%d %s ago): %s\n"
	daySingularConstant                   = "day"
	dayPluralConstant                     = "days"
	fetchingBranchesMessageConstant       = "Fetching branches...\n"
	foundBranchesTemplateConstant         = "Found %d branches\n"
	analyzingBranchesMessageConstant      = "Analyzing branches...\n"
	batchHeaderTemplateConstant           = "Processing branches %d-%d of %d...\n"
	protectedLineTemplateConstant         = "  [PROTECTED] %s\n"
	errorLineTemplateConstant             = "  [ERROR] %s - could not get commit date\n"
	oldLineTemplateConstant               = "  [OLD - %dd] %s\n"
	recentLineTemplateConstant            = "  [RECENT] %s\n"
	totalBranchesTemplateConstant         = "Total branches: %d\n"
	oldBranchesTemplateConstant           = "Old branches (>%d day): %d\n"
	recentBranchesTemplateConstant        = "Recent branches: %d\n"
	protectedBranchesTemplateConstant     = "Protected branches: %d\n"
	errorBranchesTemplateConstant         = "Errors: %d\n"
	scriptWrittenTemplateConstant         = "Deletion script written to: %s\n"
	reportWrittenTemplateConstant         = "Report written to: %s\n"
	summaryWrittenTemplateConstant        = "Scan summary written to: %s\n"
	nothingToDoMessageConstant            = "No old branches found!\n"
	blankLineConstant                     = "\n"
	bannerFormatConstant                  = "%s"
	remoteUnavailableLogMessageConstant   = "remote branch listing failed; continuing with no branches"
	timestampUnresolvedLogMessageConstant = "commit timestamp unresolved"
	scanCompletedLogMessageConstant       = "branch scan completed"
	logFieldBranchConstant                = "branch"
	logFieldCommitConstant                = "commit"
	logFieldTotalConstant                 = "total"
	logFieldOldConstant                   = "old"
	logFieldRecentConstant                = "recent"
	logFieldProtectedConstant             = "protected"
	logFieldErrorsConstant                = "errors"
	logFieldThresholdConstant             = "threshold_days"
)

var (
	// ErrGitExecutorNotConfigured indicates a git-backed component was built without an executor.
	ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)
	// ErrRemoteNameRequired indicates a blank remote name.
	ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)
	// ErrListerNotConfigured indicates the service was built without a branch lister.
	ErrListerNotConfigured = errors.New(listerNotConfiguredMessageConstant)
	// ErrClassifierNotConfigured indicates the service was built without a classifier.
	ErrClassifierNotConfigured = errors.New(classifierNotConfiguredMessageConstant)
	// ErrWriterNotConfigured indicates the service was built without an artifact writer.
	ErrWriterNotConfigured = errors.New(writerNotConfiguredMessageConstant)
	// ErrCommitObjectSourceNotConfigured indicates a resolver was built without a commit object source.
	ErrCommitObjectSourceNotConfigured = errors.New(commitObjectSourceNotConfiguredMessageConstant)
	// ErrTimestampResolverNotConfigured indicates a classifier was built without a resolver.
	ErrTimestampResolverNotConfigured = errors.New(timestampResolverNotConfiguredMessageConstant)
	// ErrNegativeThreshold indicates a threshold below zero days.
	ErrNegativeThreshold = errors.New(negativeThresholdMessageConstant)
)

// ScanOptions configures a single scan.
type ScanOptions struct {
	ThresholdDays int
	BatchSize     int
}

// ScanOutcome bundles the classifications of a run with the artifacts it produced.
type ScanOutcome struct {
	Result      ScanResult
	Artifacts   Artifacts
	Written     WriteOutcome
	SummaryPath string
}

// Service runs the listing, classification and artifact pipeline.
type Service struct {
	logger     *zap.Logger
	lister     BranchLister
	classifier *Classifier
	renderer   ArtifactRenderer
	writer     *ArtifactWriter
	reporter   Reporter
	clock      Clock
}

// NewService constructs a Service. A nil logger, reporter or clock is replaced by a no-op or system default.
func NewService(logger *zap.Logger, lister BranchLister, classifier *Classifier, renderer ArtifactRenderer, writer *ArtifactWriter, reporter Reporter, clock Clock) (*Service, error) {
	if lister == nil {
		return nil, ErrListerNotConfigured
	}
	if classifier == nil {
		return nil, ErrClassifierNotConfigured
	}
	if writer == nil {
		return nil, ErrWriterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if reporter == nil {
		reporter = NewWriterReporter(nil)
	}
	if clock == nil {
		clock = SystemClock{}
	}

	return &Service{
		logger:     logger,
		lister:     lister,
		classifier: classifier,
		renderer:   renderer,
		writer:     writer,
		reporter:   reporter,
		clock:      clock,
	}, nil
}

// Scan classifies every remote branch and writes the resulting artifacts. An
// unreachable remote yields an empty scan; only artifact write failures and
// cancellation of executionContext abort the run.
func (service *Service) Scan(executionContext context.Context, options ScanOptions) (ScanOutcome, error) {
	if options.ThresholdDays < 0 {
		return ScanOutcome{}, ErrNegativeThreshold
	}
	batchSize := options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	scan := NewScanResult(service.clock.Now(), options.ThresholdDays)
	service.printHeader(*scan)

	service.reporter.Printf(fetchingBranchesMessageConstant)
	branchReferences, listingError := service.lister.ListBranches(executionContext)
	if listingError != nil {
		service.logger.Warn(remoteUnavailableLogMessageConstant, zap.Error(listingError))
		branchReferences = nil
	}
	service.reporter.Printf(foundBranchesTemplateConstant, len(branchReferences))
	service.reporter.Printf(blankLineConstant)

	service.reporter.Printf(analyzingBranchesMessageConstant)
	service.reporter.Printf(blankLineConstant)

	branchCount := len(branchReferences)
	for batchStart := 0; batchStart < branchCount; batchStart += batchSize {
		batchEnd := min(batchStart+batchSize, branchCount)
		service.reporter.Printf(batchHeaderTemplateConstant, batchStart+1, batchEnd, branchCount)

		for index := batchStart; index < batchEnd; index++ {
			if contextError := executionContext.Err(); contextError != nil {
				return ScanOutcome{Result: *scan}, fmt.Errorf(scanInterruptedTemplateConstant, index, branchCount, contextError)
			}
			classification := service.classifier.Classify(executionContext, branchReferences[index], scan.Now, scan.Cutoff)
			scan.Append(classification)
			service.printClassification(classification)
		}
	}

	summary := scan.Summary()
	service.printSummary(*scan, summary)
	service.logger.Info(
		scanCompletedLogMessageConstant,
		zap.Int(logFieldTotalConstant, summary.Total),
		zap.Int(logFieldOldConstant, summary.Old),
		zap.Int(logFieldRecentConstant, summary.Recent),
		zap.Int(logFieldProtectedConstant, summary.Protected),
		zap.Int(logFieldErrorsConstant, summary.Errors),
		zap.Int(logFieldThresholdConstant, scan.ThresholdDays),
	)

	outcome := ScanOutcome{Result: *scan, Artifacts: service.renderer.Render(*scan)}
	summaryDocument, renderError := service.renderer.RenderSummary(*scan)
	if renderError != nil {
		return outcome, fmt.Errorf(artifactWriteFailedTemplateConstant, renderError)
	}

	written, writeError := service.writer.Write(outcome.Artifacts)
	if writeError != nil {
		return outcome, fmt.Errorf(artifactWriteFailedTemplateConstant, writeError)
	}
	summaryPath, summaryError := service.writer.WriteSummary(summaryDocument)
	if summaryError != nil {
		service.writer.Discard(written)
		return outcome, fmt.Errorf(artifactWriteFailedTemplateConstant, summaryError)
	}
	outcome.Written = written
	outcome.SummaryPath = summaryPath

	if outcome.Artifacts.NothingToDo {
		service.reporter.Printf(nothingToDoMessageConstant)
	} else {
		service.reporter.Printf(scriptWrittenTemplateConstant, written.ScriptPath)
		service.reporter.Printf(blankLineConstant)
		service.reporter.Printf(reportWrittenTemplateConstant, written.ReportPath)
		service.reporter.Printf(blankLineConstant)
	}
	if len(summaryPath) > 0 {
		service.reporter.Printf(summaryWrittenTemplateConstant, summaryPath)
	}

	return outcome, nil
}

func (service *Service) printHeader(scan ScanResult) {
	banner := Banner()
	service.reporter.Printf(bannerFormatConstant, banner)
	service.reporter.Printf(analysisTitleConstant + blankLineConstant)
	service.reporter.Printf(bannerFormatConstant, banner)
	service.reporter.Printf(blankLineConstant)
	service.reporter.Printf(currentTimeTemplateConstant, FormatTimestamp(scan.Now))
	service.reporter.Printf(cutoffTimeTemplateConstant, scan.ThresholdDays, pluralizeDays(scan.ThresholdDays), FormatTimestamp(scan.Cutoff))
	service.reporter.Printf(blankLineConstant)
}

func (service *Service) printClassification(classification Classification) {
	branchName := classification.Branch.Name
	switch classification.Disposition {
	case DispositionProtected:
		service.reporter.Printf(protectedLineTemplateConstant, branchName)
	case DispositionError:
		service.logger.Debug(
			timestampUnresolvedLogMessageConstant,
			zap.String(logFieldBranchConstant, branchName),
			zap.String(logFieldCommitConstant, classification.Branch.CommitID),
			zap.Error(classification.FailureReason),
		)
		service.reporter.Printf(errorLineTemplateConstant, branchName)
	case DispositionOld:
		service.reporter.Printf(oldLineTemplateConstant, classification.AgeDays, branchName)
	case DispositionRecent:
		service.reporter.Printf(recentLineTemplateConstant, branchName)
	}
}

func (service *Service) printSummary(scan ScanResult, summary ScanSummary) {
	banner := Banner()
	service.reporter.Printf(blankLineConstant)
	service.reporter.Printf(bannerFormatConstant, banner)
	service.reporter.Printf(summaryTitleConstant + blankLineConstant)
	service.reporter.Printf(bannerFormatConstant, banner)
	service.reporter.Printf(totalBranchesTemplateConstant, summary.Total)
	service.reporter.Printf(oldBranchesTemplateConstant, scan.ThresholdDays, summary.Old)
	service.reporter.Printf(recentBranchesTemplateConstant, summary.Recent)
	service.reporter.Printf(protectedBranchesTemplateConstant, summary.Protected)
	service.reporter.Printf(errorBranchesTemplateConstant, summary.Errors)
	service.reporter.Printf(blankLineConstant)
}

func pluralizeDays(days int) string {
	if days == 1 {
		return daySingularConstant
	}
	return dayPluralConstant
}
