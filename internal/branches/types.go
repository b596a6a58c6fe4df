package branches

import (
	"time"
)

const (
	hoursPerDayConstant = 24
)

// Disposition is the bucket a branch lands in after classification.
type Disposition string

// Supported dispositions.
const (
	DispositionProtected Disposition = "protected"
	DispositionRecent    Disposition = "recent"
	DispositionOld       Disposition = "old"
	DispositionError     Disposition = "error"
)

// BranchReference pairs a remote branch name with the commit its head points to.
type BranchReference struct {
	Name     string
	CommitID string
}

// Classification records the outcome for one branch. CommitTime and AgeDays are
// only meaningful for DispositionOld and DispositionRecent.
type Classification struct {
	Branch        BranchReference
	Disposition   Disposition
	CommitTime    time.Time
	AgeDays       int
	FailureReason error
}

// HasCommitTime reports whether the classification carries a resolved timestamp.
func (classification Classification) HasCommitTime() bool {
	return classification.Disposition == DispositionOld || classification.Disposition == DispositionRecent
}

// ScanResult is the ordered collection of classifications of a single run.
type ScanResult struct {
	Now             time.Time
	Cutoff          time.Time
	ThresholdDays   int
	Classifications []Classification
}

// ScanSummary counts classifications per disposition.
type ScanSummary struct {
	Total     int `yaml:"total"`
	Old       int `yaml:"old"`
	Recent    int `yaml:"recent"`
	Protected int `yaml:"protected"`
	Errors    int `yaml:"errors"`
}

// NewScanResult starts an empty scan anchored at now.
func NewScanResult(now time.Time, thresholdDays int) *ScanResult {
	normalizedNow := now.UTC()
	return &ScanResult{
		Now:           normalizedNow,
		Cutoff:        CutoffFor(normalizedNow, thresholdDays),
		ThresholdDays: thresholdDays,
	}
}

// Append records a classification in listing order.
func (result *ScanResult) Append(classification Classification) {
	result.Classifications = append(result.Classifications, classification)
}

// Bucket returns the classifications with the requested disposition in listing order.
func (result ScanResult) Bucket(disposition Disposition) []Classification {
	bucket := make([]Classification, 0, len(result.Classifications))
	for _, classification := range result.Classifications {
		if classification.Disposition == disposition {
			bucket = append(bucket, classification)
		}
	}
	return bucket
}

// Summary counts every disposition.
func (result ScanResult) Summary() ScanSummary {
	summary := ScanSummary{Total: len(result.Classifications)}
	for _, classification := range result.Classifications {
		switch classification.Disposition {
		case DispositionOld:
			summary.Old++
		case DispositionRecent:
			summary.Recent++
		case DispositionProtected:
			summary.Protected++
		case DispositionError:
			summary.Errors++
		}
	}
	return summary
}

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// CutoffFor returns now minus the threshold expressed in whole days.
func CutoffFor(now time.Time, thresholdDays int) time.Time {
	return now.Add(-time.Duration(thresholdDays) * hoursPerDayConstant * time.Hour)
}

// AgeInWholeDays floors the elapsed time between commitTime and now to whole days.
// Commits dated in the future produce negative ages.
func AgeInWholeDays(now time.Time, commitTime time.Time) int {
	const day = hoursPerDayConstant * time.Hour

	age := now.Sub(commitTime)
	wholeDays := age / day
	if age < 0 && age%day != 0 {
		wholeDays--
	}
	return int(wholeDays)
}
