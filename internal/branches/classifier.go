package branches

import (
	"context"
	"time"
)

// Classifier applies protection and age policy to a single branch.
type Classifier struct {
	protectedBranches ProtectedBranchSet
	resolver          TimestampResolver
}

// NewClassifier constructs a Classifier.
func NewClassifier(protectedBranches ProtectedBranchSet, resolver TimestampResolver) (*Classifier, error) {
	if resolver == nil {
		return nil, ErrTimestampResolverNotConfigured
	}
	return &Classifier{protectedBranches: protectedBranches, resolver: resolver}, nil
}

// Classify assigns branch to exactly one disposition. Protected names short-circuit
// before any timestamp lookup; a commit strictly older than cutoff is old.
func (classifier *Classifier) Classify(executionContext context.Context, branch BranchReference, now time.Time, cutoff time.Time) Classification {
	if classifier.protectedBranches.Contains(branch.Name) {
		return Classification{Branch: branch, Disposition: DispositionProtected}
	}

	resolution := classifier.resolver.Resolve(executionContext, branch.CommitID)
	commitTime, resolved := resolution.Timestamp()
	if !resolved {
		return Classification{Branch: branch, Disposition: DispositionError, FailureReason: resolution.Failure()}
	}

	disposition := DispositionRecent
	if commitTime.Before(cutoff) {
		disposition = DispositionOld
	}

	return Classification{
		Branch:      branch,
		Disposition: disposition,
		CommitTime:  commitTime,
		AgeDays:     AgeInWholeDays(now, commitTime),
	}
}
