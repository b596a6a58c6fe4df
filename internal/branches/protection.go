package branches

import (
	"sort"
	"strings"
)

// DefaultProtectedBranchNames lists branch names that are never classified as old.
var DefaultProtectedBranchNames = []string{"main", "develop", "staging", "production"}

// ProtectedBranchSet is an immutable allow-list of branch names exempt from age policy.
type ProtectedBranchSet struct {
	names map[string]struct{}
}

// NewProtectedBranchSet builds a set from the provided names. Names are trimmed and
// blank entries ignored; matching is exact and case-sensitive.
func NewProtectedBranchSet(names []string) ProtectedBranchSet {
	members := make(map[string]struct{}, len(names))
	for _, candidate := range names {
		trimmedName := strings.TrimSpace(candidate)
		if len(trimmedName) == 0 {
			continue
		}
		members[trimmedName] = struct{}{}
	}
	return ProtectedBranchSet{names: members}
}

// Contains reports whether branchName is protected.
func (set ProtectedBranchSet) Contains(branchName string) bool {
	_, protected := set.names[branchName]
	return protected
}

// Names returns the protected names in lexical order.
func (set ProtectedBranchSet) Names() []string {
	sortedNames := make([]string, 0, len(set.names))
	for name := range set.names {
		sortedNames = append(sortedNames, name)
	}
	sort.Strings(sortedNames)
	return sortedNames
}
