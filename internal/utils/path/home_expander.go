// Package pathutils resolves user-supplied filesystem locations such as the
// repository clone and the artifact output directory.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
)

const homeShortcutConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander turns "~" and "~/..." into paths below the home directory.
// Other forms such as "~user" are left alone.
type HomeExpander struct {
	homeDirectory HomeDirectoryProvider
}

// NewHomeExpander uses os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(nil)
}

// NewHomeExpanderWithProvider uses provider, or os.UserHomeDir when provider is nil.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectory: provider}
}

// Expand replaces a leading home shortcut. The path is returned unchanged when
// it has none or when the home directory cannot be determined.
func (expander *HomeExpander) Expand(candidatePath string) string {
	remainder, hasShortcut := strings.CutPrefix(candidatePath, homeShortcutConstant)
	if expander == nil || !hasShortcut {
		return candidatePath
	}
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != filepath.Separator {
		return candidatePath
	}

	homeDirectory, lookupError := expander.homeDirectory()
	if lookupError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, filepath.FromSlash(remainder))
}

// Resolve expands a leading home shortcut, substitutes fallback for blank input,
// and cleans the result. Relative paths stay relative.
func (expander *HomeExpander) Resolve(candidatePath string, fallback string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		trimmedPath = fallback
	}
	if len(trimmedPath) == 0 {
		return trimmedPath
	}
	return filepath.Clean(expander.Expand(trimmedPath))
}
