// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags

import "github.com/spf13/cobra"

const (
	// RemoteFlagName exposes the shared remote flag name.
	RemoteFlagName = "remote"
	// RemoteFlagUsage describes the shared remote flag purpose.
	RemoteFlagUsage = "Remote name to inspect"
	// RepositoryFlagName exposes the shared repository path flag name.
	RepositoryFlagName = "repository"
	// RepositoryFlagUsage describes the shared repository path flag purpose.
	RepositoryFlagUsage = "Path to the local clone used to query the remote"
)

// RepositoryFlagValues stores repository context flag values.
type RepositoryFlagValues struct {
	RemoteName     string
	RepositoryPath string
}

// BindRepositoryFlags attaches the remote and repository path flags to the provided command.
func BindRepositoryFlags(command *cobra.Command, defaults RepositoryFlagValues) *RepositoryFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	flagSet.StringVar(&values.RemoteName, RemoteFlagName, defaults.RemoteName, RemoteFlagUsage)
	flagSet.StringVar(&values.RepositoryPath, RepositoryFlagName, defaults.RepositoryPath, RepositoryFlagUsage)

	return &values
}
