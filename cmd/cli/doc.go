// Package cli constructs the stale-branches command-line interface. It wires
// the Cobra root command, the Viper-backed configuration loader with its
// embedded defaults, and zap logging, then registers the analyze command with
// both the git executable and the in-process go-git backends.
package cli
