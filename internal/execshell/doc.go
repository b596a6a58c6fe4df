// Package execshell runs the git executable on behalf of the cli backend.
//
// ShellExecutor turns each invocation into a ShellCommand, reports its
// lifecycle to zap and to any CommandEventObserver, and maps non-zero exits to
// CommandFailedError. OSCommandRunner is the os/exec implementation; callers
// bound each run with their own context deadline.
package execshell
