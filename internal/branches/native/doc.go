// Package native resolves remote branches and commit dates in-process with
// go-git. It backs the analyze command when the configured backend is "native".
package native
