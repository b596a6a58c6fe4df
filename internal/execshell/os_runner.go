package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
	interruptedCommandTemplateConstant    = "%s interrupted: %w"
	// git remote helpers can keep the output pipes open after the parent is killed
	processWaitDelayConstant = time.Second
)

// OSCommandRunner starts real processes through os/exec.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the command and captures both output streams. A non-zero exit is
// a result, not an error. A process killed because executionContext ended is
// reported as an error wrapping the context error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	var standardOutput bytes.Buffer
	var standardError bytes.Buffer

	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.WaitDelay = processWaitDelayConstant
	process.Dir = command.Details.WorkingDirectory
	process.Env = processEnvironment(command.Details.EnvironmentVariables)
	process.Stdout = &standardOutput
	process.Stderr = &standardError
	if len(command.Details.StandardInput) > 0 {
		process.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := process.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, fmt.Errorf(interruptedCommandTemplateConstant, command.Name, contextError)
	}

	var exitError *exec.ExitError
	switch {
	case runError == nil:
	case errors.As(runError, &exitError):
	default:
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
		ExitCode:       process.ProcessState.ExitCode(),
	}, nil
}

// processEnvironment returns nil, meaning the inherited environment, when there
// is nothing to add. Overrides are appended in key order so later entries win.
func processEnvironment(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil
	}

	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	environment := os.Environ()
	for _, key := range keys {
		environment = append(environment, fmt.Sprintf(environmentAssignmentTemplateConstant, key, overrides[key]))
	}
	return environment
}
