package execshell

import (
	"fmt"
	"strings"
)

const (
	startedTemplateConstant             = "%s %s in %s"
	succeededTemplateConstant           = "%s %s in %s"
	failedTemplateConstant              = "Failed to %s %s in %s (exit code %d%s)"
	unavailableTemplateConstant         = "Unable to %s %s in %s: %s"
	genericStartedTemplateConstant      = "Running %s"
	genericSucceededTemplateConstant    = "Completed %s"
	genericFailedTemplateConstant       = "%s failed with exit code %d%s"
	genericUnavailableTemplateConstant  = "%s failed: %s"
	workingDirectorySuffixTemplate      = " (in %s)"
	standardErrorSuffixTemplate         = ": %s"
	currentDirectoryLabelConstant       = "current directory"
	unknownValueLabelConstant           = "unknown"
	unknownFailureLabelConstant         = "unknown error"
	branchListingObjectTemplateConstant = "branches on %s"
	commitFetchObjectTemplateConstant   = "%s from %s"
	commitDateObjectTemplateConstant    = "commit date of %s"
	commandLabelSeparatorConstant       = " "
	optionPrefixConstant                = "-"
)

// gitOperation words the lifecycle of one git subcommand. object receives the
// positional arguments that follow the subcommand.
type gitOperation struct {
	presentVerb string
	pastVerb    string
	baseVerb    string
	object      func(positional []string) string
}

var gitOperations = map[string]gitOperation{
	"ls-remote": {
		presentVerb: "Listing",
		pastVerb:    "Listed",
		baseVerb:    "list",
		object: func(positional []string) string {
			return fmt.Sprintf(branchListingObjectTemplateConstant, valueAt(positional, 0))
		},
	},
	"fetch": {
		presentVerb: "Fetching",
		pastVerb:    "Fetched",
		baseVerb:    "fetch",
		object: func(positional []string) string {
			return fmt.Sprintf(commitFetchObjectTemplateConstant, valueAt(positional, len(positional)-1), valueAt(positional, 0))
		},
	},
	"log": {
		presentVerb: "Reading",
		pastVerb:    "Read",
		baseVerb:    "read",
		object: func(positional []string) string {
			return fmt.Sprintf(commitDateObjectTemplateConstant, valueAt(positional, len(positional)-1))
		},
	},
}

// CommandMessageFormatter turns command lifecycle events into one-line
// human-readable messages. The git subcommands issued during a scan get
// dedicated wording; everything else is echoed verbatim.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if operation, object, known := describeGitOperation(command); known {
		return fmt.Sprintf(startedTemplateConstant, operation.presentVerb, object, workingDirectoryLabel(command))
	}
	return fmt.Sprintf(genericStartedTemplateConstant, commandLabel(command))
}

// BuildSuccessMessage describes a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	if operation, object, known := describeGitOperation(command); known {
		return fmt.Sprintf(succeededTemplateConstant, operation.pastVerb, object, workingDirectoryLabel(command))
	}
	return fmt.Sprintf(genericSucceededTemplateConstant, commandLabel(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := ""
	if trimmed := strings.TrimSpace(result.StandardError); len(trimmed) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplate, trimmed)
	}
	if operation, object, known := describeGitOperation(command); known {
		return fmt.Sprintf(failedTemplateConstant, operation.baseVerb, object, workingDirectoryLabel(command), result.ExitCode, standardErrorSuffix)
	}
	return fmt.Sprintf(genericFailedTemplateConstant, commandLabel(command), result.ExitCode, standardErrorSuffix)
}

// BuildExecutionFailureMessage describes a command that produced no result.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	reason := unknownFailureLabelConstant
	if failure != nil {
		reason = failure.Error()
	}
	if operation, object, known := describeGitOperation(command); known {
		return fmt.Sprintf(unavailableTemplateConstant, operation.baseVerb, object, workingDirectoryLabel(command), reason)
	}
	return fmt.Sprintf(genericUnavailableTemplateConstant, commandLabel(command), reason)
}

func describeGitOperation(command ShellCommand) (gitOperation, string, bool) {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return gitOperation{}, "", false
	}
	operation, known := gitOperations[strings.TrimSpace(command.Details.Arguments[0])]
	if !known {
		return gitOperation{}, "", false
	}
	return operation, operation.object(positionalArguments(command.Details.Arguments[1:])), true
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, optionPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}

func valueAt(values []string, index int) string {
	if index < 0 || index >= len(values) {
		return unknownValueLabelConstant
	}
	return values[index]
}

func workingDirectoryLabel(command ShellCommand) string {
	if trimmed := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmed) > 0 {
		return trimmed
	}
	return currentDirectoryLabelConstant
}

func commandLabel(command ShellCommand) string {
	label := strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), commandLabelSeparatorConstant)
	if trimmed := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmed) > 0 {
		label += fmt.Sprintf(workingDirectorySuffixTemplate, trimmed)
	}
	return label
}
