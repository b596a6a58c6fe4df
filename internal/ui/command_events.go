package ui

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/stale-branches/internal/execshell"
)

const (
	subcommandFieldNameConstant = "git_subcommand"
	exitCodeFieldNameConstant   = "exit_code"
)

// LifecycleLevels assigns a zap level to each phase of a git invocation.
type LifecycleLevels struct {
	Started   zapcore.Level
	Completed zapcore.Level
	Failed    zapcore.Level
}

// QuietLifecycleLevels keeps per-branch fetches out of the default info output.
var QuietLifecycleLevels = LifecycleLevels{
	Started:   zapcore.DebugLevel,
	Completed: zapcore.DebugLevel,
	Failed:    zapcore.WarnLevel,
}

// ConsoleCommandEventLogger narrates git invocations through a console-encoded zap logger.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	levels    LifecycleLevels
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs an event logger using QuietLifecycleLevels.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	return NewConsoleCommandEventLoggerWithLevels(logger, QuietLifecycleLevels)
}

// NewConsoleCommandEventLoggerWithLevels constructs an event logger with explicit phase levels.
func NewConsoleCommandEventLoggerWithLevels(logger *zap.Logger, levels LifecycleLevels) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, levels: levels}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.emit(eventLogger.levels.Started, eventLogger.formatter.BuildStartedMessage(command), command)
}

// CommandCompleted implements execshell.CommandEventObserver. A non-zero exit
// code is reported at the failure level.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.emit(eventLogger.levels.Completed, eventLogger.formatter.BuildSuccessMessage(command), command)
		return
	}
	eventLogger.emit(eventLogger.levels.Failed, eventLogger.formatter.BuildFailureMessage(command, result), command, zap.Int(exitCodeFieldNameConstant, result.ExitCode))
}

// CommandExecutionFailed implements execshell.CommandEventObserver. Deadline
// expirations land here as well.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.emit(eventLogger.levels.Failed, eventLogger.formatter.BuildExecutionFailureMessage(command, failure), command)
}

func (eventLogger *ConsoleCommandEventLogger) emit(level zapcore.Level, message string, command execshell.ShellCommand, extraFields ...zap.Field) {
	checkedEntry := eventLogger.logger.Check(level, message)
	if checkedEntry == nil {
		return
	}
	fields := make([]zap.Field, 0, len(extraFields)+1)
	if len(command.Details.Arguments) > 0 {
		fields = append(fields, zap.String(subcommandFieldNameConstant, strings.TrimSpace(command.Details.Arguments[0])))
	}
	checkedEntry.Write(append(fields, extraFields...)...)
}
