package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/stale-branches/internal/execshell"
	"github.com/temirov/stale-branches/internal/ui"
)

const (
	testWorkingDirectoryConstant          = "/tmp/project"
	testCommitConstant                    = "4f2c1a9"
	testExecutionFailureReasonConstant    = "git interrupted: context deadline exceeded"
	testStandardErrorMessageConstant      = "fatal: bad object"
	testStartMessageExpectationConstant   = "Reading commit date of 4f2c1a9 in /tmp/project"
	testSuccessMessageExpectationConstant = "Read commit date of 4f2c1a9 in /tmp/project"
	testFailureMessageExpectationConstant = "Failed to read commit date of 4f2c1a9 in /tmp/project (exit code 128: fatal: bad object)"
	testExecutionFailureExpectation       = "Unable to read commit date of 4f2c1a9 in /tmp/project: git interrupted: context deadline exceeded"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	command := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"log", "-1", "--format=%cI", testCommitConstant},
			WorkingDirectory: testWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(command)
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 128, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(command, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testExecutionFailureExpectation,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestConsoleCommandEventLoggerToleratesNilReceiver(testInstance *testing.T) {
	var eventLogger *ui.ConsoleCommandEventLogger
	require.NotPanics(testInstance, func() {
		eventLogger.CommandStarted(execshell.ShellCommand{Name: execshell.CommandGit})
	})
}

func TestConsoleCommandEventLoggerAttachesSubcommandFields(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

	eventLogger.CommandCompleted(execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"ls-remote", "--heads", "origin"}},
	}, execshell.ExecutionResult{ExitCode: 2})

	entries := observedLogs.All()
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, "ls-remote", entries[0].ContextMap()["git_subcommand"])
	require.Equal(testInstance, int64(2), entries[0].ContextMap()["exit_code"])
}

func TestConsoleCommandEventLoggerHonorsCustomLevels(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	eventLogger := ui.NewConsoleCommandEventLoggerWithLevels(zap.New(observerCore), ui.LifecycleLevels{
		Started:   zapcore.InfoLevel,
		Completed: zapcore.DebugLevel,
		Failed:    zapcore.ErrorLevel,
	})
	command := execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"fetch", "origin"}}}

	eventLogger.CommandStarted(command)
	eventLogger.CommandCompleted(command, execshell.ExecutionResult{})
	eventLogger.CommandExecutionFailed(command, nil)

	entries := observedLogs.All()
	require.Len(testInstance, entries, 2)
	require.Equal(testInstance, zapcore.InfoLevel, entries[0].Level)
	require.Equal(testInstance, zapcore.ErrorLevel, entries[1].Level)
	require.Equal(testInstance, "Unable to fetch origin from origin in current directory: unknown error", entries[1].Message)
}
