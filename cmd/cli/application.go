package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/stale-branches/internal/branches"
	"github.com/temirov/stale-branches/internal/branches/native"
	"github.com/temirov/stale-branches/internal/utils"
	"github.com/temirov/stale-branches/internal/utils/flags"
)

const (
	applicationNameConstant             = "stale-branches"
	applicationShortDescriptionConstant = "Find remote branches nobody has touched in a while"
	applicationLongDescriptionConstant  = "stale-branches classifies the branches of a remote as protected, recent, old, or unresolvable and writes a report plus a deletion script for the old ones."
	configFileFlagNameConstant          = "config"
	configFileFlagUsageConstant         = "Optional path to a configuration file (YAML or JSON)."
	environmentPrefixConstant           = "STALEBRANCHES"
	configurationNameConstant           = "config"
	configurationTypeConstant           = "yaml"
	analyzeConfigurationKeyConstant     = "tools.analyze"
	analyzeCommandNameConstant          = "analyze"
	commandBuildErrorTemplateConstant   = "unable to build %s command: %w"
	loggerSyncErrorTemplateConstant     = "unable to flush logger: %w"
)

// ApplicationConfiguration mirrors the configuration file layout.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds per-command sections.
type ApplicationToolsConfiguration struct {
	Analyze branches.CommandConfiguration `mapstructure:"analyze"`
}

// Application owns the root command and the state resolved before any
// subcommand runs: configuration and the diagnostic logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationFilePath string
	loggingOverrides      loggingOverrides
}

// NewApplication assembles the root command with the analyze subcommand.
func NewApplication() (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.DefaultConfigurationSearchPaths(applicationNameConstant),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, _ []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}
	rootCommand.SetContext(context.Background())
	rootCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	application.loggingOverrides.bind(rootCommand.PersistentFlags())

	analyzeCommand, buildError := application.analyzeCommandBuilder().Build()
	if buildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, analyzeCommandNameConstant, buildError)
	}
	rootCommand.AddCommand(analyzeCommand)

	application.rootCommand = rootCommand
	return application, nil
}

func (application *Application) analyzeCommandBuilder() *branches.CommandBuilder {
	return &branches.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() branches.CommandConfiguration {
			return application.configuration.Tools.Analyze
		},
		BackendFactories: map[string]branches.BackendFactory{
			branches.BackendNative: native.NewBackend,
		},
	}
}

// SetArguments replaces the process arguments used by Execute.
func (application *Application) SetArguments(arguments []string) {
	application.rootCommand.SetArgs(flags.NormalizeToggleArguments(arguments))
}

// SetOutput redirects the narration and error streams of every command.
func (application *Application) SetOutput(standardOutput io.Writer, standardError io.Writer) {
	application.rootCommand.SetOut(standardOutput)
	application.rootCommand.SetErr(standardError)
}

// Configuration returns the configuration resolved by the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute runs the command tree and flushes the logger afterwards. A command
// error takes precedence over a flush error.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := flushLogger(application.logger); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute runs a fresh application against the process arguments.
func Execute() error {
	application, creationError := NewApplication()
	if creationError != nil {
		return creationError
	}
	application.SetArguments(os.Args[1:])
	return application.Execute()
}
