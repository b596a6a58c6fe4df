package cli

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/stale-branches/internal/branches"
	"github.com/temirov/stale-branches/internal/utils"
)

const (
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonLogLevelConfigKeyConstant         = "common.log_level"
	commonLogFormatConfigKeyConstant        = "common.log_format"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	configurationInitializedMessageConstant = "configuration initialized"
	logFieldLogLevelConstant                = "log_level"
	logFieldLogFormatConstant               = "log_format"
	logFieldConfigFileConstant              = "config_file"
	logFieldRemoteConstant                  = "remote"
	logFieldBackendConstant                 = "backend"
)

// Sync on a terminal or pipe reports these instead of succeeding.
var ignorableSyncErrors = []error{syscall.ENOTSUP, syscall.EINVAL, syscall.ENOTTY}

// loggingOverrides holds the --log-level and --log-format values. They win
// over every configuration source but only when set explicitly.
type loggingOverrides struct {
	flagSet  *pflag.FlagSet
	logLevel string
	format   string
}

func (overrides *loggingOverrides) bind(flagSet *pflag.FlagSet) {
	overrides.flagSet = flagSet
	flagSet.StringVar(&overrides.logLevel, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	flagSet.StringVar(&overrides.format, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
}

func (overrides *loggingOverrides) apply(common *ApplicationCommonConfiguration) {
	if overrides.flagSet == nil {
		return
	}
	if overrides.flagSet.Changed(logLevelFlagNameConstant) {
		common.LogLevel = overrides.logLevel
	}
	if overrides.flagSet.Changed(logFormatFlagNameConstant) {
		common.LogFormat = overrides.format
	}
}

func applicationDefaults() map[string]any {
	defaults := branches.DefaultConfigurationValues(analyzeConfigurationKeyConstant)
	defaults[commonLogLevelConfigKeyConstant] = string(utils.LogLevelInfo)
	defaults[commonLogFormatConfigKeyConstant] = string(utils.LogFormatStructured)
	return defaults
}

func (application *Application) initializeConfiguration(_ *cobra.Command) error {
	loaded, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, applicationDefaults(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.loggingOverrides.apply(&application.configuration.Common)

	logger, loggerError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(logFieldLogLevelConstant, application.configuration.Common.LogLevel),
		zap.String(logFieldLogFormatConstant, application.configuration.Common.LogFormat),
		zap.String(logFieldConfigFileConstant, loaded.ConfigFileUsed),
		zap.String(logFieldRemoteConstant, application.configuration.Tools.Analyze.RemoteName),
		zap.String(logFieldBackendConstant, application.configuration.Tools.Analyze.Backend),
	)
	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return strings.EqualFold(strings.TrimSpace(application.configuration.Common.LogFormat), string(utils.LogFormatConsole))
}

func flushLogger(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	syncError := logger.Sync()
	for _, ignorable := range ignorableSyncErrors {
		if errors.Is(syncError, ignorable) {
			return nil
		}
	}
	return syncError
}
