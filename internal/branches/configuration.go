package branches

import (
	"strings"
	"time"
)

const (
	// DefaultRemoteName is the remote inspected when none is configured.
	DefaultRemoteName = "origin"
	// DefaultThresholdDays is the age, in days, beyond which a branch is old.
	DefaultThresholdDays = 1
	// DefaultBatchSize is the number of branches announced per progress header.
	DefaultBatchSize = 10
	// DefaultScriptFileName names the generated deletion script.
	DefaultScriptFileName = "delete-branches-batch.sh"
	// DefaultReportFileName names the generated report.
	DefaultReportFileName = "old-branches-report.txt"
	// BackendCLI resolves branches and commits with the git executable.
	BackendCLI = "cli"
	// BackendNative resolves branches and commits in-process.
	BackendNative = "native"

	defaultRepositoryPathConstant           = "."
	configurationKeySeparatorConstant       = "."
	configurationRemoteKeyConstant          = "remote"
	configurationRepositoryKeyConstant      = "repository"
	configurationThresholdKeyConstant       = "threshold_days"
	configurationProtectedKeyConstant       = "protected_branches"
	configurationBatchSizeKeyConstant       = "batch_size"
	configurationFetchKeyConstant           = "fetch"
	configurationFetchTimeoutKeyConstant    = "fetch_timeout"
	configurationReadTimeoutKeyConstant     = "read_timeout"
	configurationBackendKeyConstant         = "backend"
	configurationOutputDirectoryKeyConstant = "output_directory"
	configurationScriptFileKeyConstant      = "script_file"
	configurationReportFileKeyConstant      = "report_file"
	configurationSummaryFileKeyConstant     = "summary_file"
)

// SupportedBackends lists the accepted backend identifiers.
var SupportedBackends = []string{BackendCLI, BackendNative}

// CommandConfiguration captures configuration values for the analyze command.
type CommandConfiguration struct {
	RemoteName        string        `mapstructure:"remote"`
	RepositoryPath    string        `mapstructure:"repository"`
	ThresholdDays     int           `mapstructure:"threshold_days"`
	ProtectedBranches []string      `mapstructure:"protected_branches"`
	BatchSize         int           `mapstructure:"batch_size"`
	Fetch             bool          `mapstructure:"fetch"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	Backend           string        `mapstructure:"backend"`
	OutputDirectory   string        `mapstructure:"output_directory"`
	ScriptFile        string        `mapstructure:"script_file"`
	ReportFile        string        `mapstructure:"report_file"`
	SummaryFile       string        `mapstructure:"summary_file"`
}

// DefaultCommandConfiguration provides baseline configuration values for the analyze command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RemoteName:        DefaultRemoteName,
		RepositoryPath:    defaultRepositoryPathConstant,
		ThresholdDays:     DefaultThresholdDays,
		ProtectedBranches: append([]string(nil), DefaultProtectedBranchNames...),
		BatchSize:         DefaultBatchSize,
		Fetch:             true,
		FetchTimeout:      DefaultFetchTimeout,
		ReadTimeout:       DefaultReadTimeout,
		Backend:           BackendCLI,
		OutputDirectory:   defaultRepositoryPathConstant,
		ScriptFile:        DefaultScriptFileName,
		ReportFile:        DefaultReportFileName,
		SummaryFile:       "",
	}
}

// DefaultConfigurationValues exposes the defaults as Viper keys rooted at prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		qualifyKey(prefix, configurationRemoteKeyConstant):          defaults.RemoteName,
		qualifyKey(prefix, configurationRepositoryKeyConstant):      defaults.RepositoryPath,
		qualifyKey(prefix, configurationThresholdKeyConstant):       defaults.ThresholdDays,
		qualifyKey(prefix, configurationProtectedKeyConstant):       defaults.ProtectedBranches,
		qualifyKey(prefix, configurationBatchSizeKeyConstant):       defaults.BatchSize,
		qualifyKey(prefix, configurationFetchKeyConstant):           defaults.Fetch,
		qualifyKey(prefix, configurationFetchTimeoutKeyConstant):    defaults.FetchTimeout,
		qualifyKey(prefix, configurationReadTimeoutKeyConstant):     defaults.ReadTimeout,
		qualifyKey(prefix, configurationBackendKeyConstant):         defaults.Backend,
		qualifyKey(prefix, configurationOutputDirectoryKeyConstant): defaults.OutputDirectory,
		qualifyKey(prefix, configurationScriptFileKeyConstant):      defaults.ScriptFile,
		qualifyKey(prefix, configurationReportFileKeyConstant):      defaults.ReportFile,
		qualifyKey(prefix, configurationSummaryFileKeyConstant):     defaults.SummaryFile,
	}
}

func qualifyKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

// sanitize trims configuration values and restores defaults for unset fields.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.RemoteName = fallbackString(configuration.RemoteName, defaults.RemoteName)
	sanitized.RepositoryPath = fallbackString(configuration.RepositoryPath, defaults.RepositoryPath)
	sanitized.Backend = strings.ToLower(fallbackString(configuration.Backend, defaults.Backend))
	sanitized.OutputDirectory = fallbackString(configuration.OutputDirectory, defaults.OutputDirectory)
	sanitized.ScriptFile = fallbackString(configuration.ScriptFile, defaults.ScriptFile)
	sanitized.ReportFile = fallbackString(configuration.ReportFile, defaults.ReportFile)
	sanitized.SummaryFile = strings.TrimSpace(configuration.SummaryFile)
	sanitized.ProtectedBranches = sanitizeNames(configuration.ProtectedBranches)

	if sanitized.BatchSize <= 0 {
		sanitized.BatchSize = defaults.BatchSize
	}
	if sanitized.FetchTimeout <= 0 {
		sanitized.FetchTimeout = defaults.FetchTimeout
	}
	if sanitized.ReadTimeout <= 0 {
		sanitized.ReadTimeout = defaults.ReadTimeout
	}

	return sanitized
}

func fallbackString(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}

func sanitizeNames(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
