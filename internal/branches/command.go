package branches

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/stale-branches/internal/execshell"
	"github.com/temirov/stale-branches/internal/ui"
	"github.com/temirov/stale-branches/internal/utils/flags"
	pathutils "github.com/temirov/stale-branches/internal/utils/path"
)

const (
	commandUseConstant                     = "analyze"
	commandShortDescriptionConstant        = "Classify remote branches by age and emit a deletion script"
	commandLongDescriptionConstant         = "analyze lists the branches of a remote, resolves the date of each head commit, and writes a report and a deletion script for branches older than the threshold. Protected branches are never listed for deletion."
	commandExecutionErrorTemplateConstant  = "branch analysis failed: %w"
	unexpectedArgumentsMessageConstant     = "analyze does not accept positional arguments"
	flagThresholdNameConstant              = "threshold-days"
	flagThresholdDescriptionConstant       = "Branches whose last commit is older than this many days are old"
	flagProtectedNameConstant              = "protected"
	flagProtectedDescriptionConstant       = "Branch names that are never classified as old"
	flagBatchSizeNameConstant              = "batch-size"
	flagBatchSizeDescriptionConstant       = "Number of branches announced per progress header"
	flagFetchNameConstant                  = "fetch"
	flagFetchShorthandConstant             = "f"
	flagFetchDescriptionConstant           = "Shallow-fetch each head commit before reading its date"
	flagFetchTimeoutNameConstant           = "fetch-timeout"
	flagFetchTimeoutDescriptionConstant    = "Upper bound for fetching a single commit"
	flagReadTimeoutNameConstant            = "read-timeout"
	flagReadTimeoutDescriptionConstant     = "Upper bound for reading a single commit date"
	flagBackendNameConstant                = "backend"
	flagBackendDescriptionConstant         = "Use the git executable or the in-process implementation"
	flagOutputDirectoryNameConstant        = "output-directory"
	flagOutputDirectoryDescriptionConstant = "Directory receiving the report and the script"
	flagScriptFileNameConstant             = "script-file"
	flagScriptFileDescriptionConstant      = "File name of the generated deletion script"
	flagReportFileNameConstant             = "report-file"
	flagReportFileDescriptionConstant      = "File name of the generated report"
	flagSummaryFileNameConstant            = "summary-file"
	flagSummaryFileDescriptionConstant     = "Optional file name of a YAML scan summary"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current analyze configuration.
type ConfigurationProvider func() CommandConfiguration

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the Cobra command for branch analysis.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	CommandEventsObserver        execshell.CommandEventObserver
	GitExecutor                  GitExecutor
	BackendFactories             map[string]BackendFactory
	FileSystem                   afero.Fs
	Clock                        Clock
}

// Build constructs the analyze command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	flags.BindRepositoryFlags(command, flags.RepositoryFlagValues{RemoteName: defaults.RemoteName, RepositoryPath: defaults.RepositoryPath})

	flagSet := command.Flags()
	flagSet.Int(flagThresholdNameConstant, defaults.ThresholdDays, flagThresholdDescriptionConstant)
	flagSet.StringSlice(flagProtectedNameConstant, defaults.ProtectedBranches, flagProtectedDescriptionConstant)
	flagSet.Int(flagBatchSizeNameConstant, defaults.BatchSize, flagBatchSizeDescriptionConstant)
	flags.AddToggleFlag(flagSet, nil, flagFetchNameConstant, flagFetchShorthandConstant, defaults.Fetch, flagFetchDescriptionConstant)
	flagSet.Duration(flagFetchTimeoutNameConstant, defaults.FetchTimeout, flagFetchTimeoutDescriptionConstant)
	flagSet.Duration(flagReadTimeoutNameConstant, defaults.ReadTimeout, flagReadTimeoutDescriptionConstant)
	flagSet.String(flagBackendNameConstant, defaults.Backend, flags.FormatChoiceUsage(defaults.Backend, SupportedBackends, flagBackendDescriptionConstant))
	flagSet.String(flagOutputDirectoryNameConstant, defaults.OutputDirectory, flagOutputDirectoryDescriptionConstant)
	flagSet.String(flagScriptFileNameConstant, defaults.ScriptFile, flagScriptFileDescriptionConstant)
	flagSet.String(flagReportFileNameConstant, defaults.ReportFile, flagReportFileDescriptionConstant)
	flagSet.String(flagSummaryFileNameConstant, defaults.SummaryFile, flagSummaryFileDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration, optionsError := builder.parseConfiguration(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	service, serviceError := builder.buildService(logger, configuration, command)
	if serviceError != nil {
		return serviceError
	}

	_, scanError := service.Scan(command.Context(), ScanOptions{ThresholdDays: configuration.ThresholdDays, BatchSize: configuration.BatchSize})
	if scanError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, scanError)
	}

	return nil
}

func (builder *CommandBuilder) buildService(logger *zap.Logger, configuration CommandConfiguration, command *cobra.Command) (*Service, error) {
	backendFactory, factoryError := ResolveBackendFactory(configuration.Backend, builder.BackendFactories)
	if factoryError != nil {
		return nil, factoryError
	}

	settings := BackendSettings{
		RemoteName:     configuration.RemoteName,
		RepositoryPath: configuration.RepositoryPath,
		Logger:         logger,
	}
	if configuration.Backend == BackendCLI {
		gitExecutor, executorError := ResolveGitExecutor(builder.GitExecutor, logger, builder.resolveCommandEventsObserver(logger))
		if executorError != nil {
			return nil, executorError
		}
		settings.GitExecutor = gitExecutor
	}

	backend, backendError := backendFactory(settings)
	if backendError != nil {
		return nil, backendError
	}

	resolver, resolverError := NewCommitTimestampResolver(backend.Source, ResolverOptions{
		FetchEnabled: configuration.Fetch,
		FetchTimeout: configuration.FetchTimeout,
		ReadTimeout:  configuration.ReadTimeout,
	})
	if resolverError != nil {
		return nil, resolverError
	}

	classifier, classifierError := NewClassifier(NewProtectedBranchSet(configuration.ProtectedBranches), resolver)
	if classifierError != nil {
		return nil, classifierError
	}

	writer := NewArtifactWriter(ResolveFileSystem(builder.FileSystem), ArtifactPaths{
		OutputDirectory: configuration.OutputDirectory,
		ScriptFile:      configuration.ScriptFile,
		ReportFile:      configuration.ReportFile,
		SummaryFile:     configuration.SummaryFile,
	})

	return NewService(
		logger,
		backend.Lister,
		classifier,
		NewArtifactRenderer(configuration.RemoteName),
		writer,
		NewWriterReporter(command.OutOrStdout()),
		builder.Clock,
	)
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (CommandConfiguration, error) {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	if flagSet.Changed(flags.RemoteFlagName) {
		configuration.RemoteName, _ = flagSet.GetString(flags.RemoteFlagName)
	}
	if flagSet.Changed(flags.RepositoryFlagName) {
		configuration.RepositoryPath, _ = flagSet.GetString(flags.RepositoryFlagName)
	}
	if flagSet.Changed(flagThresholdNameConstant) {
		configuration.ThresholdDays, _ = flagSet.GetInt(flagThresholdNameConstant)
	}
	if flagSet.Changed(flagProtectedNameConstant) {
		configuration.ProtectedBranches, _ = flagSet.GetStringSlice(flagProtectedNameConstant)
	}
	if flagSet.Changed(flagBatchSizeNameConstant) {
		configuration.BatchSize, _ = flagSet.GetInt(flagBatchSizeNameConstant)
	}
	if flagSet.Changed(flagFetchNameConstant) {
		configuration.Fetch, _ = flagSet.GetBool(flagFetchNameConstant)
	}
	if flagSet.Changed(flagFetchTimeoutNameConstant) {
		configuration.FetchTimeout, _ = flagSet.GetDuration(flagFetchTimeoutNameConstant)
	}
	if flagSet.Changed(flagReadTimeoutNameConstant) {
		configuration.ReadTimeout, _ = flagSet.GetDuration(flagReadTimeoutNameConstant)
	}
	if flagSet.Changed(flagBackendNameConstant) {
		configuration.Backend, _ = flagSet.GetString(flagBackendNameConstant)
	}
	if flagSet.Changed(flagOutputDirectoryNameConstant) {
		configuration.OutputDirectory, _ = flagSet.GetString(flagOutputDirectoryNameConstant)
	}
	if flagSet.Changed(flagScriptFileNameConstant) {
		configuration.ScriptFile, _ = flagSet.GetString(flagScriptFileNameConstant)
	}
	if flagSet.Changed(flagReportFileNameConstant) {
		configuration.ReportFile, _ = flagSet.GetString(flagReportFileNameConstant)
	}
	if flagSet.Changed(flagSummaryFileNameConstant) {
		configuration.SummaryFile, _ = flagSet.GetString(flagSummaryFileNameConstant)
	}

	sanitized := configuration.sanitize()
	if sanitized.ThresholdDays < 0 {
		return CommandConfiguration{}, ErrNegativeThreshold
	}

	normalizedBackend, backendError := flags.NormalizeChoice(sanitized.Backend, SupportedBackends)
	if backendError != nil {
		return CommandConfiguration{}, backendError
	}
	sanitized.Backend = normalizedBackend

	homeExpander := pathutils.NewHomeExpander()
	sanitized.RepositoryPath = homeExpander.Resolve(sanitized.RepositoryPath, defaultRepositoryPathConstant)
	sanitized.OutputDirectory = homeExpander.Resolve(sanitized.OutputDirectory, defaultRepositoryPathConstant)

	return sanitized, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveCommandEventsObserver(logger *zap.Logger) execshell.CommandEventObserver {
	if builder.CommandEventsObserver != nil {
		return builder.CommandEventsObserver
	}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return ui.NewConsoleCommandEventLogger(logger)
	}
	return nil
}
