package branches

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	outputDirectoryPermissionsConstant   = 0o755
	reportFilePermissionsConstant        = 0o644
	scriptFilePermissionsConstant        = 0o755
	artifactWriteErrorTemplateConstant   = "write %s: %w"
	artifactModeErrorTemplateConstant    = "mark %s executable: %w"
	outputDirectoryErrorTemplateConstant = "create output directory %s: %w"
)

// ArtifactPaths names the files produced by a scan. SummaryFile may be empty.
type ArtifactPaths struct {
	OutputDirectory string
	ScriptFile      string
	ReportFile      string
	SummaryFile     string
}

// WriteOutcome lists the paths actually written.
type WriteOutcome struct {
	ScriptPath  string
	ReportPath  string
	SummaryPath string
}

// ArtifactWriter persists rendered artifacts.
type ArtifactWriter struct {
	fileSystem afero.Fs
	paths      ArtifactPaths
}

// NewArtifactWriter constructs a writer backed by fileSystem; nil selects the OS filesystem.
func NewArtifactWriter(fileSystem afero.Fs, paths ArtifactPaths) *ArtifactWriter {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &ArtifactWriter{fileSystem: fileSystem, paths: paths}
}

// Write stores the report, then the script, then marks the script executable.
// Nothing is written when the artifacts carry no work, and a failure removes
// whatever this call already wrote so no script is left without its report.
func (writer *ArtifactWriter) Write(artifacts Artifacts) (WriteOutcome, error) {
	if artifacts.NothingToDo {
		return WriteOutcome{}, nil
	}

	if directoryError := writer.ensureOutputDirectory(); directoryError != nil {
		return WriteOutcome{}, directoryError
	}

	reportPath := writer.resolve(writer.paths.ReportFile, DefaultReportFileName)
	if writeError := writer.writeFile(reportPath, artifacts.Report, reportFilePermissionsConstant); writeError != nil {
		return WriteOutcome{}, writeError
	}

	scriptPath := writer.resolve(writer.paths.ScriptFile, DefaultScriptFileName)
	if writeError := writer.writeFile(scriptPath, artifacts.Script, scriptFilePermissionsConstant); writeError != nil {
		writer.Discard(WriteOutcome{ReportPath: reportPath, ScriptPath: scriptPath})
		return WriteOutcome{}, writeError
	}
	if modeError := writer.fileSystem.Chmod(scriptPath, scriptFilePermissionsConstant); modeError != nil {
		writer.Discard(WriteOutcome{ReportPath: reportPath, ScriptPath: scriptPath})
		return WriteOutcome{}, fmt.Errorf(artifactModeErrorTemplateConstant, scriptPath, modeError)
	}

	return WriteOutcome{ScriptPath: scriptPath, ReportPath: reportPath}, nil
}

// Discard removes the files named in outcome, script first. Missing files are ignored.
func (writer *ArtifactWriter) Discard(outcome WriteOutcome) {
	for _, path := range []string{outcome.ScriptPath, outcome.ReportPath, outcome.SummaryPath} {
		if len(path) == 0 {
			continue
		}
		if info, statError := writer.fileSystem.Stat(path); statError != nil || info.IsDir() {
			continue
		}
		_ = writer.fileSystem.Remove(path)
	}
}

// WriteSummary stores the YAML scan summary when a summary file is configured and
// returns the written path, or an empty path when summaries are disabled.
func (writer *ArtifactWriter) WriteSummary(summary []byte) (string, error) {
	if len(strings.TrimSpace(writer.paths.SummaryFile)) == 0 {
		return "", nil
	}

	if directoryError := writer.ensureOutputDirectory(); directoryError != nil {
		return "", directoryError
	}

	summaryPath := writer.resolve(writer.paths.SummaryFile, "")
	if writeError := writer.writeFile(summaryPath, string(summary), reportFilePermissionsConstant); writeError != nil {
		return "", writeError
	}
	return summaryPath, nil
}

func (writer *ArtifactWriter) ensureOutputDirectory() error {
	directory := strings.TrimSpace(writer.paths.OutputDirectory)
	if len(directory) == 0 {
		return nil
	}
	if mkdirError := writer.fileSystem.MkdirAll(directory, outputDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(outputDirectoryErrorTemplateConstant, directory, mkdirError)
	}
	return nil
}

func (writer *ArtifactWriter) resolve(fileName string, fallback string) string {
	trimmedFileName := strings.TrimSpace(fileName)
	if len(trimmedFileName) == 0 {
		trimmedFileName = fallback
	}
	if filepath.IsAbs(trimmedFileName) {
		return filepath.Clean(trimmedFileName)
	}
	directory := strings.TrimSpace(writer.paths.OutputDirectory)
	if len(directory) == 0 {
		return filepath.Clean(trimmedFileName)
	}
	return filepath.Join(directory, trimmedFileName)
}

func (writer *ArtifactWriter) writeFile(path string, content string, permissions os.FileMode) error {
	if writeError := afero.WriteFile(writer.fileSystem, path, []byte(content), permissions); writeError != nil {
		return fmt.Errorf(artifactWriteErrorTemplateConstant, path, writeError)
	}
	return nil
}
