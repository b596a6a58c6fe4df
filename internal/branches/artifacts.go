package branches

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	bannerCharacterConstant               = "="
	bannerWidthConstant                   = 80
	timestampLayoutConstant               = "2006-01-02 15:04:05 MST"
	dateLayoutConstant                    = "2006-01-02"
	reportTitleConstant                   = "Old Branches Report"
	reportGeneratedTemplateConstant       = "Generated: %s\n"
	reportThresholdTemplateConstant       = "Threshold: %d day(s)\n"
	reportTotalTemplateConstant           = "Total old branches: %d\n"
	reportBranchesHeadingConstant         = "Branches to delete:\n"
	reportBranchLineTemplateConstant      = "  %-70s %3dd old (last: %s)\n"
	scriptShebangConstant                 = "#!/bin/bash\n"
	scriptGeneratedTemplateConstant       = "# Generated: %s\n"
	scriptThresholdTemplateConstant       = "# Branches older than %d day(s)\n"
	scriptWarningConstant                 = "# WARNING: This will delete branches from the remote repository!\n"
	scriptStrictModeConstant              = "set -euo pipefail\n"
	scriptIntroductionConstant            = "echo 'Deleting old branches...'\necho ''\n"
	scriptBranchCommentTemplateConstant   = "# %s - %d days old (last commit: %s)\n"
	scriptEchoTemplateConstant            = "echo %s\n"
	scriptDeleteTemplateConstant          = "git push %s --delete %s || echo %s\n"
	scriptDeletingMessageTemplateConstant = "Deleting %s..."
	scriptFailedMessageTemplateConstant   = "Failed to delete %s"
	scriptClosingConstant                 = "echo ''\necho 'Done!'\n"
	shellSingleQuoteConstant              = "'"
	shellEscapedSingleQuoteConstant       = `'"'"'`
	newlineConstant                       = "\n"
	summaryRenderErrorTemplateConstant    = "render scan summary: %w"
)

// Artifacts holds the fully rendered outputs of a scan. When NothingToDo is true
// the report and script are empty and must not be written.
type Artifacts struct {
	Report      string
	Script      string
	NothingToDo bool
}

// ArtifactRenderer renders reports, deletion scripts and scan summaries. Rendering
// is pure: the same scan always produces identical text.
type ArtifactRenderer struct {
	remoteName string
}

// NewArtifactRenderer constructs a renderer whose script deletes from remoteName.
func NewArtifactRenderer(remoteName string) ArtifactRenderer {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		trimmedRemoteName = DefaultRemoteName
	}
	return ArtifactRenderer{remoteName: trimmedRemoteName}
}

// Render produces the report and script for the old bucket of scan.
func (renderer ArtifactRenderer) Render(scan ScanResult) Artifacts {
	oldBranches := OldestFirst(scan.Bucket(DispositionOld))
	if len(oldBranches) == 0 {
		return Artifacts{NothingToDo: true}
	}

	return Artifacts{
		Report: renderer.renderReport(scan, oldBranches),
		Script: renderer.renderScript(scan, oldBranches),
	}
}

// OldestFirst returns a copy ordered by descending age; equal ages keep their input order.
func OldestFirst(classifications []Classification) []Classification {
	ordered := append([]Classification(nil), classifications...)
	sort.SliceStable(ordered, func(leftIndex int, rightIndex int) bool {
		return ordered[leftIndex].AgeDays > ordered[rightIndex].AgeDays
	})
	return ordered
}

func (renderer ArtifactRenderer) renderReport(scan ScanResult, oldBranches []Classification) string {
	banner := Banner()

	var builder strings.Builder
	builder.WriteString(banner)
	builder.WriteString(reportTitleConstant + newlineConstant)
	builder.WriteString(banner)
	fmt.Fprintf(&builder, reportGeneratedTemplateConstant, FormatTimestamp(scan.Now))
	fmt.Fprintf(&builder, reportThresholdTemplateConstant, scan.ThresholdDays)
	builder.WriteString(newlineConstant)
	fmt.Fprintf(&builder, reportTotalTemplateConstant, len(oldBranches))
	builder.WriteString(newlineConstant)
	builder.WriteString(reportBranchesHeadingConstant)
	builder.WriteString(newlineConstant)

	for _, classification := range oldBranches {
		fmt.Fprintf(&builder, reportBranchLineTemplateConstant, classification.Branch.Name, classification.AgeDays, classification.CommitTime.Format(dateLayoutConstant))
	}

	return builder.String()
}

func (renderer ArtifactRenderer) renderScript(scan ScanResult, oldBranches []Classification) string {
	var builder strings.Builder
	builder.WriteString(scriptShebangConstant)
	fmt.Fprintf(&builder, scriptGeneratedTemplateConstant, FormatTimestamp(scan.Now))
	fmt.Fprintf(&builder, scriptThresholdTemplateConstant, scan.ThresholdDays)
	builder.WriteString(scriptWarningConstant)
	builder.WriteString(newlineConstant)
	builder.WriteString(scriptStrictModeConstant)
	builder.WriteString(newlineConstant)
	builder.WriteString(scriptIntroductionConstant)
	builder.WriteString(newlineConstant)

	quotedRemoteName := ShellQuote(renderer.remoteName)
	for _, classification := range oldBranches {
		branchName := classification.Branch.Name
		fmt.Fprintf(&builder, scriptBranchCommentTemplateConstant, branchName, classification.AgeDays, classification.CommitTime.Format(dateLayoutConstant))
		fmt.Fprintf(&builder, scriptEchoTemplateConstant, ShellQuote(fmt.Sprintf(scriptDeletingMessageTemplateConstant, branchName)))
		fmt.Fprintf(&builder, scriptDeleteTemplateConstant, quotedRemoteName, ShellQuote(branchName), ShellQuote(fmt.Sprintf(scriptFailedMessageTemplateConstant, branchName)))
		builder.WriteString(newlineConstant)
	}

	builder.WriteString(scriptClosingConstant)
	return builder.String()
}

// ShellQuote wraps value in single quotes so that bash treats it as one literal word.
func ShellQuote(value string) string {
	return shellSingleQuoteConstant + strings.ReplaceAll(value, shellSingleQuoteConstant, shellEscapedSingleQuoteConstant) + shellSingleQuoteConstant
}

// Banner returns a full-width separator line.
func Banner() string {
	return strings.Repeat(bannerCharacterConstant, bannerWidthConstant) + newlineConstant
}

// FormatTimestamp renders an instant in UTC with a zone suffix.
func FormatTimestamp(instant time.Time) string {
	return instant.UTC().Format(timestampLayoutConstant)
}

type scanSummaryDocument struct {
	GeneratedAt   string              `yaml:"generated_at"`
	Cutoff        string              `yaml:"cutoff"`
	ThresholdDays int                 `yaml:"threshold_days"`
	Remote        string              `yaml:"remote"`
	Counts        ScanSummary         `yaml:"counts"`
	Branches      []scanSummaryBranch `yaml:"branches"`
}

type scanSummaryBranch struct {
	Name        string `yaml:"name"`
	CommitID    string `yaml:"commit"`
	Disposition string `yaml:"disposition"`
	LastCommit  string `yaml:"last_commit,omitempty"`
	AgeDays     *int   `yaml:"age_days,omitempty"`
	Reason      string `yaml:"reason,omitempty"`
}

// RenderSummary returns a YAML document describing every classification of scan in listing order.
func (renderer ArtifactRenderer) RenderSummary(scan ScanResult) ([]byte, error) {
	document := scanSummaryDocument{
		GeneratedAt:   scan.Now.UTC().Format(time.RFC3339),
		Cutoff:        scan.Cutoff.UTC().Format(time.RFC3339),
		ThresholdDays: scan.ThresholdDays,
		Remote:        renderer.remoteName,
		Counts:        scan.Summary(),
		Branches:      make([]scanSummaryBranch, 0, len(scan.Classifications)),
	}

	for _, classification := range scan.Classifications {
		entry := scanSummaryBranch{
			Name:        classification.Branch.Name,
			CommitID:    classification.Branch.CommitID,
			Disposition: string(classification.Disposition),
		}
		if classification.HasCommitTime() {
			ageDays := classification.AgeDays
			entry.AgeDays = &ageDays
			entry.LastCommit = classification.CommitTime.UTC().Format(time.RFC3339)
		}
		if classification.FailureReason != nil {
			entry.Reason = classification.FailureReason.Error()
		}
		document.Branches = append(document.Branches, entry)
	}

	encoded, encodeError := yaml.Marshal(document)
	if encodeError != nil {
		return nil, fmt.Errorf(summaryRenderErrorTemplateConstant, encodeError)
	}
	return encoded, nil
}
