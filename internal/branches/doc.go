// Package branches classifies the branches of a remote by the age of their head
// commit and emits a report plus a deletion script for the ones past the threshold.
//
// GitRemoteLister and CommitTimestampResolver gather the facts, Classifier applies
// the protection and age policy, ArtifactRenderer turns a ScanResult into text and
// ArtifactWriter persists it. Service runs the pipeline and CommandBuilder exposes
// it as the analyze Cobra command.
package branches
