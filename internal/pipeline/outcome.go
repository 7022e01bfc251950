package pipeline

import (
	"errors"

	"viral-clip-gen/internal/model"
)

var (
	// ErrNoEligibleFiles means nothing in the batch had an accepted
	// extension.
	ErrNoEligibleFiles = errors.New("no eligible files in batch")
	// ErrNoArtifacts means every eligible file failed processing.
	ErrNoArtifacts = errors.New("no artifacts produced")
)

type Status string

const (
	// StatusProcessed means the file produced an artifact.
	StatusProcessed Status = "processed"
	// StatusSkipped means the extension is not on the allow-list.
	StatusSkipped Status = "skipped"
	// StatusRejected means the file failed validation.
	StatusRejected Status = "rejected"
	// StatusFailed means a processing stage errored.
	StatusFailed Status = "failed"
)

// FileOutcome is the per-file result of a batch run. A failed file
// carries its error here instead of aborting the batch.
type FileOutcome struct {
	Asset    model.UploadedAsset
	Status   Status
	Artifact *model.ProcessedArtifact
	Err      error
}

// BatchResult is everything one Run produced. Records mirror what was
// written to the store; their IDs are what preview and download URLs
// use.
type BatchResult struct {
	ID            string
	Document      string
	Transcription string
	Outcomes      []FileOutcome
	Artifacts     []model.ProcessedArtifact
	Combined      *model.ProcessedArtifact
	Records       []model.ContentRecord
}
