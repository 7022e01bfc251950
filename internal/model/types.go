package model

import (
	"path/filepath"
	"strings"
	"time"
)

type FileType string

const (
	FileTypeAudio FileType = "audio"
	FileTypeVideo FileType = "video"
)

// AllowedExtensions is the upload allow-list. Files with any other
// extension are dropped from the batch, not rejected as a whole.
var AllowedExtensions = []string{"mp3", "mp4"}

// FileTypeFor classifies a filename by its declared extension.
func FileTypeFor(filename string) (FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "mp3":
		return FileTypeAudio, true
	case "mp4":
		return FileTypeVideo, true
	}
	return "", false
}

// UploadedAsset is an ephemeral record of a received file. The path
// points under the upload root; the original name is what the client
// sent and is used again on download.
type UploadedAsset struct {
	Path         string
	Type         FileType
	OriginalName string
}

type ArtifactKind string

const (
	ArtifactProcessedAudio ArtifactKind = "processed_audio"
	ArtifactOverlaidVideo  ArtifactKind = "overlaid_video"
	ArtifactCombinedVideo  ArtifactKind = "combined_video"
)

// ProcessedArtifact is a durable pipeline output. Never mutated after
// creation; removal is the retention sweep's business.
type ProcessedArtifact struct {
	Kind        ArtifactKind
	Source      UploadedAsset
	Theme       Theme
	Intensity   Intensity
	OutputPath  string
	OverlayText string
}

// ContentRecord is the persisted row linking an upload to its generated
// text and processed artifact.
type ContentRecord struct {
	ID                string
	OriginalFilename  string
	StoredFilename    string
	FileType          string
	Theme             string
	GeneratedContent  string
	ProcessedFilename string
	CreatedAt         time.Time
}

// GenerationParams are the client-supplied knobs for the generated copy.
type GenerationParams struct {
	Theme         Theme
	Intensity     Intensity
	Tone          string
	Platform      string
	Length        string
	Language      string
	ContentFormat string
	TargetEmotion string
	CallToAction  string
}

// DefaultGenerationParams returns the documented form-field defaults.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Theme:         ThemeAnonymous,
		Intensity:     IntensityMedium,
		Tone:          "professional",
		Platform:      "tiktok",
		Length:        "short",
		Language:      "en",
		ContentFormat: "story",
		TargetEmotion: "neutral",
		CallToAction:  "follow",
	}
}
