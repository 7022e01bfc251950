// Package pipeline runs uploaded clips through transcription, copy
// generation, and media processing, and persists the results.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"viral-clip-gen/internal/ai"
	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/media"
	"viral-clip-gen/internal/model"
	"viral-clip-gen/internal/store"
)

// Engine interfaces over internal/media, narrow enough to fake in
// tests.
type (
	AudioProcessor interface {
		Process(ctx context.Context, inputPath string, theme model.Theme, intensity model.Intensity, outputPath string) error
	}
	VideoOverlayer interface {
		Apply(ctx context.Context, videoPath, text string, pos media.Position, theme model.Theme, intensity model.Intensity, outputPath string) error
	}
	AVCombiner interface {
		Combine(ctx context.Context, videoPath, audioPath, outputPath string) error
	}
	AudioExtractor interface {
		Extract(ctx context.Context, videoPath, outputPath string) error
	}
	Transcriber interface {
		Transcribe(ctx context.Context, audioPath string) (string, error)
	}
	CopyGenerator interface {
		Generate(ctx context.Context, req ai.ContentRequest) string
	}
)

// Deps wires the orchestrator. Everything is injected; the orchestrator
// owns no globals.
type Deps struct {
	Audio       AudioProcessor
	Overlay     VideoOverlayer
	Combiner    AVCombiner
	Extractor   AudioExtractor
	Transcriber Transcriber
	Generator   CopyGenerator
	Store       store.ContentStore
	Cleaner     *media.Cleaner
	OutputDir   string
	Log         *logging.Logger
}

type Orchestrator struct {
	deps Deps

	validVideo func(path string) bool
	newID      func() string
	now        func() time.Time
}

func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{
		deps:       deps,
		validVideo: ValidVideo,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// Run processes one upload batch. Individual files fail individually;
// Run itself errors only when nothing was eligible or nothing came out.
func (o *Orchestrator) Run(ctx context.Context, assets []model.UploadedAsset, params model.GenerationParams, pos media.Position) (*BatchResult, error) {
	res := &BatchResult{ID: o.newID()}

	eligible, skipped := lo.FilterReject(assets, func(a model.UploadedAsset, _ int) bool {
		_, ok := model.FileTypeFor(a.OriginalName)
		return ok
	})
	for _, a := range skipped {
		o.deps.Log.Warnf("batch %s: skipping %s: unsupported extension", res.ID, a.OriginalName)
		res.Outcomes = append(res.Outcomes, FileOutcome{Asset: a, Status: StatusSkipped})
	}
	if len(eligible) == 0 {
		return res, ErrNoEligibleFiles
	}
	for i := range eligible {
		if eligible[i].Type == "" {
			eligible[i].Type, _ = model.FileTypeFor(eligible[i].OriginalName)
		}
	}

	res.Transcription = o.transcribe(ctx, res.ID, eligible)
	res.Document = o.deps.Generator.Generate(ctx, ai.ContentRequest{
		FileType:      batchFileType(eligible),
		Params:        params,
		Transcription: res.Transcription,
	})
	overlayText := ai.OverlayText(res.Document)

	for _, a := range eligible {
		outcome := o.processOne(ctx, a, params, pos, overlayText)
		res.Outcomes = append(res.Outcomes, outcome)
		if outcome.Artifact != nil {
			res.Artifacts = append(res.Artifacts, *outcome.Artifact)
		}
	}
	if len(res.Artifacts) == 0 {
		return res, ErrNoArtifacts
	}

	o.combine(ctx, res, params)
	o.persist(ctx, res)
	return res, nil
}

// transcribe covers every eligible file: audio files go to the
// transcriber directly, videos get their track extracted first. The
// per-file transcripts are joined with a single space. A file that
// fails costs only its own transcript. Extracted temp audio is swept
// once the whole batch has been read.
func (o *Orchestrator) transcribe(ctx context.Context, batchID string, eligible []model.UploadedAsset) string {
	if o.deps.Transcriber == nil {
		return ""
	}
	defer o.deps.Cleaner.Sweep()

	var transcripts []string
	for i, a := range eligible {
		src := a.Path
		if a.Type == model.FileTypeVideo {
			tmp := o.deps.Cleaner.TempPath(fmt.Sprintf("%s-%d.mp3", batchID, i))
			if err := o.deps.Extractor.Extract(ctx, a.Path, tmp); err != nil {
				o.deps.Log.Warnf("batch %s: audio extraction from %s failed: %v", batchID, a.OriginalName, err)
				continue
			}
			src = tmp
		}
		text, err := o.deps.Transcriber.Transcribe(ctx, src)
		if err != nil {
			o.deps.Log.Warnf("batch %s: transcription of %s failed, continuing without: %v", batchID, a.OriginalName, err)
			continue
		}
		if text != "" {
			transcripts = append(transcripts, text)
		}
	}
	return strings.Join(transcripts, " ")
}

func (o *Orchestrator) processOne(ctx context.Context, a model.UploadedAsset, params model.GenerationParams, pos media.Position, overlayText string) FileOutcome {
	switch a.Type {
	case model.FileTypeAudio:
		out := o.outputPath(a.Path, "_processed.mp3")
		if err := o.deps.Audio.Process(ctx, a.Path, params.Theme, params.Intensity, out); err != nil {
			o.deps.Log.Errorf("process audio %s: %v", a.OriginalName, err)
			return FileOutcome{Asset: a, Status: StatusFailed, Err: err}
		}
		return FileOutcome{Asset: a, Status: StatusProcessed, Artifact: &model.ProcessedArtifact{
			Kind: model.ArtifactProcessedAudio, Source: a,
			Theme: params.Theme, Intensity: params.Intensity, OutputPath: out,
		}}
	case model.FileTypeVideo:
		if !o.validVideo(a.Path) {
			o.deps.Log.Warnf("rejecting %s: not a playable video", a.OriginalName)
			return FileOutcome{Asset: a, Status: StatusRejected, Err: fmt.Errorf("%s: not a playable video", a.OriginalName)}
		}
		out := o.outputPath(a.Path, "_with_text.mp4")
		if err := o.deps.Overlay.Apply(ctx, a.Path, overlayText, pos, params.Theme, params.Intensity, out); err != nil {
			o.deps.Log.Errorf("overlay video %s: %v", a.OriginalName, err)
			return FileOutcome{Asset: a, Status: StatusFailed, Err: err}
		}
		return FileOutcome{Asset: a, Status: StatusProcessed, Artifact: &model.ProcessedArtifact{
			Kind: model.ArtifactOverlaidVideo, Source: a,
			Theme: params.Theme, Intensity: params.Intensity,
			OutputPath: out, OverlayText: overlayText,
		}}
	}
	return FileOutcome{Asset: a, Status: StatusSkipped}
}

// combine merges the first overlaid video with the first processed
// audio. A combine failure costs only the combined artifact.
func (o *Orchestrator) combine(ctx context.Context, res *BatchResult, params model.GenerationParams) {
	video, okV := lo.Find(res.Artifacts, func(a model.ProcessedArtifact) bool { return a.Kind == model.ArtifactOverlaidVideo })
	audio, okA := lo.Find(res.Artifacts, func(a model.ProcessedArtifact) bool { return a.Kind == model.ArtifactProcessedAudio })
	if !okV || !okA {
		return
	}
	out := filepath.Join(o.deps.OutputDir, res.ID+"_combined.mp4")
	if err := o.deps.Combiner.Combine(ctx, video.OutputPath, audio.OutputPath, out); err != nil {
		o.deps.Log.Errorf("batch %s: combine failed: %v", res.ID, err)
		return
	}
	combined := model.ProcessedArtifact{
		Kind: model.ArtifactCombinedVideo, Source: video.Source,
		Theme: params.Theme, Intensity: params.Intensity,
		OutputPath: out, OverlayText: video.OverlayText,
	}
	res.Combined = &combined
	res.Artifacts = append(res.Artifacts, combined)
}

// persist writes one record per artifact. Storage trouble is logged;
// the artifacts already exist on disk and stay usable.
func (o *Orchestrator) persist(ctx context.Context, res *BatchResult) {
	for _, art := range res.Artifacts {
		rec := &model.ContentRecord{
			ID:                o.newID(),
			OriginalFilename:  art.Source.OriginalName,
			StoredFilename:    filepath.Base(art.Source.Path),
			FileType:          string(art.Source.Type),
			Theme:             string(art.Theme),
			GeneratedContent:  res.Document,
			ProcessedFilename: filepath.Base(art.OutputPath),
			CreatedAt:         o.now(),
		}
		if err := o.deps.Store.Save(ctx, rec); err != nil {
			o.deps.Log.Errorf("batch %s: save record for %s: %v", res.ID, rec.ProcessedFilename, err)
			continue
		}
		res.Records = append(res.Records, *rec)
	}
}

func (o *Orchestrator) outputPath(inputPath, suffix string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(o.deps.OutputDir, stem+suffix)
}

func batchFileType(eligible []model.UploadedAsset) model.FileType {
	if _, ok := lo.Find(eligible, func(a model.UploadedAsset) bool { return a.Type == model.FileTypeVideo }); ok {
		return model.FileTypeVideo
	}
	return model.FileTypeAudio
}
