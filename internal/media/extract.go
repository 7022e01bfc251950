package media

import (
	"context"
	"fmt"

	"viral-clip-gen/internal/logging"
)

// AudioExtractor pulls the audio track out of a video so it can be
// transcribed or processed on its own. The output often lands in the
// cleaner's temp space; sweeping it is the caller's job once the
// extracted audio has been consumed.
type AudioExtractor struct {
	exec Executor
	log  *logging.Logger
}

func NewAudioExtractor(exec Executor, log *logging.Logger) *AudioExtractor {
	return &AudioExtractor{exec: exec, log: log}
}

func (e *AudioExtractor) Extract(ctx context.Context, videoPath, outputPath string) error {
	e.log.Infof("extract: audio from %s -> %s", videoPath, outputPath)
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", "128k",
		"-ar", "44100",
		"-y",
		outputPath,
	}
	if _, err := e.exec.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("%w: extract audio: %v", ErrMediaProcessing, err)
	}
	return nil
}
