package media

import (
	"context"
	"fmt"
	"os"

	"viral-clip-gen/internal/logging"
)

// Combiner replaces a video's audio track with an independently
// processed audio file. The audio is truncated to the video's length,
// so the combined output's duration always equals the video's.
type Combiner struct {
	exec         Executor
	guard        *DiskGuard
	prober       *Prober
	cleaner      *Cleaner
	log          *logging.Logger
	targetSizeMB int
}

func NewCombiner(exec Executor, guard *DiskGuard, prober *Prober, cleaner *Cleaner, log *logging.Logger, targetSizeMB int) *Combiner {
	return &Combiner{exec: exec, guard: guard, prober: prober, cleaner: cleaner, log: log, targetSizeMB: targetSizeMB}
}

func (c *Combiner) Combine(ctx context.Context, videoPath, audioPath, outputPath string) error {
	videoInfo, err := os.Stat(videoPath)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrMediaProcessing, videoPath, err)
	}
	audioInfo, err := os.Stat(audioPath)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrMediaProcessing, audioPath, err)
	}
	if err := c.guard.Check(videoInfo.Size() + audioInfo.Size()); err != nil {
		return err
	}
	defer c.cleaner.Sweep()

	duration, err := c.prober.Duration(ctx, videoPath)
	if err != nil {
		return err
	}
	c.log.Infof("combine: %s + %s, bounding to %.2fs", videoPath, audioPath, duration)

	// The video stream defines the timeline; -t clips the replacement
	// audio when it outruns the video.
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
	}
	args = append(args, OptimizeTranscode(c.targetSizeMB).Args()...)
	args = append(args,
		"-t", fmt.Sprintf("%.2f", duration),
		"-y",
		outputPath,
	)

	if _, err := c.exec.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("%w: combine audio with video: %v", ErrMediaProcessing, err)
	}
	return nil
}
