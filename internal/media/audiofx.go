package media

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/model"
)

// AudioEffects applies theme- and intensity-parameterized filters to an
// audio file and exports MP3 at a fixed bitrate and sample rate. Output
// duration equals input duration; no trimming happens here.
type AudioEffects struct {
	exec    Executor
	guard   *DiskGuard
	cleaner *Cleaner
	log     *logging.Logger
}

func NewAudioEffects(exec Executor, guard *DiskGuard, cleaner *Cleaner, log *logging.Logger) *AudioEffects {
	return &AudioEffects{exec: exec, guard: guard, cleaner: cleaner, log: log}
}

func (e *AudioEffects) Process(ctx context.Context, inputPath string, theme model.Theme, intensity model.Intensity, outputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrMediaProcessing, inputPath, err)
	}
	if err := e.guard.Check(info.Size()); err != nil {
		return err
	}
	defer e.cleaner.Sweep()

	chain := AudioFilterChain(theme, intensity)
	e.log.Infof("audiofx: %s theme=%s intensity=%s chain=%s", inputPath, theme, intensity, chain)

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-af", chain,
		"-c:a", "libmp3lame",
		"-b:a", "128k",
		"-ar", "44100",
		"-y",
		outputPath,
	}
	if _, err := e.exec.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("%w: audio effects: %v", ErrMediaProcessing, err)
	}
	return nil
}

// AudioFilterChain builds the ffmpeg -af chain for a theme at an
// intensity: normalize, band filter, compress, re-normalize.
func AudioFilterChain(theme model.Theme, intensity model.Intensity) string {
	filters := []string{"loudnorm"}

	highpass, lowpass := model.FilterBand(theme, intensity)
	if highpass > 0 {
		filters = append(filters, fmt.Sprintf("highpass=f=%d", highpass))
	}
	if lowpass > 0 {
		filters = append(filters, fmt.Sprintf("lowpass=f=%d", lowpass))
	}

	ratio := model.EffectiveCompressRatio(theme, intensity)
	filters = append(filters, "acompressor=ratio="+strconv.FormatFloat(ratio, 'f', -1, 64))

	filters = append(filters, "loudnorm")
	return strings.Join(filters, ",")
}
