package media

import (
	"context"
	"fmt"
	"os"
	"strings"

	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/model"
)

type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// ParsePosition resolves a client-supplied position, defaulting to
// bottom placement.
func ParsePosition(s string) Position {
	if Position(s) == PositionTop {
		return PositionTop
	}
	return PositionBottom
}

// VideoOverlay renders a styled text layer over a video's full duration
// and transcodes the composite with the optimizer's parameters. Videos
// without an audio track pass through without error.
type VideoOverlay struct {
	exec         Executor
	guard        *DiskGuard
	cleaner      *Cleaner
	log          *logging.Logger
	targetSizeMB int
}

func NewVideoOverlay(exec Executor, guard *DiskGuard, cleaner *Cleaner, log *logging.Logger, targetSizeMB int) *VideoOverlay {
	return &VideoOverlay{exec: exec, guard: guard, cleaner: cleaner, log: log, targetSizeMB: targetSizeMB}
}

func (e *VideoOverlay) Apply(ctx context.Context, videoPath, text string, pos Position, theme model.Theme, intensity model.Intensity, outputPath string) error {
	info, err := os.Stat(videoPath)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", ErrMediaProcessing, videoPath, err)
	}
	if err := e.guard.Check(info.Size()); err != nil {
		return err
	}
	defer e.cleaner.Sweep()

	filter := DrawTextFilter(text, pos, theme, intensity)
	e.log.Infof("overlay: %s pos=%s theme=%s intensity=%s", videoPath, pos, theme, intensity)

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vf", filter,
	}
	args = append(args, OptimizeTranscode(e.targetSizeMB).Args()...)
	args = append(args, "-y", outputPath)

	if _, err := e.exec.Run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("%w: text overlay: %v", ErrMediaProcessing, err)
	}
	return nil
}

// DrawTextFilter builds the drawtext expression: theme font and colors,
// intensity-scaled size and box opacity, horizontally centered, and
// anchored 10% from the top or 85% from the top for bottom placement.
// The layer spans the whole video because drawtext has no enable window.
func DrawTextFilter(text string, pos Position, theme model.Theme, intensity model.Intensity) string {
	p := model.ProfileFor(theme)
	size := model.FontSize(theme, intensity)
	opacity := model.OverlayOpacity(intensity)

	y := "h*0.85"
	if pos == PositionTop {
		y = "h*0.10"
	}

	return fmt.Sprintf(
		"drawtext=text='%s':font=%s:fontsize=%d:fontcolor=%s:box=1:boxcolor=%s@%.2f:boxborderw=10:x=(w-text_w)/2:y=%s",
		escapeDrawText(text), p.Font, size, p.Color, p.BgColor, opacity, y,
	)
}

// escapeDrawText quotes the characters ffmpeg's filter parser treats
// specially inside a drawtext text value.
func escapeDrawText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}
