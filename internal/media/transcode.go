package media

import (
	"fmt"
	"strconv"
)

// DefaultTargetSizeMB bounds output file size when the caller does not
// configure one.
const DefaultTargetSizeMB = 20

// TranscodeParams is the fixed encoder parameter set every video write
// goes through.
type TranscodeParams struct {
	VideoCodec   string
	VideoBitrate string
	AudioCodec   string
	AudioBitrate string
	Preset       string
	Threads      int
}

// OptimizeTranscode computes encoder parameters bounding output size to
// targetSizeMB. Pure: the same target always yields the same set.
func OptimizeTranscode(targetSizeMB int) TranscodeParams {
	if targetSizeMB <= 0 {
		targetSizeMB = DefaultTargetSizeMB
	}
	return TranscodeParams{
		VideoCodec:   "libx264",
		VideoBitrate: fmt.Sprintf("%dM", targetSizeMB),
		AudioCodec:   "aac",
		AudioBitrate: "128k",
		Preset:       "ultrafast",
		Threads:      2,
	}
}

// Args renders the parameter set as ffmpeg output options.
func (p TranscodeParams) Args() []string {
	return []string{
		"-c:v", p.VideoCodec,
		"-b:v", p.VideoBitrate,
		"-preset", p.Preset,
		"-c:a", p.AudioCodec,
		"-b:a", p.AudioBitrate,
		"-threads", strconv.Itoa(p.Threads),
	}
}
