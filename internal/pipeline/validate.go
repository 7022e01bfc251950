package pipeline

import (
	"fmt"

	"github.com/mowshon/moviego"
)

// safeLoadVideo wraps moviego.Load to catch panics from the library on
// corrupt containers.
func safeLoadVideo(path string) (vid moviego.Video, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("moviego.Load panicked: %v", r)
		}
	}()
	vid, err = moviego.Load(path)
	return
}

// ValidVideo reports whether the file parses as a playable video.
// Rejected files get a per-file outcome instead of poisoning the batch.
func ValidVideo(path string) bool {
	_, err := safeLoadVideo(path)
	return err == nil
}
