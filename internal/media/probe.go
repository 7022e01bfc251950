package media

import (
	"context"
	"fmt"
	"time"
)

// Prober reads media metadata through ffprobe.
type Prober struct {
	exec Executor
}

func NewProber(exec Executor) *Prober {
	return &Prober{exec: exec}
}

// Duration returns the container duration in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := p.exec.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: probe %s: %v", ErrMediaProcessing, path, err)
	}

	var duration float64
	if _, err := fmt.Sscanf(out, "%f", &duration); err != nil || duration <= 0 {
		return 0, fmt.Errorf("%w: unparseable duration for %s: %q", ErrMediaProcessing, path, out)
	}
	return duration, nil
}
