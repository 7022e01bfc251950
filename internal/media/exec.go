package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs an external media tool and returns its stdout.
// Engines depend on this interface so tests can fake ffmpeg.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ffmpegSem limits the number of concurrent ffmpeg/ffprobe processes to 1
// to avoid "pthread_create() failed: Resource temporarily unavailable"
// under heavy load.
var ffmpegSem = make(chan struct{}, 1)

type cmdExecutor struct{}

func NewExecutor() Executor {
	return &cmdExecutor{}
}

func (e *cmdExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	ffmpegSem <- struct{}{}
	defer func() { <-ffmpegSem }()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("command %q failed: %w: %s", name, err, stderrStr)
		}
		return "", fmt.Errorf("command %q failed: %w", name, err)
	}

	return stdout.String(), nil
}
