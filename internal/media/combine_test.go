package media

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"viral-clip-gen/internal/logging"
)

func TestCombinerCombine(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	audio := filepath.Join(dir, "track_processed.mp3")
	out := filepath.Join(dir, "clip_combined.mp4")
	touch(t, video)
	touch(t, audio)

	// First call answers the ffprobe duration query, second the ffmpeg run
	exec := &fakeExecutor{outputs: []string{"12.50\n", ""}}
	log := logging.NewDiscard()
	c := NewCombiner(exec, guardWithFree(1<<30, nil), NewProber(exec), NewCleaner(dir, log), log, 20)

	if err := c.Combine(context.Background(), video, audio, out); err != nil {
		t.Fatalf("Combine() = %v", err)
	}

	if len(exec.calls) != 2 {
		t.Fatalf("expected probe + encode calls, got %d", len(exec.calls))
	}
	if exec.calls[0][0] != "ffprobe" {
		t.Errorf("first call should probe the video, got %v", exec.calls[0])
	}

	encode := exec.calls[1]
	// Output is clipped to the video duration: audio longer than the
	// video gets truncated, total duration stays 12.50s
	if !hasArgPair(encode, "-t", "12.50") {
		t.Errorf("missing duration bound: %v", encode)
	}
	// The replacement audio fully substitutes the original track
	if !hasArgPair(encode, "-map", "0:v:0") || !hasArgPair(encode, "-map", "1:a:0") {
		t.Errorf("stream mapping wrong: %v", encode)
	}
	if !hasArgPair(encode, "-c:v", "libx264") {
		t.Errorf("combiner output must be transcoded: %v", encode)
	}
}

func TestCombinerGuardSeesCombinedSize(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	audio := filepath.Join(dir, "track.mp3")
	touch(t, video) // 1 byte
	touch(t, audio) // 1 byte

	// free = 6 = 3 × (1+1): not strictly greater, so the guard trips
	exec := &fakeExecutor{}
	log := logging.NewDiscard()
	c := NewCombiner(exec, guardWithFree(6, nil), NewProber(exec), NewCleaner(dir, log), log, 20)

	err := c.Combine(context.Background(), video, audio, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("Combine() = %v, want ErrResourceExhausted", err)
	}
	if len(exec.calls) != 0 {
		t.Errorf("no tool should run after a guard trip, got %d calls", len(exec.calls))
	}
}

func TestCombinerProbeFailure(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	audio := filepath.Join(dir, "track.mp3")
	touch(t, video)
	touch(t, audio)

	exec := &fakeExecutor{errs: []error{errBoom}}
	log := logging.NewDiscard()
	c := NewCombiner(exec, guardWithFree(1<<30, nil), NewProber(exec), NewCleaner(dir, log), log, 20)

	err := c.Combine(context.Background(), video, audio, filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, ErrMediaProcessing) {
		t.Fatalf("Combine() = %v, want ErrMediaProcessing", err)
	}
}

func TestProberDuration(t *testing.T) {
	exec := &fakeExecutor{outputs: []string{"7.25\n"}}
	d, err := NewProber(exec).Duration(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Duration() = %v", err)
	}
	if d != 7.25 {
		t.Errorf("Duration() = %v, want 7.25", d)
	}

	exec = &fakeExecutor{outputs: []string{"N/A\n"}}
	if _, err := NewProber(exec).Duration(context.Background(), "clip.mp4"); !errors.Is(err, ErrMediaProcessing) {
		t.Errorf("unparseable duration should fail, got %v", err)
	}
}
