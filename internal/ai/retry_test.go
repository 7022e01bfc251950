package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"viral-clip-gen/internal/logging"
)

func TestRetryBackoffSchedule(t *testing.T) {
	p := DefaultRetryPolicy()
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 10 * time.Second},
		{4, 10 * time.Second},
	}
	for _, c := range cases {
		if got := p.delay(c.attempt); got != c.want {
			t.Errorf("delay(%d) = %s, want %s", c.attempt, got, c.want)
		}
	}
}

func TestRetryDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := fastRetry(3).Do(context.Background(), "op", logging.NewDiscard(), func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fastRetry(3).Do(context.Background(), "op", logging.NewDiscard(), func() error {
		calls++
		return errors.New("nope")
	})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, ErrExternalCapability) {
		t.Fatalf("err = %v, want ErrExternalCapability", err)
	}
}

func TestRetryDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	p := RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Minute, MaxBackoff: time.Minute}
	err := p.Do(ctx, "op", logging.NewDiscard(), func() error {
		calls++
		return errors.New("nope")
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, ErrExternalCapability) {
		t.Fatalf("err = %v", err)
	}
}
