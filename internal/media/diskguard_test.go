package media

import (
	"errors"
	"testing"

	"viral-clip-gen/internal/logging"
)

func guardWithFree(free uint64, err error) *DiskGuard {
	return &DiskGuard{
		root: "/",
		free: func(string) (uint64, error) { return free, err },
		log:  logging.NewDiscard(),
	}
}

func TestDiskGuardCheck(t *testing.T) {
	tests := []struct {
		name      string
		free      uint64
		size      int64
		wantAllow bool
	}{
		{"plenty of space", 1 << 30, 1 << 20, true},
		{"exactly the margin is not enough", 300, 100, false},
		{"one byte over the margin", 301, 100, true},
		{"no space at all", 0, 100, false},
		{"zero-sized request needs some free space", 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guardWithFree(tt.free, nil).Check(tt.size)
			if tt.wantAllow && err != nil {
				t.Errorf("Check(%d) with free=%d = %v, want allow", tt.size, tt.free, err)
			}
			if !tt.wantAllow {
				if !errors.Is(err, ErrResourceExhausted) {
					t.Errorf("Check(%d) with free=%d = %v, want ErrResourceExhausted", tt.size, tt.free, err)
				}
			}
		})
	}
}

func TestDiskGuardFailsOpen(t *testing.T) {
	g := guardWithFree(0, errors.New("statfs unsupported"))
	if err := g.Check(1 << 30); err != nil {
		t.Errorf("Check with unavailable introspection = %v, want allow", err)
	}
}
