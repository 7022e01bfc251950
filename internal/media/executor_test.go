package media

import (
	"context"
	"errors"
)

// fakeExecutor records invocations and replays canned outputs so engine
// tests run without ffmpeg installed.
type fakeExecutor struct {
	calls   [][]string
	outputs []string
	errs    []error
}

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	i := len(f.calls) - 1
	var out string
	if i < len(f.outputs) {
		out = f.outputs[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return out, err
}

func (f *fakeExecutor) lastCall() []string {
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func hasArgPair(call []string, flag, value string) bool {
	for i := 0; i < len(call)-1; i++ {
		if call[i] == flag && call[i+1] == value {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")
