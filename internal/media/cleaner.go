package media

import (
	"os"
	"path/filepath"

	"viral-clip-gen/internal/logging"
)

// tmpPrefix names intermediate files the engines create so the cleaner
// can find them again.
const tmpPrefix = "vcg-tmp-"

// transientPatterns match files the decode/encode tools leave behind in
// the working directory.
var transientPatterns = []string{
	tmpPrefix + "*",
	"*.tmp",
	"ffmpeg2pass-*.log*",
}

// Cleaner removes transient artifacts from the working directory after
// every pipeline stage. It never fails: deletion errors are logged and
// swallowed, and sweeping twice is a no-op the second time.
type Cleaner struct {
	dir string
	log *logging.Logger
}

func NewCleaner(dir string, log *logging.Logger) *Cleaner {
	return &Cleaner{dir: dir, log: log}
}

func (c *Cleaner) Sweep() {
	for _, pattern := range transientPatterns {
		matches, err := filepath.Glob(filepath.Join(c.dir, pattern))
		if err != nil {
			c.log.Warnf("cleaner: bad pattern %q: %v", pattern, err)
			continue
		}
		for _, path := range matches {
			if err := os.Remove(path); err != nil {
				c.log.Warnf("cleaner: failed to remove %s: %v", path, err)
			}
		}
	}
}

// TempPath returns a working-directory path the cleaner will sweep.
func (c *Cleaner) TempPath(name string) string {
	return filepath.Join(c.dir, tmpPrefix+name)
}
