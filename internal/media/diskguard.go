package media

import (
	"fmt"

	"viral-clip-gen/internal/logging"
)

// safetyFactor accounts for the intermediate copies the decode/encode
// tools materialize while processing.
const safetyFactor = 3

// DiskGuard rejects transforms that would not leave a safety margin of
// free space on the storage volume. When free-space introspection is
// unavailable it allows the operation (fail open).
type DiskGuard struct {
	root string
	free func(path string) (uint64, error)
	log  *logging.Logger
}

func NewDiskGuard(root string, log *logging.Logger) *DiskGuard {
	return &DiskGuard{root: root, free: freeSpace, log: log}
}

// Check succeeds only if free space exceeds safetyFactor times the
// requested size.
func (g *DiskGuard) Check(sizeBytes int64) error {
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	free, err := g.free(g.root)
	if err != nil {
		g.log.Warnf("diskguard: free-space check unavailable (%v), allowing", err)
		return nil
	}
	need := uint64(sizeBytes) * safetyFactor
	if free <= need {
		return fmt.Errorf("%w: free=%d need>%d", ErrResourceExhausted, free, need)
	}
	return nil
}
