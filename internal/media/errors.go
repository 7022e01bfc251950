package media

import "errors"

var (
	// ErrResourceExhausted is returned by the disk guard when free
	// space would not leave a safety margin for intermediate copies.
	ErrResourceExhausted = errors.New("insufficient disk space for media processing")

	// ErrMediaProcessing wraps codec/tool failures during a transform.
	// The caller keeps the original unprocessed asset.
	ErrMediaProcessing = errors.New("media processing failed")
)
