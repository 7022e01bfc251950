//go:build !unix

package media

import "errors"

// freeSpace has no implementation on this platform; the disk guard
// fails open.
func freeSpace(string) (uint64, error) {
	return 0, errors.New("free-space introspection unavailable on this platform")
}
