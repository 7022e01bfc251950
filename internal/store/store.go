package store

import (
	"context"
	"errors"

	"viral-clip-gen/internal/model"
)

var ErrNotFound = errors.New("content record not found")

// ContentStore persists the metadata of generated content. The
// pipeline writes a record per batch, the HTTP layer reads them back
// for preview and download.
type ContentStore interface {
	Save(ctx context.Context, rec *model.ContentRecord) error
	Get(ctx context.Context, id string) (*model.ContentRecord, error)
	Recent(ctx context.Context, limit int) ([]model.ContentRecord, error)
}
