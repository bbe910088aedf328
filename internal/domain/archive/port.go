package archive

import (
	"context"
	"io"
)

// Repository port for persisting and listing archived analyses
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Paginate(ctx context.Context, page, pageSize int) ([]*Record, error)
}

// DocumentStore keeps the original uploaded scans
type DocumentStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
