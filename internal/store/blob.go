package store

import "context"

// BlobStore is the remote tier of the content read-through. Get returns
// ErrBlobMiss for keys it does not hold.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Close() error
}

func resourceBlobKey(resource Resource) string {
	return "content/" + string(resource) + ".json"
}
