// Package storage republishes media bytes to durable object storage.
package storage

import "context"

// Uploader is the object-storage contract: raw bytes plus a logical
// folder in, public URL out.
type Uploader interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
}
