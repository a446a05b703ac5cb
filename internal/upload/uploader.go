package upload

import "context"

// Uploader stores a document image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, folder, filename string, data []byte) (string, error)
}
