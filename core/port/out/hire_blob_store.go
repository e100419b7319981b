package out

import "context"

// BlobStore uploads user-provided files (resumes, photos, logos) to an
// external store and returns a public URL.
type BlobStore interface {
	Upload(ctx context.Context, filename string, content []byte) (string, error)
}
