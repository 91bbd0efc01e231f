package driven

import "context"

// AudioArchive stores generated audio keyed by job ID.
type AudioArchive interface {
	// Upload stores data under key, replacing any previous object.
	Upload(ctx context.Context, key string, data []byte) error

	// Download returns ErrNotFound when key has never been uploaded.
	Download(ctx context.Context, key string) ([]byte, error)
}
