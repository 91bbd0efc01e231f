// Package natsarchive stores generated audio in a NATS JetStream object store.
package natsarchive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ericfisherdev/ttsvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AudioArchive = (*Archive)(nil)

// Archive implements driven.AudioArchive on a JetStream object store bucket.
type Archive struct {
	bucket string
	store  nats.ObjectStore
}

// New binds to bucketName, creating it on first use.
func New(js nats.JetStreamContext, bucketName string) (*Archive, error) {
	store, err := js.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: "Generated text-to-speech audio keyed by job id.",
		Storage:     nats.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		if !errors.Is(err, nats.ErrStreamNameAlreadyInUse) && !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("create object store bucket %q: %w", bucketName, err)
		}
		store, err = js.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf("bind object store bucket %q: %w", bucketName, err)
		}
	}

	return &Archive{bucket: bucketName, store: store}, nil
}

// Upload saves data under key.
func (a *Archive) Upload(ctx context.Context, key string, data []byte) error {
	meta := &nats.ObjectMeta{
		Name:    key,
		Headers: nats.Header{"Content-Type": []string{"audio/mpeg"}},
	}
	if _, err := a.store.Put(meta, bytes.NewReader(data), nats.Context(ctx)); err != nil {
		return fmt.Errorf("put object %q to bucket %q: %w", key, a.bucket, err)
	}
	return nil
}

// Download returns the object stored under key.
func (a *Archive) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.store.Get(key, nats.Context(ctx))
	if errors.Is(err, nats.ErrObjectNotFound) {
		return nil, fmt.Errorf("object %q: %w", key, driven.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get object %q from bucket %q: %w", key, a.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()
	if readErr != nil {
		return nil, fmt.Errorf("read object %q: %w", key, readErr)
	}
	if closeErr != nil {
		return data, fmt.Errorf("close object %q: %w", key, closeErr)
	}
	return data, nil
}
