package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Uploads stores user-submitted files (profile images, resumes) under
// prefixed, collision-free keys.
type Uploads struct {
	backend ObjectStorage
}

// NewUploads constructs an Uploads store over the provided backend.
func NewUploads(backend ObjectStorage) *Uploads {
	return &Uploads{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (u *Uploads) EnsureBucket(ctx context.Context) error {
	return u.backend.EnsureBucket(ctx)
}

// Save stores a file under the given prefix and returns the object key.
// The original filename only contributes its extension.
func (u *Uploads) Save(ctx context.Context, prefix, filename string, r io.Reader, size int64, contentType string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
	if err := u.backend.Put(ctx, key, r, size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Open returns a reader for a stored file.
func (u *Uploads) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return u.backend.Get(ctx, key)
}

// Remove deletes a stored file.
func (u *Uploads) Remove(ctx context.Context, key string) error {
	return u.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (u *Uploads) Bucket() string {
	return u.backend.Bucket()
}
