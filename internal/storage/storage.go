package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no blob exists under a key.
var ErrNotFound = errors.New("blob not found")

// Blob describes a stored object as assigned at write time.
type Blob struct {
	Key    string
	Digest string
	Size   int64
}

// BlobFile is an opened blob. The caller must close it.
type BlobFile struct {
	body io.ReadCloser
	size int64
}

func NewBlobFile(body io.ReadCloser, size int64) *BlobFile {
	return &BlobFile{body: body, size: size}
}

func (b *BlobFile) Read(p []byte) (int, error) { return b.body.Read(p) }
func (b *BlobFile) Close() error               { return b.body.Close() }
func (b *BlobFile) Size() int64                { return b.size }

// BlobStorage is the interface for blob storage backends.
// Both local-disk and S3-compatible stores implement this.
type BlobStorage interface {
	// Put writes data from r and returns the backend key assigned to it.
	// Keys are derived from the sha256 of the content, so writes are idempotent.
	Put(ctx context.Context, r io.Reader) (Blob, error)

	// Open retrieves a previously stored blob by its key.
	Open(ctx context.Context, key string) (*BlobFile, error)

	// Exists reports whether a blob is retrievable under key.
	Exists(ctx context.Context, key string) (bool, error)
}

func blobKey(hexDigest string) string {
	return "sha256/" + hexDigest[:2] + "/" + hexDigest
}
