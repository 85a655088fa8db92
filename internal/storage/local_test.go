package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalBlobStore_PutOpenRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := NewLocalBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBlobStore() error = %v", err)
	}

	content := []byte("hello")
	blob, err := store.Put(ctx, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	sum := sha256.Sum256(content)
	hexDigest := hex.EncodeToString(sum[:])
	if blob.Digest != "sha256:"+hexDigest {
		t.Fatalf("Digest = %q, want sha256:%s", blob.Digest, hexDigest)
	}
	if blob.Key != "sha256/"+hexDigest[:2]+"/"+hexDigest {
		t.Fatalf("Key = %q", blob.Key)
	}
	if blob.Size != int64(len(content)) {
		t.Fatalf("Size = %d, want %d", blob.Size, len(content))
	}

	ok, err := store.Exists(ctx, blob.Key)
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v, want true, nil", ok, err)
	}

	f, err := store.Open(ctx, blob.Key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("content = %q, want %q", got, content)
	}
	if f.Size() != int64(len(content)) {
		t.Fatalf("BlobFile.Size() = %d, want %d", f.Size(), len(content))
	}
}

func TestLocalBlobStore_PutIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalBlobStore(root)
	if err != nil {
		t.Fatalf("NewLocalBlobStore() error = %v", err)
	}

	first, err := store.Put(ctx, strings.NewReader("same"))
	if err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	second, err := store.Put(ctx, strings.NewReader("same"))
	if err != nil {
		t.Fatalf("second Put() error = %v", err)
	}
	if first.Key != second.Key {
		t.Fatalf("keys differ: %q vs %q", first.Key, second.Key)
	}

	leftovers, err := os.ReadDir(filepath.Join(root, "tmp"))
	if err != nil {
		t.Fatalf("read tmp dir: %v", err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("tmp dir has %d leftover files, want 0", len(leftovers))
	}
}

func TestLocalBlobStore_Missing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := NewLocalBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBlobStore() error = %v", err)
	}

	key := blobKey(strings.Repeat("ab", 32))
	ok, err := store.Exists(ctx, key)
	if err != nil || ok {
		t.Fatalf("Exists() = %v, %v, want false, nil", ok, err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestLocalBlobStore_RejectsEscapingKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := NewLocalBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalBlobStore() error = %v", err)
	}
	for _, key := range []string{"../etc/passwd", "/etc/passwd", "", "."} {
		if _, err := store.Open(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Open(%q) error = %v, want ErrNotFound", key, err)
		}
	}
}
