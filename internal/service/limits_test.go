package service

import (
	"context"
	"errors"
	"testing"

	"filevault/internal/auth"
)

var (
	adminIdentity = auth.Identity{Username: "admin", IsAdmin: true}
	alice         = auth.Identity{Username: "alice"}
	bob           = auth.Identity{Username: "bob"}
)

func TestMaxFileSize_DefaultWhenUnset(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	if got := svc.MaxFileSize(context.Background()); got != DefaultMaxFileSize {
		t.Fatalf("MaxFileSize() = %d, want %d", got, DefaultMaxFileSize)
	}
}

func TestSetMaxFileSize_NonAdminForbidden(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t)
	if err := svc.SetMaxFileSize(ctx, adminIdentity, 100); err != nil {
		t.Fatalf("admin SetMaxFileSize() error = %v", err)
	}

	if err := svc.SetMaxFileSize(ctx, alice, 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("SetMaxFileSize() error = %v, want ErrForbidden", err)
	}
	if got := svc.MaxFileSize(ctx); got != 100 {
		t.Fatalf("MaxFileSize() = %d after forbidden set, want 100", got)
	}
}

func TestSetMaxFileSize_RejectsNonPositive(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	for _, size := range []int64{0, -1} {
		if err := svc.SetMaxFileSize(context.Background(), adminIdentity, size); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("SetMaxFileSize(%d) error = %v, want ErrInvalidInput", size, err)
		}
	}
}

func TestSetMaxFileSize_ObservedByOtherInstance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, dir := newTestService(t)
	other := New(Options{Directory: dir, Blobs: svc.blobs})

	if err := svc.SetMaxFileSize(ctx, adminIdentity, 42); err != nil {
		t.Fatalf("SetMaxFileSize() error = %v", err)
	}
	if got := other.MaxFileSize(ctx); got != 42 {
		t.Fatalf("other.MaxFileSize() = %d, want 42", got)
	}
}

func TestMaxFileSize_FallsBackToCachedOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, dir := newTestService(t)
	if err := svc.SetMaxFileSize(ctx, adminIdentity, 64); err != nil {
		t.Fatalf("SetMaxFileSize() error = %v", err)
	}

	dir.mu.Lock()
	dir.configErr = errDirectoryDown
	dir.mu.Unlock()

	if got := svc.MaxFileSize(ctx); got != 64 {
		t.Fatalf("MaxFileSize() = %d with store down, want cached 64", got)
	}
}

func TestEnsureMaxFileSize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := newMemDirectory()
	svc := New(Options{Directory: dir, DefaultMaxFileSize: 1000})

	got, err := svc.EnsureMaxFileSize(ctx)
	if err != nil || got != 1000 {
		t.Fatalf("EnsureMaxFileSize() = %d, %v, want 1000, nil", got, err)
	}
	if err := svc.SetMaxFileSize(ctx, adminIdentity, 7); err != nil {
		t.Fatalf("SetMaxFileSize() error = %v", err)
	}

	restarted := New(Options{Directory: dir, DefaultMaxFileSize: 1000})
	got, err = restarted.EnsureMaxFileSize(ctx)
	if err != nil || got != 7 {
		t.Fatalf("EnsureMaxFileSize() after restart = %d, %v, want 7, nil", got, err)
	}
}
