package service

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"filevault/internal/auth"
	"filevault/internal/storage"
	"filevault/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Directory is the persistent user directory and config store.
// *store.Store implements it.
type Directory interface {
	CreateUser(ctx context.Context, username, password string, isAdmin bool) (store.User, error)
	GetUserByUsername(ctx context.Context, username string) (store.User, error)

	UpsertFileBinding(ctx context.Context, username, stem, extension, blobKey string, sizeBytes int64) error
	GetFileBinding(ctx context.Context, username, stem, extension string) (store.FileBinding, error)
	ListFileBindings(ctx context.Context, username string) ([]store.FileBinding, error)

	GetSystemConfig(ctx context.Context, key string) (json.RawMessage, error)
	UpsertSystemConfig(ctx context.Context, key string, config json.RawMessage) error
	InsertSystemConfigIfAbsent(ctx context.Context, key string, config json.RawMessage) (bool, error)
}

var _ Directory = (*store.Store)(nil)

type Options struct {
	Directory          Directory
	Blobs              storage.BlobStorage
	PasswordScheme     auth.PasswordScheme
	Logger             *zap.Logger
	DefaultMaxFileSize int64
}

type Service struct {
	dir    Directory
	blobs  storage.BlobStorage
	scheme auth.PasswordScheme
	logger *zap.Logger

	defaultMaxFileSize int64
	maxFileSize        atomic.Int64
	limitGroup         singleflight.Group
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scheme := opts.PasswordScheme
	if scheme == nil {
		scheme = auth.PlainScheme{}
	}
	svc := &Service{
		dir:                opts.Directory,
		blobs:              opts.Blobs,
		scheme:             scheme,
		logger:             logger,
		defaultMaxFileSize: opts.DefaultMaxFileSize,
	}
	if svc.defaultMaxFileSize <= 0 {
		svc.defaultMaxFileSize = DefaultMaxFileSize
	}
	svc.maxFileSize.Store(svc.defaultMaxFileSize)
	return svc
}
