package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"filevault/internal/auth"
	"filevault/internal/metrics"
	"filevault/internal/storage"
	"filevault/internal/store"

	"go.uber.org/zap"
)

type UploadResult struct {
	Filename string
	Size     int64
	Digest   string
}

// Download is an opened file ready to be streamed. Body must be closed.
type Download struct {
	Filename string
	Size     int64
	Body     io.ReadCloser
}

type FileEntry struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Upload stores body and binds it to filename in the caller's own directory.
// Content whose length reaches the limit is rejected.
func (s *Service) Upload(ctx context.Context, identity auth.Identity, filename string, body io.Reader) (UploadResult, error) {
	stem, extension, err := splitFilename(filename)
	if err != nil {
		metrics.RecordUpload("invalid", 0)
		return UploadResult{}, err
	}

	limit := s.MaxFileSize(ctx)
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(body, limit))
	if err != nil {
		metrics.RecordUpload("invalid", 0)
		return UploadResult{}, fmt.Errorf("%w: read upload: %v", ErrInvalidInput, err)
	}
	if n >= limit {
		metrics.RecordUpload("too_large", 0)
		return UploadResult{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}

	blob, err := s.blobs.Put(ctx, &buf)
	if err != nil {
		return UploadResult{}, s.uploadStorageFailure(identity, filename, "put blob", err)
	}
	ok, err := s.blobs.Exists(ctx, blob.Key)
	if err != nil || !ok {
		if err == nil {
			err = storage.ErrNotFound
		}
		return UploadResult{}, s.uploadStorageFailure(identity, filename, "verify blob", err)
	}

	if err := s.dir.UpsertFileBinding(ctx, identity.Username, stem, extension, blob.Key, blob.Size); err != nil {
		return UploadResult{}, s.uploadStorageFailure(identity, filename, "bind file", err)
	}

	metrics.RecordUpload("success", blob.Size)
	s.logger.Info("file uploaded",
		zapUsername(identity.Username),
		zap.String("filename", filename),
		zap.Int64("size", blob.Size),
		zap.String("digest", blob.Digest))
	return UploadResult{Filename: filename, Size: blob.Size, Digest: blob.Digest}, nil
}

func (s *Service) uploadStorageFailure(identity auth.Identity, filename, step string, err error) error {
	metrics.RecordUpload("storage_failure", 0)
	s.logger.Error("upload failed",
		zapUsername(identity.Username),
		zap.String("filename", filename),
		zap.String("step", step),
		zapErr(err))
	return fmt.Errorf("%w: %s: %v", ErrStorageFailure, step, err)
}

// Download resolves filename against the caller's own bindings. Every
// failure wraps ErrAccessDenied together with its cause.
func (s *Service) Download(ctx context.Context, identity auth.Identity, filename string) (*Download, error) {
	d, err := s.download(ctx, identity, filename)
	if err != nil {
		metrics.RecordDownload("denied", 0)
		s.logger.Debug("download denied",
			zapUsername(identity.Username),
			zap.String("filename", filename),
			zapErr(err))
		return nil, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	metrics.RecordDownload("success", d.Size)
	return d, nil
}

func (s *Service) download(ctx context.Context, identity auth.Identity, filename string) (*Download, error) {
	stem, extension, err := splitFilename(filename)
	if err != nil {
		return nil, err
	}
	binding, err := s.dir.GetFileBinding(ctx, identity.Username, stem, extension)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	f, err := s.blobs.Open(ctx, binding.BlobKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrBlobMissing, err)
		}
		return nil, err
	}
	return &Download{Filename: filename, Size: f.Size(), Body: f}, nil
}

// ListFiles returns the caller's bindings ordered by name.
func (s *Service) ListFiles(ctx context.Context, identity auth.Identity) ([]FileEntry, error) {
	bindings, err := s.dir.ListFileBindings(ctx, identity.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: list files: %v", ErrStorageFailure, err)
	}
	out := make([]FileEntry, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, FileEntry{
			Filename:  joinFilename(b.Stem, b.Extension),
			Size:      b.SizeBytes,
			UpdatedAt: b.UpdatedAt,
		})
	}
	return out, nil
}
