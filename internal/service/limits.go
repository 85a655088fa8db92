package service

import (
	"context"
	"encoding/json"
	"fmt"

	"filevault/internal/auth"
	"filevault/internal/metrics"
	"filevault/internal/store"

	"go.uber.org/zap"
)

const configKeyMaxFileSize = "max_file_size"

// DefaultMaxFileSize is used while no limit has been stored.
const DefaultMaxFileSize int64 = 50000000

type maxFileSizeConfig struct {
	MaxFileSize int64 `json:"max_file_size"`
}

// MaxFileSize returns the upload limit, refreshed from the config store.
// Concurrent refreshes share one query. If the store is unreachable the
// last known value is returned.
func (s *Service) MaxFileSize(ctx context.Context) int64 {
	v, err, _ := s.limitGroup.Do(configKeyMaxFileSize, func() (any, error) {
		return s.loadMaxFileSize(ctx)
	})
	if err != nil {
		cached := s.maxFileSize.Load()
		s.logger.Warn("refresh max file size failed, using cached value",
			zap.Int64("max_file_size", cached), zapErr(err))
		return cached
	}
	return v.(int64)
}

func (s *Service) loadMaxFileSize(ctx context.Context) (int64, error) {
	raw, err := s.dir.GetSystemConfig(ctx, configKeyMaxFileSize)
	if err != nil {
		if store.IsNotFound(err) {
			s.setCachedMaxFileSize(s.defaultMaxFileSize)
			return s.defaultMaxFileSize, nil
		}
		return 0, err
	}
	var cfg maxFileSizeConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return 0, fmt.Errorf("parse max file size config: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return 0, fmt.Errorf("stored max file size %d is not positive", cfg.MaxFileSize)
	}
	s.setCachedMaxFileSize(cfg.MaxFileSize)
	return cfg.MaxFileSize, nil
}

func (s *Service) setCachedMaxFileSize(v int64) {
	s.maxFileSize.Store(v)
	metrics.SetMaxFileSize(v)
}

// SetMaxFileSize overwrites the upload limit. Only admins may call it.
func (s *Service) SetMaxFileSize(ctx context.Context, identity auth.Identity, size int64) error {
	if !identity.IsAdmin {
		return ErrForbidden
	}
	if size <= 0 {
		return fmt.Errorf("%w: max_file_size must be a positive integer", ErrInvalidInput)
	}
	raw, err := json.Marshal(maxFileSizeConfig{MaxFileSize: size})
	if err != nil {
		return err
	}
	if err := s.dir.UpsertSystemConfig(ctx, configKeyMaxFileSize, raw); err != nil {
		return fmt.Errorf("%w: save max file size: %v", ErrStorageFailure, err)
	}
	s.limitGroup.Forget(configKeyMaxFileSize)
	s.setCachedMaxFileSize(size)
	s.logger.Info("max file size updated",
		zap.Int64("max_file_size", size), zapUsername(identity.Username))
	return nil
}

// EnsureMaxFileSize stores the default limit if none exists yet, then loads
// the effective value.
func (s *Service) EnsureMaxFileSize(ctx context.Context) (int64, error) {
	raw, err := json.Marshal(maxFileSizeConfig{MaxFileSize: s.defaultMaxFileSize})
	if err != nil {
		return 0, err
	}
	inserted, err := s.dir.InsertSystemConfigIfAbsent(ctx, configKeyMaxFileSize, raw)
	if err != nil {
		return 0, fmt.Errorf("seed max file size: %w", err)
	}
	if inserted {
		s.logger.Info("max file size seeded", zap.Int64("max_file_size", s.defaultMaxFileSize))
	}
	return s.loadMaxFileSize(ctx)
}
