package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"filevault/internal/store"
)

// Register creates a non-admin account with no files.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrMissingFields
	}

	if _, err := s.dir.GetUserByUsername(ctx, username); err == nil {
		return ErrDuplicateUser
	} else if !store.IsNotFound(err) {
		return fmt.Errorf("%w: lookup user: %v", ErrStorageFailure, err)
	}

	stored, err := s.scheme.Hash(password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if _, err := s.dir.CreateUser(ctx, username, stored, false); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrDuplicateUser
		}
		s.logger.Error("create user failed", zapUsername(username), zapErr(err))
		return fmt.Errorf("%w: create user: %v", ErrStorageFailure, err)
	}

	// The record must be readable right after insertion.
	if _, err := s.dir.GetUserByUsername(ctx, username); err != nil {
		s.logger.Error("created user not readable", zapUsername(username), zapErr(err))
		return fmt.Errorf("%w: verify user: %v", ErrStorageFailure, err)
	}

	s.logger.Info("user registered", zapUsername(username))
	return nil
}
