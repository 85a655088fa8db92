package service

import (
	"context"
	"errors"
	"fmt"

	"filevault/internal/store"
)

// BootstrapAdmin creates the admin account if it does not exist yet.
// It reports whether the account was created by this call.
func (s *Service) BootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("%w: admin username and password required", ErrMissingFields)
	}
	if _, err := s.dir.GetUserByUsername(ctx, username); err == nil {
		return false, nil
	} else if !store.IsNotFound(err) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	stored, err := s.scheme.Hash(password)
	if err != nil {
		return false, err
	}
	if _, err := s.dir.CreateUser(ctx, username, stored, true); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
