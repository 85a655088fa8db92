package service

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrMissingFields  = errors.New("missing fields")
	ErrDuplicateUser  = errors.New("duplicate user")
	ErrStorageFailure = errors.New("storage failure")
	ErrFileTooLarge   = errors.New("file too large")
	ErrForbidden      = errors.New("forbidden")

	// ErrAccessDenied wraps every download failure. Callers outside the
	// service should only ever surface this one.
	ErrAccessDenied = errors.New("access denied")

	// Download failure causes, always wrapped together with ErrAccessDenied.
	ErrFileNotFound = errors.New("file not bound")
	ErrBlobMissing  = errors.New("blob missing")
)
