// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository- and blob-level errors.
	ErrorNotFound  = errors.New("not found")
	ErrorStorageIO = errors.New("storage i/o error")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Account errors.
	ErrorDuplicateAccount = errors.New("account already exists")

	// Auth errors (invalid or malformed bearer token).
	ErrInvalidToken = errors.New("invalid token")

	// Cipher errors.
	ErrEmptyKey = errors.New("empty encryption key")
)
