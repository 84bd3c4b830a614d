// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrNoSession indicates no session snapshot is persisted (logged out).
	ErrNoSession = errors.New("no saved session")

	// ErrSessionExpired indicates an unrecoverable authorization failure:
	// the refresh protocol failed or a retried request was rejected again.
	// The local session has already been torn down when this is returned.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnauthorized indicates the server rejected the caller's credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyBasket indicates order placement on an empty or absent basket.
	ErrEmptyBasket = errors.New("basket is empty")
)
