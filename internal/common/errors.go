// Package common defines shared constants and sentinel errors used across
// the authguard components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Registry-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")

	// Generic service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnavailable  = errors.New("dependency unavailable")
	ErrorRateLimited  = errors.New("too many attempts")
	ErrorUnauthorized = errors.New("unauthorized")

	// Crypto errors.
	ErrNoSecureRandom  = errors.New("no secure randomness source")
	ErrMalformedDigest = errors.New("malformed credential digest")

	// Login failure surfaced to callers. The same value covers both
	// unknown identifiers and wrong secrets so the two are
	// indistinguishable from outside.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
