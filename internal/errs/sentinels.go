// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Error kinds surfaced by repositories and services. Each domain failure wraps exactly one of them.
var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates an ownership or visibility violation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a uniqueness violation not covered by an idempotent path
	// (duplicate membership, taken email/username).
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized indicates a missing, invalid or expired credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
