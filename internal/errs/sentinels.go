// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken,
	// applicant already assigned to the session).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated actor lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidArgument indicates input validation failure.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Credential and audit sentinels.
var (
	// ErrConfiguration indicates the credential signing secret is not configured.
	ErrConfiguration = errors.New("credential signing secret not configured")

	// ErrSignatureMismatch indicates the presented signature does not match the payload.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrMalformedPayload indicates the presented payload cannot be parsed.
	ErrMalformedPayload = errors.New("malformed credential payload")

	// ErrUnresolvedBinding indicates a validly signed credential references an
	// exam session or applicant that no longer exists.
	ErrUnresolvedBinding = errors.New("unresolved credential binding")

	// ErrAuditWrite indicates the audit store rejected or failed the write.
	ErrAuditWrite = errors.New("audit write failed")
)
