// Package common defines shared constants and sentinel errors used across
// the server, the transport layers and the CLI client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence error")

	// Optimistic concurrency: the record no longer has the expected status.
	ErrConflict = errors.New("conflict: milestone status changed concurrently")

	// Object storage errors (upload, delete, get, sign).
	ErrStorage = errors.New("storage error")

	// Validation errors are raised before any network call is made.
	ErrValidation = errors.New("validation error")
	// ErrSuspiciousContent is always returned together with ErrValidation.
	ErrSuspiciousContent = errors.New("suspicious content")

	// Gate errors.
	ErrAuthorization = errors.New("not authorized")
	ErrRateLimited   = errors.New("rate limit exceeded")

	// ErrPaymentNotApproved is returned together with ErrAuthorization when
	// the clean deliverable is requested before approval.
	ErrPaymentNotApproved = errors.New("payment must be approved")

	// Preview errors.
	ErrPreviewUnavailable = errors.New("preview unavailable")
	ErrPreviewSuperseded  = errors.New("preview superseded by download")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
