package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates another run holds the sync lock
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrMalformedResponse indicates the API answered with an unexpected body shape
	ErrMalformedResponse = errors.New("malformed response")

	// ErrMalformedRecord indicates a header or line is missing a required field
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnsupportedDriver indicates the configured database driver is not known
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrInvalidToken indicates an API token failed verification
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates an API token is past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrSchedulerStopped indicates the scheduler no longer accepts runs
	ErrSchedulerStopped = errors.New("scheduler stopped")
)
