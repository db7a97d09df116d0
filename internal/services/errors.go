package services

import "errors"

// Common service errors. Handlers map these onto HTTP status codes.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")

	// ErrStageLocked is returned when a stage action is attempted before the
	// stage unlocked for the user.
	ErrStageLocked = errors.New("stage is locked")

	// ErrPrerequisiteMissing is returned when a stage completion lacks its
	// required artifact, such as a monitoring response or commitment.
	ErrPrerequisiteMissing = errors.New("stage prerequisite missing")
)
