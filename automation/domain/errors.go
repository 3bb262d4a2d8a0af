package domain

import "errors"

var (
	ErrAutomationNotFound = errors.New("automation not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrCredentialExpired  = errors.New("credential expired")
	// ErrCredentialUnreadable marks a stored token that no longer decrypts,
	// e.g. after the secret key changed.
	ErrCredentialUnreadable = errors.New("credential unreadable")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrCycleInProgress      = errors.New("dispatch cycle already in progress")
	ErrMissingTenant        = errors.New("tenant id is required")
)
