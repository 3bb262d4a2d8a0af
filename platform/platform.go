// Package platform defines the seam between the dispatcher and the social
// networks it publishes to.
package platform

import (
	"context"
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindAuth             ErrorKind = "auth"
	KindRateLimited      ErrorKind = "rate_limited"
	KindTransientNetwork ErrorKind = "transient_network"
	KindPlatformRejected ErrorKind = "platform_rejected"
)

// Retryable reports whether an operator resubmitting the post could
// reasonably expect a different outcome without changing anything.
func (k ErrorKind) Retryable() bool {
	return k == KindRateLimited || k == KindTransientNetwork
}

// Error is a classified delivery failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind of a classified error. Unclassified errors are
// treated as transient network failures.
func KindOf(err error) ErrorKind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	return KindTransientNetwork
}

// Account is what a publisher needs to act on behalf of a tenant.
type Account struct {
	AccessToken string
	// UserID is the platform's identifier for the account owner. When empty
	// the publisher looks it up.
	UserID string
}

type Publisher interface {
	Name() string
	// Identity returns the platform user id the token belongs to.
	Identity(ctx context.Context, accessToken string) (string, error)
	// Publish creates a public post and returns the platform's post id.
	Publish(ctx context.Context, account Account, content string) (string, error)
}
