package domain

import (
	"context"
	"time"
)

type AutomationRepository interface {
	Create(ctx context.Context, a *Automation) error
	Get(ctx context.Context, tenantID, id string) (*Automation, error)
	List(ctx context.Context, tenantID string, filter AutomationFilter) ([]*Automation, error)
	ListActive(ctx context.Context) ([]*Automation, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status AutomationStatus) error
	UpdateMaterializedThrough(ctx context.Context, id, day string) error
}

type PostRepository interface {
	// Insert stores a pending post unless one already exists for the same
	// automation and day. It reports whether a row was written.
	Insert(ctx context.Context, post *ScheduledPost) (bool, error)
	ExistingDays(ctx context.Context, automationID string, days []string) (map[string]bool, error)

	// ListDue returns pending posts of active automations scheduled at or
	// before now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*ScheduledPost, error)
	// Claim moves a post from pending to claimed, recording which runner
	// holds it. It reports false when another dispatcher got there first.
	Claim(ctx context.Context, id, token, claimedBy string, now time.Time) (bool, error)
	// Finalize writes the terminal outcome if the claim is still ours.
	Finalize(ctx context.Context, id, token string, outcome Outcome) (bool, error)
	// RequeueStale returns claims older than claimedBefore to pending.
	RequeueStale(ctx context.Context, claimedBefore time.Time) ([]*ScheduledPost, error)

	Get(ctx context.Context, tenantID, id string) (*ScheduledPost, error)
	List(ctx context.Context, tenantID string, filter PostFilter) ([]*ScheduledPost, error)
	UpdateContent(ctx context.Context, tenantID, id, content string) error
	Resubmit(ctx context.Context, tenantID, id string) error
	DeletePending(ctx context.Context, automationID string) (int64, error)
	Stats(ctx context.Context, tenantID string) (PostStats, error)
}

type CredentialRepository interface {
	Upsert(ctx context.Context, c *Credential) error
	Get(ctx context.Context, tenantID, platform string) (*Credential, error)
	SetPlatformUserID(ctx context.Context, tenantID, platform, userID string) error
}

// CycleLock keeps dispatch cycles from overlapping across processes.
type CycleLock interface {
	// TryAcquire returns a release func when the lock was taken.
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error)
}

// FreshnessCache remembers tenants whose token recently passed a live check.
type FreshnessCache interface {
	IsFresh(ctx context.Context, tenantID string) bool
	MarkFresh(ctx context.Context, tenantID string, ttl time.Duration)
	Invalidate(ctx context.Context, tenantID string)
}
