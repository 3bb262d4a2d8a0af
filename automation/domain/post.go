package domain

import (
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
)

type PostStatus string

const (
	PostPending   PostStatus = "pending"
	PostClaimed   PostStatus = "claimed"
	PostPublished PostStatus = "published"
	PostFailed    PostStatus = "failed"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostPending, PostClaimed, PostPublished, PostFailed:
		return true
	}
	return false
}

// ScheduledPost is one materialized occurrence of an automation.
type ScheduledPost struct {
	ID             string              `json:"id"`
	AutomationID   string              `json:"automation_id"`
	TenantID       string              `json:"tenant_id"`
	Content        string              `json:"content"`
	ScheduledAt    time.Time           `json:"scheduled_at"`
	ScheduledDay   string              `json:"scheduled_day"`
	Status         PostStatus          `json:"status"`
	Provider       contentgen.Provider `json:"provider"`
	UsedFallback   bool                `json:"used_fallback"`
	PlatformPostID string              `json:"platform_post_id,omitempty"`
	ErrorKind      platform.ErrorKind  `json:"error_kind,omitempty"`
	Error          string              `json:"error,omitempty"`
	Attempts       int                 `json:"attempts"`
	ClaimToken     string              `json:"-"`
	ClaimedAt      *time.Time          `json:"claimed_at,omitempty"`
	ClaimedBy      string              `json:"claimed_by,omitempty"`
	AttemptedAt    *time.Time          `json:"attempted_at,omitempty"`
	PublishedAt    *time.Time          `json:"published_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Outcome is the terminal result of one delivery attempt.
type Outcome struct {
	Status         PostStatus
	PlatformPostID string
	ErrorKind      platform.ErrorKind
	Error          string
	AttemptedAt    time.Time
}

func Published(platformPostID string, at time.Time) Outcome {
	return Outcome{Status: PostPublished, PlatformPostID: platformPostID, AttemptedAt: at}
}

func Failed(kind platform.ErrorKind, msg string, at time.Time) Outcome {
	if len(msg) > 1000 {
		msg = msg[:1000]
	}
	return Outcome{Status: PostFailed, ErrorKind: kind, Error: msg, AttemptedAt: at}
}

type PostFilter struct {
	AutomationID string
	Status       PostStatus
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}

// PostStats counts a tenant's posts per status.
type PostStats map[PostStatus]int64
