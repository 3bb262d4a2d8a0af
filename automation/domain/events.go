package domain

import (
	"context"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
)

type EventType string

const (
	EventPostPublished EventType = "post.published"
	EventPostFailed    EventType = "post.failed"
	EventPostRequeued  EventType = "post.requeued"
)

// PostEvent is emitted on every lifecycle transition the dispatcher makes.
type PostEvent struct {
	Event          EventType          `json:"event"`
	PostID         string             `json:"post_id"`
	AutomationID   string             `json:"automation_id"`
	TenantID       string             `json:"tenant_id"`
	Status         PostStatus         `json:"status"`
	ErrorKind      platform.ErrorKind `json:"error_kind,omitempty"`
	Error          string             `json:"error,omitempty"`
	PlatformPostID string             `json:"platform_post_id,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

func NewPostEvent(post *ScheduledPost, outcome Outcome) PostEvent {
	ev := PostEvent{
		PostID:         post.ID,
		AutomationID:   post.AutomationID,
		TenantID:       post.TenantID,
		Status:         outcome.Status,
		ErrorKind:      outcome.ErrorKind,
		Error:          outcome.Error,
		PlatformPostID: outcome.PlatformPostID,
		OccurredAt:     outcome.AttemptedAt,
	}
	switch outcome.Status {
	case PostPublished:
		ev.Event = EventPostPublished
	case PostFailed:
		ev.Event = EventPostFailed
	default:
		ev.Event = EventPostRequeued
	}
	return ev
}

type EventPublisher interface {
	PublishPostEvent(ctx context.Context, ev PostEvent) error
}
