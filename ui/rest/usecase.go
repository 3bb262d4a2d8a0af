package rest

import (
	"context"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/application"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/dispatchpool"
)

// AutomationUsecase is implemented by application.AutomationService.
type AutomationUsecase interface {
	Create(ctx context.Context, tenantID string, req domain.CreateAutomationRequest) (*domain.Automation, application.Report, error)
	List(ctx context.Context, tenantID string, filter domain.AutomationFilter) ([]*domain.Automation, error)
	Get(ctx context.Context, tenantID, id string) (*domain.Automation, error)
	Pause(ctx context.Context, tenantID, id string) (*domain.Automation, error)
	Resume(ctx context.Context, tenantID, id string) (*domain.Automation, application.Report, error)
	Delete(ctx context.Context, tenantID, id string) (int64, error)
	Preview(ctx context.Context, req domain.CreateAutomationRequest, limit int) ([]domain.PreviewItem, error)
	ExtendHorizons(ctx context.Context) (application.ExtendReport, error)

	ListPosts(ctx context.Context, tenantID string, filter domain.PostFilter) ([]*domain.ScheduledPost, error)
	GetPost(ctx context.Context, tenantID, id string) (*domain.ScheduledPost, error)
	UpdatePostContent(ctx context.Context, tenantID, id string, req domain.UpdatePostRequest) (*domain.ScheduledPost, error)
	ResubmitPost(ctx context.Context, tenantID, id string) (*domain.ScheduledPost, error)
	PostStats(ctx context.Context, tenantID string) (domain.PostStats, error)

	StoreCredential(ctx context.Context, tenantID string, req domain.StoreCredentialRequest) (*domain.Credential, error)
	CredentialStatus(ctx context.Context, tenantID string) (application.CredentialStatus, error)
}

// DispatchUsecase is implemented by application.Dispatcher.
type DispatchUsecase interface {
	RunOnce(ctx context.Context) (application.CycleResult, error)
	RequeueStale(ctx context.Context) (int, error)
	PoolStats() dispatchpool.Stats
}
