package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/repository"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/schedule"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/core/config"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/core/database"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	automations *repository.AutomationGormRepository
	posts       *repository.PostGormRepository
	credentials *repository.CredentialGormRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.NewDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Name:   fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8]),
	}, false)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &fixture{
		db:          db,
		automations: repository.NewAutomationGormRepository(db),
		posts:       repository.NewPostGormRepository(db),
		credentials: repository.NewCredentialGormRepository(db, nil),
	}
}

func (f *fixture) automation(t *testing.T, tenantID string) *domain.Automation {
	t.Helper()
	a := &domain.Automation{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      "Daily tips",
		Topic:     "Go concurrency",
		Provider:  contentgen.ChatGPT,
		TimeOfDay: "09:00",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Frequency: schedule.Daily,
		Timezone:  "UTC",
		Hashtags:  []string{"golang"},
		Status:    domain.AutomationActive,
	}
	require.NoError(t, f.automations.Create(context.Background(), a))
	return a
}

// duePosts inserts n pending posts one day apart, the first at first.
func (f *fixture) duePosts(t *testing.T, a *domain.Automation, first time.Time, n int) []*domain.ScheduledPost {
	t.Helper()
	out := make([]*domain.ScheduledPost, 0, n)
	for i := 0; i < n; i++ {
		at := first.AddDate(0, 0, i).UTC()
		p := &domain.ScheduledPost{
			AutomationID: a.ID,
			TenantID:     a.TenantID,
			Content:      fmt.Sprintf("post %02d", i),
			ScheduledAt:  at,
			ScheduledDay: at.Format("2006-01-02"),
			Provider:     a.Provider,
		}
		created, err := f.posts.Insert(context.Background(), p)
		require.NoError(t, err)
		require.True(t, created)
		out = append(out, p)
	}
	return out
}

func (f *fixture) credential(t *testing.T, tenantID string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, f.credentials.Upsert(context.Background(), &domain.Credential{
		TenantID:       tenantID,
		Platform:       "fake",
		AccessToken:    "token-" + tenantID,
		ExpiresAt:      expiresAt,
		PlatformUserID: "user-" + tenantID,
	}))
}

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	calls     int
	err       error
	identity  string
	idErr     error
	idCalls   int
	onPublish func()
}

func (p *fakePublisher) Name() string { return "fake" }

func (p *fakePublisher) Identity(_ context.Context, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idCalls++
	return p.identity, p.idErr
}

func (p *fakePublisher) Publish(ctx context.Context, _ platform.Account, content string) (string, error) {
	if p.onPublish != nil {
		p.onPublish()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if err := ctx.Err(); err != nil {
		return "", &platform.Error{Kind: platform.KindTransientNetwork, Err: err}
	}
	p.published = append(p.published, content)
	return fmt.Sprintf("urn:li:share:%d", p.calls), nil
}

func (p *fakePublisher) Published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.published...)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []domain.PostEvent
}

func (r *recordedEvents) PublishPostEvent(_ context.Context, ev domain.PostEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordedEvents) ofType(t domain.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Event == t {
			n++
		}
	}
	return n
}
