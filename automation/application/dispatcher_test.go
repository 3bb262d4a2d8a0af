package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/repository"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/crypto"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	mu          sync.Mutex
	cred        *domain.Credential
	err         error
	invalidated []string
}

func (r *stubResolver) Resolve(_ context.Context, tenantID string) (*domain.Credential, error) {
	if r.err != nil {
		return nil, r.err
	}
	c := *r.cred
	c.TenantID = tenantID
	return &c, nil
}

func (r *stubResolver) Invalidate(_ context.Context, tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, tenantID)
}

func newTestDispatcher(t *testing.T, f *fixture, resolver Resolver, pub platform.Publisher, events domain.EventPublisher, lock domain.CycleLock) *Dispatcher {
	t.Helper()
	d := NewDispatcher(f.posts, resolver, pub, events, lock, DispatcherConfig{
		BatchSize:      10,
		Workers:        4,
		ClaimTTL:       10 * time.Minute,
		CycleBudget:    time.Minute,
		PublishTimeout: 5 * time.Second,
		RunnerID:       "test-runner",
	})
	t.Cleanup(d.Close)
	return d
}

func newResolver(f *fixture) *CredentialResolver {
	return NewCredentialResolver(f.credentials, nil, repository.NewMemoryFreshnessCache(), ResolverConfig{Platform: "fake"})
}

func TestDispatcher_PublishesOldestBatchInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	posts := f.duePosts(t, a, time.Now().AddDate(0, 0, -20), 15)
	f.credential(t, a.TenantID, time.Now().Add(24*time.Hour))

	pub := &fakePublisher{}
	events := &recordedEvents{}
	d := newTestDispatcher(t, f, newResolver(f), pub, events, nil)

	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, CycleProcessed, res.Outcome)
	assert.Equal(t, 10, res.Selected)
	assert.Equal(t, 10, res.Claimed)
	assert.Equal(t, 10, res.Published)
	assert.Zero(t, res.Failed)

	want := make([]string, 0, 10)
	for _, p := range posts[:10] {
		want = append(want, p.Content)
	}
	assert.Equal(t, want, pub.Published())
	assert.Equal(t, 10, events.ofType(domain.EventPostPublished))

	for i, p := range posts {
		got, err := f.posts.Get(ctx, a.TenantID, p.ID)
		require.NoError(t, err)
		if i < 10 {
			assert.Equal(t, domain.PostPublished, got.Status, "post %d", i)
			assert.NotEmpty(t, got.PlatformPostID)
			assert.NotNil(t, got.PublishedAt)
			assert.Equal(t, 1, got.Attempts)
			assert.Equal(t, "test-runner", got.ClaimedBy)
		} else {
			assert.Equal(t, domain.PostPending, got.Status, "post %d", i)
		}
	}

	res, err = d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Published)
}

func TestDispatcher_IdleWhenNothingDue(t *testing.T) {
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	f.duePosts(t, a, time.Now().Add(48*time.Hour), 2)

	pub := &fakePublisher{}
	d := newTestDispatcher(t, f, newResolver(f), pub, nil, nil)

	res, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CycleIdle, res.Outcome)
	assert.Zero(t, res.Selected)
	assert.Zero(t, pub.calls)
}

func TestDispatcher_ExpiredCredentialFailsWithAuth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	posts := f.duePosts(t, a, time.Now().AddDate(0, 0, -3), 2)
	f.credential(t, a.TenantID, time.Now().Add(-time.Hour))

	pub := &fakePublisher{}
	events := &recordedEvents{}
	d := newTestDispatcher(t, f, newResolver(f), pub, events, nil)

	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.Zero(t, res.Published)
	assert.Zero(t, pub.calls)
	assert.Equal(t, 2, events.ofType(domain.EventPostFailed))

	for _, p := range posts {
		got, err := f.posts.Get(ctx, a.TenantID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PostFailed, got.Status)
		assert.Equal(t, platform.KindAuth, got.ErrorKind)
		assert.Contains(t, got.Error, "expired")
	}

	stored, err := f.automations.Get(ctx, a.TenantID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AutomationActive, stored.Status)
}

func TestDispatcher_MissingCredentialFailsWithAuth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	posts := f.duePosts(t, a, time.Now().Add(-time.Hour), 1)

	d := newTestDispatcher(t, f, newResolver(f), &fakePublisher{}, nil, nil)

	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	got, err := f.posts.Get(ctx, a.TenantID, posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostFailed, got.Status)
	assert.Equal(t, platform.KindAuth, got.ErrorKind)
}

func TestDispatcher_UnreadableCredentialFailsWithAuth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	posts := f.duePosts(t, a, time.Now().Add(-time.Hour), 1)

	oldKey, err := crypto.NewTokenCipher("old-secret")
	require.NoError(t, err)
	newKey, err := crypto.NewTokenCipher("rotated-secret")
	require.NoError(t, err)

	require.NoError(t, repository.NewCredentialGormRepository(f.db, oldKey).Upsert(ctx, &domain.Credential{
		TenantID:    a.TenantID,
		Platform:    "fake",
		AccessToken: "token-a",
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}))
	resolver := NewCredentialResolver(repository.NewCredentialGormRepository(f.db, newKey), nil,
		repository.NewMemoryFreshnessCache(), ResolverConfig{Platform: "fake"})

	pub := &fakePublisher{}
	d := newTestDispatcher(t, f, resolver, pub, nil, nil)

	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Claimed)
	assert.Equal(t, 1, res.Failed)
	assert.Zero(t, pub.calls)

	got, err := f.posts.Get(ctx, a.TenantID, posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostFailed, got.Status)
	assert.Equal(t, platform.KindAuth, got.ErrorKind)
	assert.Equal(t, 1, got.Attempts)

	// a failed post is terminal; later cycles must not pick it up again
	d.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	res, err = d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, CycleIdle, res.Outcome)
	assert.Zero(t, res.Requeued)
}

func TestDispatcher_ClassifiesPublishFailures(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		kind       platform.ErrorKind
		invalidate bool
	}{
		{"unauthorized", &platform.Error{Kind: platform.KindAuth, StatusCode: 401, Message: "token revoked"}, platform.KindAuth, true},
		{"rate limited", &platform.Error{Kind: platform.KindRateLimited, StatusCode: 429, Message: "slow down"}, platform.KindRateLimited, false},
		{"rejected", &platform.Error{Kind: platform.KindPlatformRejected, StatusCode: 422, Message: "duplicate"}, platform.KindPlatformRejected, false},
		{"unclassified", errors.New("connection reset"), platform.KindTransientNetwork, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			a := f.automation(t, "tenant-a")
			posts := f.duePosts(t, a, time.Now().Add(-time.Hour), 1)

			resolver := &stubResolver{cred: &domain.Credential{AccessToken: "tok", PlatformUserID: "me"}}
			d := newTestDispatcher(t, f, resolver, &fakePublisher{err: tc.err}, nil, nil)

			res, err := d.RunOnce(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, res.Failed)

			got, err := f.posts.Get(ctx, a.TenantID, posts[0].ID)
			require.NoError(t, err)
			assert.Equal(t, domain.PostFailed, got.Status)
			assert.Equal(t, tc.kind, got.ErrorKind)
			assert.NotEmpty(t, got.Error)
			if tc.invalidate {
				assert.Equal(t, []string{a.TenantID}, resolver.invalidated)
			} else {
				assert.Empty(t, resolver.invalidated)
			}
		})
	}
}

func TestDispatcher_ConcurrentCycleRejected(t *testing.T) {
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	f.duePosts(t, a, time.Now().Add(-time.Hour), 1)

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	pub := &fakePublisher{onPublish: func() {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}}
	resolver := &stubResolver{cred: &domain.Credential{AccessToken: "tok", PlatformUserID: "me"}}
	d := newTestDispatcher(t, f, resolver, pub, nil, nil)

	done := make(chan CycleResult, 1)
	go func() {
		res, err := d.RunOnce(context.Background())
		assert.NoError(t, err)
		done <- res
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first cycle never reached publish")
	}

	_, err := d.RunOnce(context.Background())
	assert.ErrorIs(t, err, domain.ErrCycleInProgress)

	close(release)
	res := <-done
	assert.Equal(t, 1, res.Published)
}

func TestDispatcher_LockedElsewhere(t *testing.T) {
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	f.duePosts(t, a, time.Now().Add(-time.Hour), 1)

	lock := repository.NewMemoryCycleLock()
	_, ok, err := lock.TryAcquire(context.Background(), cycleLockName, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	pub := &fakePublisher{}
	d := newTestDispatcher(t, f, &stubResolver{cred: &domain.Credential{AccessToken: "tok"}}, pub, nil, lock)

	res, err := d.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, res.LockedElsewhere)
	assert.Equal(t, CycleIdle, res.Outcome)
	assert.Zero(t, pub.calls)
}

func TestDispatcher_LostClaimDiscardsOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	posts := f.duePosts(t, a, time.Now().Add(-time.Hour), 1)

	var once sync.Once
	pub := &fakePublisher{}
	pub.onPublish = func() {
		once.Do(func() {
			// a watchdog elsewhere decided the claim was stale
			_, err := f.posts.RequeueStale(ctx, time.Now().Add(time.Hour))
			assert.NoError(t, err)
		})
	}
	events := &recordedEvents{}
	d := newTestDispatcher(t, f, &stubResolver{cred: &domain.Credential{AccessToken: "tok"}}, pub, events, nil)

	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Claimed)
	assert.Zero(t, res.Published)
	assert.Zero(t, res.Failed)
	assert.Zero(t, events.ofType(domain.EventPostPublished))

	got, err := f.posts.Get(ctx, a.TenantID, posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
}

func TestDispatcher_RequeuesStaleClaimsBeforeSelecting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	posts := f.duePosts(t, a, time.Now().Add(-2*time.Hour), 1)

	ok, err := f.posts.Claim(ctx, posts[0].ID, "tok", "crashed-runner", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.True(t, ok)

	events := &recordedEvents{}
	d := newTestDispatcher(t, f, &stubResolver{cred: &domain.Credential{AccessToken: "tok"}}, &fakePublisher{}, events, nil)

	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Requeued)
	assert.Equal(t, 1, res.Published)
	assert.Equal(t, 1, events.ofType(domain.EventPostRequeued))

	got, err := f.posts.Get(ctx, a.TenantID, posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostPublished, got.Status)
	assert.Equal(t, 2, got.Attempts)
}

func TestDispatcher_StorageErrorLeavesPostClaimed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	posts := f.duePosts(t, a, time.Now().Add(-time.Hour), 1)

	pub := &fakePublisher{}
	d := newTestDispatcher(t, f, &stubResolver{err: errors.New("database is locked")}, pub, nil, nil)

	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Claimed)
	assert.Zero(t, res.Published)
	assert.Zero(t, res.Failed)
	assert.Zero(t, pub.calls)

	got, err := f.posts.Get(ctx, a.TenantID, posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostClaimed, got.Status)
}

func TestDispatcher_SkipsPausedAutomations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.automation(t, "tenant-a")
	posts := f.duePosts(t, a, time.Now().Add(-time.Hour), 1)
	require.NoError(t, f.automations.UpdateStatus(ctx, a.TenantID, a.ID, domain.AutomationPaused))

	pub := &fakePublisher{}
	d := newTestDispatcher(t, f, &stubResolver{cred: &domain.Credential{AccessToken: "tok"}}, pub, nil, nil)

	res, err := d.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, CycleIdle, res.Outcome)

	got, err := f.posts.Get(ctx, a.TenantID, posts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostPending, got.Status)
}
