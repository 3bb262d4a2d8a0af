package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/repository"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveResolver(f *fixture, identity IdentityChecker) *CredentialResolver {
	return NewCredentialResolver(f.credentials, identity, repository.NewMemoryFreshnessCache(), ResolverConfig{
		Platform:  "fake",
		LiveCheck: true,
		CheckTTL:  time.Minute,
	})
}

func TestResolver_ClockOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "valid", time.Now().Add(time.Hour))
	f.credential(t, "expired", time.Now().Add(-time.Minute))

	r := newResolver(f)

	cred, err := r.Resolve(ctx, "valid")
	require.NoError(t, err)
	assert.Equal(t, "token-valid", cred.AccessToken)

	_, err = r.Resolve(ctx, "expired")
	assert.ErrorIs(t, err, domain.ErrCredentialExpired)
	assert.True(t, IsCredentialError(err))

	_, err = r.Resolve(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
	assert.True(t, IsCredentialError(err))
}

func TestResolver_ExpiredSkipsLiveCheck(t *testing.T) {
	f := newFixture(t)
	f.credential(t, "tenant-a", time.Now().Add(-time.Minute))
	identity := &fakePublisher{identity: "someone"}

	_, err := liveResolver(f, identity).Resolve(context.Background(), "tenant-a")
	assert.ErrorIs(t, err, domain.ErrCredentialExpired)
	assert.Zero(t, identity.idCalls)
}

func TestResolver_LiveCheckCachesAndStoresUserID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.credential(t, "tenant-a", time.Now().Add(time.Hour))
	identity := &fakePublisher{identity: "abc123"}
	r := liveResolver(f, identity)

	cred, err := r.Resolve(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "abc123", cred.PlatformUserID)

	_, err = r.Resolve(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, 1, identity.idCalls)

	stored, err := f.credentials.Get(ctx, "tenant-a", "fake")
	require.NoError(t, err)
	assert.Equal(t, "abc123", stored.PlatformUserID)

	r.Invalidate(ctx, "tenant-a")
	_, err = r.Resolve(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, 2, identity.idCalls)
}

func TestResolver_LiveCheckRejected(t *testing.T) {
	f := newFixture(t)
	f.credential(t, "tenant-a", time.Now().Add(time.Hour))
	identity := &fakePublisher{idErr: &platform.Error{Kind: platform.KindAuth, StatusCode: 401, Message: "revoked"}}

	_, err := liveResolver(f, identity).Resolve(context.Background(), "tenant-a")
	assert.ErrorIs(t, err, domain.ErrCredentialExpired)
	assert.Contains(t, err.Error(), "revoked")
}

func TestResolver_LiveCheckOutageTrustsExpiry(t *testing.T) {
	f := newFixture(t)
	f.credential(t, "tenant-a", time.Now().Add(time.Hour))
	identity := &fakePublisher{idErr: errors.New("dial tcp: i/o timeout")}

	cred, err := liveResolver(f, identity).Resolve(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Equal(t, "token-tenant-a", cred.AccessToken)
}
