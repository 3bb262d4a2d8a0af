package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
	"github.com/sirupsen/logrus"
)

// IdentityChecker pings the platform with a token.
type IdentityChecker interface {
	Identity(ctx context.Context, accessToken string) (string, error)
}

type ResolverConfig struct {
	Platform  string
	LiveCheck bool
	CheckTTL  time.Duration
}

// CredentialResolver hands the dispatcher a token it believes will work.
type CredentialResolver struct {
	credentials domain.CredentialRepository
	identity    IdentityChecker
	cache       domain.FreshnessCache
	cfg         ResolverConfig
	now         func() time.Time
}

func NewCredentialResolver(credentials domain.CredentialRepository, identity IdentityChecker, cache domain.FreshnessCache, cfg ResolverConfig) *CredentialResolver {
	if cfg.CheckTTL <= 0 {
		cfg.CheckTTL = 5 * time.Minute
	}
	return &CredentialResolver{
		credentials: credentials,
		identity:    identity,
		cache:       cache,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Resolve returns ErrCredentialNotFound, ErrCredentialExpired or
// ErrCredentialUnreadable for tokens that cannot be used. Other errors are
// storage failures.
func (r *CredentialResolver) Resolve(ctx context.Context, tenantID string) (*domain.Credential, error) {
	cred, err := r.credentials.Get(ctx, tenantID, r.cfg.Platform)
	if err != nil {
		return nil, err
	}
	if !cred.ValidAt(r.now()) {
		return nil, domain.ErrCredentialExpired
	}

	if !r.cfg.LiveCheck || r.identity == nil || r.cache.IsFresh(ctx, tenantID) {
		return cred, nil
	}

	userID, err := r.identity.Identity(ctx, cred.AccessToken)
	if err != nil {
		if platform.KindOf(err) == platform.KindAuth {
			r.cache.Invalidate(ctx, tenantID)
			return nil, fmt.Errorf("%w: %v", domain.ErrCredentialExpired, err)
		}
		// a flaky identity endpoint is not a reason to fail the post
		logrus.WithError(err).WithField("tenant_id", tenantID).Warn("[RESOLVER] live credential check failed, trusting expiry")
		return cred, nil
	}

	r.cache.MarkFresh(ctx, tenantID, r.cfg.CheckTTL)
	if userID != "" && userID != cred.PlatformUserID {
		if err := r.credentials.SetPlatformUserID(ctx, tenantID, r.cfg.Platform, userID); err != nil {
			logrus.WithError(err).Warn("[RESOLVER] failed to store platform user id")
		}
		cred.PlatformUserID = userID
	}
	return cred, nil
}

// Invalidate drops the cached live-check result after the platform rejected
// the token.
func (r *CredentialResolver) Invalidate(ctx context.Context, tenantID string) {
	r.cache.Invalidate(ctx, tenantID)
}

// IsCredentialError reports whether err means the tenant has no usable token.
func IsCredentialError(err error) bool {
	return errors.Is(err, domain.ErrCredentialNotFound) ||
		errors.Is(err, domain.ErrCredentialExpired) ||
		errors.Is(err, domain.ErrCredentialUnreadable)
}
