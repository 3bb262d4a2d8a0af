package repository

import (
	"context"

	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/infrastructure/valkey"
	"github.com/sirupsen/logrus"
)

// ValkeyFreshnessCache shares live-check results between dispatcher hosts.
// Errors are logged and read as "not fresh", which only costs an extra ping.
type ValkeyFreshnessCache struct {
	client *valkey.Client
}

func NewValkeyFreshnessCache(client *valkey.Client) *ValkeyFreshnessCache {
	return &ValkeyFreshnessCache{client: client}
}

func (c *ValkeyFreshnessCache) key(tenantID string) string {
	return c.client.Key("credential", "fresh", tenantID)
}

func (c *ValkeyFreshnessCache) IsFresh(ctx context.Context, tenantID string) bool {
	inner := c.client.Inner()
	n, err := inner.Do(ctx, inner.B().Exists().Key(c.key(tenantID)).Build()).AsInt64()
	if err != nil {
		logrus.WithError(err).Debug("[RESOLVER] freshness lookup failed")
		return false
	}
	return n == 1
}

func (c *ValkeyFreshnessCache) MarkFresh(ctx context.Context, tenantID string, ttl time.Duration) {
	inner := c.client.Inner()
	if err := inner.Do(ctx, inner.B().Set().Key(c.key(tenantID)).Value("1").Ex(ttl).Build()).Error(); err != nil {
		logrus.WithError(err).Debug("[RESOLVER] freshness write failed")
	}
}

func (c *ValkeyFreshnessCache) Invalidate(ctx context.Context, tenantID string) {
	inner := c.client.Inner()
	if err := inner.Do(ctx, inner.B().Del().Key(c.key(tenantID)).Build()).Error(); err != nil {
		logrus.WithError(err).Debug("[RESOLVER] freshness invalidate failed")
	}
}
