package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/infrastructure/valkey"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// releaseLockScript deletes the lock only when the token still matches.
const releaseLockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// ValkeyCycleLock implements domain.CycleLock with SET NX EX so only one
// host runs a dispatch cycle at a time.
type ValkeyCycleLock struct {
	client *valkey.Client
}

func NewValkeyCycleLock(client *valkey.Client) *ValkeyCycleLock {
	return &ValkeyCycleLock{client: client}
}

func (l *ValkeyCycleLock) TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := l.client.Key("lock", name)
	token := uuid.NewString()
	inner := l.client.Inner()

	err := inner.Do(ctx, inner.B().Set().Key(key).Value(token).Nx().Ex(ttl).Build()).Error()
	if err != nil {
		if valkey.IsNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("acquire lock %s: %w", name, err)
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		cmd := inner.B().Eval().Script(releaseLockScript).Numkeys(1).Key(key).Arg(token).Build()
		if err := inner.Do(releaseCtx, cmd).Error(); err != nil {
			logrus.WithError(err).Warnf("[DISPATCHER] failed to release lock %s", name)
		}
	}
	return release, true, nil
}
