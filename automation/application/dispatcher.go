package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/dispatchpool"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const cycleLockName = "dispatch-cycle"

type CycleOutcome string

const (
	CycleIdle      CycleOutcome = "idle"
	CycleProcessed CycleOutcome = "processed"
)

// CycleResult summarizes one RunOnce call.
type CycleResult struct {
	Outcome         CycleOutcome  `json:"outcome"`
	Selected        int           `json:"selected"`
	Claimed         int           `json:"claimed"`
	Published       int           `json:"published"`
	Failed          int           `json:"failed"`
	Skipped         int           `json:"skipped"`
	Requeued        int           `json:"requeued"`
	LockedElsewhere bool          `json:"locked_elsewhere,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// Resolver is the credential lookup the dispatcher depends on.
type Resolver interface {
	Resolve(ctx context.Context, tenantID string) (*domain.Credential, error)
	Invalidate(ctx context.Context, tenantID string)
}

type DispatcherConfig struct {
	BatchSize      int
	Workers        int
	ClaimTTL       time.Duration
	CycleBudget    time.Duration
	PublishTimeout time.Duration
	RunnerID       string
}

// Dispatcher moves due posts through pending -> claimed -> published|failed.
type Dispatcher struct {
	posts     domain.PostRepository
	resolver  Resolver
	publisher platform.Publisher
	events    domain.EventPublisher
	lock      domain.CycleLock
	pool      *dispatchpool.Pool
	cfg       DispatcherConfig
	mu        sync.Mutex
	now       func() time.Time
}

// NewDispatcher starts the worker pool; call Close to stop it. lock and
// events may be nil.
func NewDispatcher(posts domain.PostRepository, resolver Resolver, publisher platform.Publisher, events domain.EventPublisher, lock domain.CycleLock, cfg DispatcherConfig) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = 10 * time.Minute
	}
	if cfg.CycleBudget <= 0 {
		cfg.CycleBudget = 2 * time.Minute
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 30 * time.Second
	}

	pool := dispatchpool.New(cfg.Workers, cfg.BatchSize)
	pool.Start(context.Background())

	return &Dispatcher{
		posts:     posts,
		resolver:  resolver,
		publisher: publisher,
		events:    events,
		lock:      lock,
		pool:      pool,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (d *Dispatcher) Close() {
	d.pool.Stop()
}

func (d *Dispatcher) PoolStats() dispatchpool.Stats {
	return d.pool.Stats()
}

// RunOnce executes a single dispatch cycle. Only storage failures before any
// post was claimed are returned as errors.
func (d *Dispatcher) RunOnce(ctx context.Context) (result CycleResult, err error) {
	if !d.mu.TryLock() {
		return CycleResult{}, domain.ErrCycleInProgress
	}
	defer d.mu.Unlock()

	start := d.now()
	result.Outcome = CycleIdle
	defer func() { result.Duration = d.now().Sub(start) }()

	if d.lock != nil {
		release, ok, err := d.lock.TryAcquire(ctx, cycleLockName, d.cfg.CycleBudget+d.cfg.PublishTimeout)
		switch {
		case err != nil:
			// the claim is what guarantees exclusivity, the lock only saves work
			logrus.WithError(err).Warn("[DISPATCHER] cluster lock unavailable, running anyway")
		case !ok:
			logrus.Debug("[DISPATCHER] another runner holds the cycle lock")
			result.LockedElsewhere = true
			return result, nil
		default:
			defer release()
		}
	}

	requeued, err := d.requeueStale(ctx)
	if err != nil {
		return result, fmt.Errorf("requeue stale claims: %w", err)
	}
	result.Requeued = requeued

	due, err := d.posts.ListDue(ctx, start, d.cfg.BatchSize)
	if err != nil {
		return result, fmt.Errorf("list due posts: %w", err)
	}
	result.Selected = len(due)
	if len(due) == 0 {
		return result, nil
	}
	result.Outcome = CycleProcessed

	deadline := start.Add(d.cfg.CycleBudget)
	var (
		countsMu sync.Mutex
		claimErr error
	)

	for i, post := range due {
		if d.now().After(deadline) || ctx.Err() != nil {
			result.Skipped += len(due) - i
			logrus.Warnf("[DISPATCHER] cycle budget exhausted, leaving %d posts for the next cycle", len(due)-i)
			break
		}

		token := uuid.NewString()
		ok, err := d.posts.Claim(ctx, post.ID, token, d.cfg.RunnerID, d.now())
		if err != nil {
			claimErr = err
			result.Skipped += len(due) - i
			break
		}
		if !ok {
			result.Skipped++
			continue
		}
		result.Claimed++
		post.ClaimToken = token
		post.Status = domain.PostClaimed

		p := post
		submitted := d.pool.Submit(ctx, dispatchpool.Job{
			TenantID: p.TenantID,
			PostID:   p.ID,
			Handler: func(workerCtx context.Context) error {
				outcome, finalized, err := d.deliver(workerCtx, p, token)
				if err != nil {
					return err
				}
				if !finalized {
					return nil
				}
				countsMu.Lock()
				if outcome.Status == domain.PostPublished {
					result.Published++
				} else {
					result.Failed++
				}
				countsMu.Unlock()
				return nil
			},
		})
		if !submitted {
			// stays claimed; the watchdog hands it back after ClaimTTL
			logrus.WithField("post_id", p.ID).Warn("[DISPATCHER] could not enqueue claimed post")
		}
	}

	d.pool.Wait()

	if claimErr != nil {
		if result.Claimed == 0 {
			return result, fmt.Errorf("claim posts: %w", claimErr)
		}
		logrus.WithError(claimErr).Error("[DISPATCHER] claiming stopped early")
	}

	logrus.WithFields(logrus.Fields{
		"selected":  result.Selected,
		"claimed":   result.Claimed,
		"published": result.Published,
		"failed":    result.Failed,
		"skipped":   result.Skipped,
		"requeued":  result.Requeued,
		"took":      d.now().Sub(start).Round(time.Millisecond),
	}).Info("[DISPATCHER] cycle finished")

	return result, nil
}

// deliver runs one claimed post to a terminal state. It returns an error
// only when the post must stay claimed, e.g. the credential store is down.
func (d *Dispatcher) deliver(ctx context.Context, post *domain.ScheduledPost, token string) (domain.Outcome, bool, error) {
	log := logrus.WithFields(logrus.Fields{
		"post_id":   post.ID,
		"tenant_id": post.TenantID,
		"scheduled": humanize.Time(post.ScheduledAt),
	})

	var outcome domain.Outcome
	cred, err := d.resolver.Resolve(ctx, post.TenantID)
	switch {
	case IsCredentialError(err):
		outcome = domain.Failed(platform.KindAuth, err.Error(), d.now())
	case err != nil:
		return outcome, false, fmt.Errorf("resolve credential: %w", err)
	default:
		pubCtx, cancel := context.WithTimeout(ctx, d.cfg.PublishTimeout)
		postID, pubErr := d.publisher.Publish(pubCtx, platform.Account{AccessToken: cred.AccessToken, UserID: cred.PlatformUserID}, post.Content)
		cancel()
		if pubErr != nil {
			kind := platform.KindOf(pubErr)
			if kind == platform.KindAuth {
				d.resolver.Invalidate(ctx, post.TenantID)
			}
			outcome = domain.Failed(kind, pubErr.Error(), d.now())
		} else {
			outcome = domain.Published(postID, d.now())
		}
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	ok, err := d.posts.Finalize(writeCtx, post.ID, token, outcome)
	if err != nil {
		return outcome, false, fmt.Errorf("finalize post: %w", err)
	}
	if !ok {
		log.Warn("[DISPATCHER] claim lost before terminal write, outcome discarded")
		return outcome, false, nil
	}

	if outcome.Status == domain.PostPublished {
		log.WithField("platform_post_id", outcome.PlatformPostID).Info("[DISPATCHER] post published")
	} else {
		log.WithFields(logrus.Fields{"error_kind": outcome.ErrorKind, "error": outcome.Error}).Warn("[DISPATCHER] post failed")
	}
	d.emit(writeCtx, domain.NewPostEvent(post, outcome))
	return outcome, true, nil
}

// RequeueStale hands abandoned claims back to pending. It is also run at the
// start of every cycle.
func (d *Dispatcher) RequeueStale(ctx context.Context) (int, error) {
	return d.requeueStale(ctx)
}

func (d *Dispatcher) requeueStale(ctx context.Context) (int, error) {
	requeued, err := d.posts.RequeueStale(ctx, d.now().Add(-d.cfg.ClaimTTL))
	if err != nil {
		return 0, err
	}
	for _, p := range requeued {
		logrus.WithFields(logrus.Fields{
			"post_id":   p.ID,
			"tenant_id": p.TenantID,
			"attempts":  p.Attempts,
		}).Warn("[DISPATCHER] stale claim requeued")
		d.emit(ctx, domain.PostEvent{
			Event:        domain.EventPostRequeued,
			PostID:       p.ID,
			AutomationID: p.AutomationID,
			TenantID:     p.TenantID,
			Status:       domain.PostPending,
			OccurredAt:   d.now().UTC(),
		})
	}
	if len(requeued) > 0 {
		logrus.Infof("[DISPATCHER] requeued %s stale claims", humanize.Comma(int64(len(requeued))))
	}
	return len(requeued), nil
}

func (d *Dispatcher) emit(ctx context.Context, ev domain.PostEvent) {
	if d.events == nil {
		return
	}
	if err := d.events.PublishPostEvent(ctx, ev); err != nil {
		logrus.WithError(err).WithField("event", ev.Event).Warn("[DISPATCHER] failed to publish lifecycle event")
	}
}
