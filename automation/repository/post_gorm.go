package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultListLimit = 100

// PostGormRepository owns scheduled_posts. Every status change goes through
// a conditional UPDATE so concurrent dispatchers cannot both win a row.
type PostGormRepository struct {
	db *gorm.DB
}

func NewPostGormRepository(db *gorm.DB) *PostGormRepository {
	return &PostGormRepository{db: db}
}

func (r *PostGormRepository) Insert(ctx context.Context, post *domain.ScheduledPost) (bool, error) {
	now := time.Now().UTC()
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Status == "" {
		post.Status = domain.PostPending
	}
	post.CreatedAt = now
	post.UpdatedAt = now

	model := toPostModel(post)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "automation_id"}, {Name: "scheduled_day"}},
			DoNothing: true,
		}).
		Create(&model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostGormRepository) ExistingDays(ctx context.Context, automationID string, days []string) (map[string]bool, error) {
	out := make(map[string]bool, len(days))
	if len(days) == 0 {
		return out, nil
	}
	var found []string
	if err := r.db.WithContext(ctx).Model(&postModel{}).
		Where("automation_id = ? AND scheduled_day IN ?", automationID, days).
		Pluck("scheduled_day", &found).Error; err != nil {
		return nil, err
	}
	for _, d := range found {
		out[d] = true
	}
	return out, nil
}

func (r *PostGormRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledPost, error) {
	if limit <= 0 {
		limit = 10
	}
	var models []postModel
	err := r.db.WithContext(ctx).Model(&postModel{}).
		Select("scheduled_posts.*").
		Joins("JOIN automations ON automations.id = scheduled_posts.automation_id").
		Where("scheduled_posts.status = ? AND scheduled_posts.scheduled_at <= ? AND automations.status = ?",
			string(domain.PostPending), now.UTC(), string(domain.AutomationActive)).
		Order("scheduled_posts.scheduled_at ASC, scheduled_posts.id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromPostModels(models), nil
}

func (r *PostGormRepository) Claim(ctx context.Context, id, token, claimedBy string, now time.Time) (bool, error) {
	now = now.UTC()
	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND status = ?", id, string(domain.PostPending)).
		Updates(map[string]any{
			"status":      string(domain.PostClaimed),
			"claim_token": token,
			"claimed_at":  now,
			"claimed_by":  nullString(claimedBy),
			"attempts":    gorm.Expr("attempts + 1"),
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostGormRepository) Finalize(ctx context.Context, id, token string, outcome domain.Outcome) (bool, error) {
	if outcome.Status != domain.PostPublished && outcome.Status != domain.PostFailed {
		return false, domain.ErrInvalidTransition
	}
	at := outcome.AttemptedAt.UTC()
	updates := map[string]any{
		"status":       string(outcome.Status),
		"attempted_at": at,
		"updated_at":   time.Now().UTC(),
		"error_kind":   nullString(string(outcome.ErrorKind)),
		"error":        nullString(outcome.Error),
	}
	if outcome.Status == domain.PostPublished {
		updates["platform_post_id"] = nullString(outcome.PlatformPostID)
		updates["published_at"] = at
	}

	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND status = ? AND claim_token = ?", id, string(domain.PostClaimed), token).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostGormRepository) RequeueStale(ctx context.Context, claimedBefore time.Time) ([]*domain.ScheduledPost, error) {
	var stale []postModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND claimed_at < ?", string(domain.PostClaimed), claimedBefore.UTC()).
		Order("scheduled_at ASC").
		Find(&stale).Error; err != nil {
		return nil, err
	}

	var requeued []*domain.ScheduledPost
	for _, m := range stale {
		res := r.db.WithContext(ctx).Model(&postModel{}).
			Where("id = ? AND status = ? AND claim_token = ?", m.ID, string(domain.PostClaimed), m.ClaimToken.String).
			Updates(map[string]any{
				"status":      string(domain.PostPending),
				"claim_token": nil,
				"claimed_at":  nil,
				"claimed_by":  nil,
				"updated_at":  time.Now().UTC(),
			})
		if res.Error != nil {
			return requeued, res.Error
		}
		if res.RowsAffected == 1 {
			p := fromPostModel(m)
			p.Status = domain.PostPending
			p.ClaimToken = ""
			p.ClaimedAt = nil
			p.ClaimedBy = ""
			requeued = append(requeued, p)
		}
	}
	return requeued, nil
}

func (r *PostGormRepository) Get(ctx context.Context, tenantID, id string) (*domain.ScheduledPost, error) {
	var m postModel
	if err := r.db.WithContext(ctx).First(&m, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return fromPostModel(m), nil
}

func (r *PostGormRepository) List(ctx context.Context, tenantID string, filter domain.PostFilter) ([]*domain.ScheduledPost, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.AutomationID != "" {
		q = q.Where("automation_id = ?", filter.AutomationID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if !filter.From.IsZero() {
		q = q.Where("scheduled_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q = q.Where("scheduled_at <= ?", filter.To.UTC())
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}

	var models []postModel
	if err := q.Order("scheduled_at ASC, id ASC").Limit(limit).Offset(filter.Offset).Find(&models).Error; err != nil {
		return nil, err
	}
	return fromPostModels(models), nil
}

func (r *PostGormRepository) UpdateContent(ctx context.Context, tenantID, id, content string) error {
	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, string(domain.PostPending)).
		Updates(map[string]any{"content": content, "used_fallback": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrWrongState(ctx, tenantID, id)
	}
	return nil
}

func (r *PostGormRepository) Resubmit(ctx context.Context, tenantID, id string) error {
	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, string(domain.PostFailed)).
		Updates(map[string]any{
			"status":      string(domain.PostPending),
			"error_kind":  nil,
			"error":       nil,
			"claim_token": nil,
			"claimed_at":  nil,
			"claimed_by":  nil,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrWrongState(ctx, tenantID, id)
	}
	return nil
}

func (r *PostGormRepository) missingOrWrongState(ctx context.Context, tenantID, id string) error {
	if _, err := r.Get(ctx, tenantID, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

func (r *PostGormRepository) DeletePending(ctx context.Context, automationID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("automation_id = ? AND status = ?", automationID, string(domain.PostPending)).
		Delete(&postModel{})
	return res.RowsAffected, res.Error
}

func (r *PostGormRepository) Stats(ctx context.Context, tenantID string) (domain.PostStats, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&postModel{}).
		Select("status, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := domain.PostStats{
		domain.PostPending:   0,
		domain.PostClaimed:   0,
		domain.PostPublished: 0,
		domain.PostFailed:    0,
	}
	for _, row := range rows {
		stats[domain.PostStatus(row.Status)] = row.Count
	}
	return stats, nil
}
