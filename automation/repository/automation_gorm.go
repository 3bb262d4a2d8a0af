package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"gorm.io/gorm"
)

type AutomationGormRepository struct {
	db *gorm.DB
}

func NewAutomationGormRepository(db *gorm.DB) *AutomationGormRepository {
	return &AutomationGormRepository{db: db}
}

func (r *AutomationGormRepository) Create(ctx context.Context, a *domain.Automation) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	model := toAutomationModel(a)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *AutomationGormRepository) Get(ctx context.Context, tenantID, id string) (*domain.Automation, error) {
	var m automationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAutomationNotFound
		}
		return nil, err
	}
	return fromAutomationModel(m), nil
}

func (r *AutomationGormRepository) List(ctx context.Context, tenantID string, filter domain.AutomationFilter) ([]*domain.Automation, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	switch {
	case filter.Status != "":
		q = q.Where("status = ?", string(filter.Status))
	case !filter.IncludeDeleted:
		q = q.Where("status <> ?", string(domain.AutomationDeleted))
	}

	var models []automationModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.Automation, len(models))
	for i, m := range models {
		res[i] = fromAutomationModel(m)
	}
	return res, nil
}

func (r *AutomationGormRepository) ListActive(ctx context.Context) ([]*domain.Automation, error) {
	var models []automationModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.AutomationActive)).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.Automation, len(models))
	for i, m := range models {
		res[i] = fromAutomationModel(m)
	}
	return res, nil
}

func (r *AutomationGormRepository) UpdateStatus(ctx context.Context, tenantID, id string, status domain.AutomationStatus) error {
	res := r.db.WithContext(ctx).Model(&automationModel{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAutomationNotFound
	}
	return nil
}

func (r *AutomationGormRepository) UpdateMaterializedThrough(ctx context.Context, id, day string) error {
	return r.db.WithContext(ctx).Model(&automationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"materialized_through": day, "updated_at": time.Now().UTC()}).Error
}
