package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/schedule"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/timeutils"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform"
	"gorm.io/gorm"
)

// --- GORM Models ---

type automationModel struct {
	ID                  string `gorm:"primaryKey"`
	TenantID            string `gorm:"column:tenant_id;not null;index"`
	Name                string `gorm:"not null"`
	Topic               string `gorm:"not null"`
	Provider            string `gorm:"not null"`
	Style               sql.NullString
	Instructions        sql.NullString
	TimeOfDay           string         `gorm:"column:time_of_day;not null"`
	StartDate           string         `gorm:"column:start_date;not null"`
	EndDate             string         `gorm:"column:end_date;not null"`
	Frequency           string         `gorm:"not null"`
	Days                sql.NullString `gorm:"column:days"`
	Timezone            string         `gorm:"not null;default:'UTC'"`
	Hashtags            sql.NullString
	Status              string         `gorm:"not null;default:'active';index"`
	MaterializedThrough sql.NullString `gorm:"column:materialized_through"`
	CreatedAt           time.Time      `gorm:"not null"`
	UpdatedAt           time.Time      `gorm:"not null"`
}

func (automationModel) TableName() string { return "automations" }

type postModel struct {
	ID             string         `gorm:"primaryKey"`
	AutomationID   string         `gorm:"column:automation_id;not null;uniqueIndex:idx_posts_automation_day"`
	ScheduledDay   string         `gorm:"column:scheduled_day;not null;uniqueIndex:idx_posts_automation_day"`
	TenantID       string         `gorm:"column:tenant_id;not null;index"`
	Content        string         `gorm:"type:text;not null"`
	ScheduledAt    time.Time      `gorm:"column:scheduled_at;not null;index:idx_posts_due,priority:2"`
	Status         string         `gorm:"not null;default:'pending';index:idx_posts_due,priority:1"`
	Provider       string         `gorm:"not null"`
	UsedFallback   bool           `gorm:"column:used_fallback;not null;default:false"`
	PlatformPostID sql.NullString `gorm:"column:platform_post_id"`
	ErrorKind      sql.NullString `gorm:"column:error_kind"`
	Error          sql.NullString
	Attempts       int            `gorm:"not null;default:0"`
	ClaimToken     sql.NullString `gorm:"column:claim_token"`
	ClaimedAt      *time.Time     `gorm:"column:claimed_at"`
	ClaimedBy      sql.NullString `gorm:"column:claimed_by"`
	AttemptedAt    *time.Time     `gorm:"column:attempted_at"`
	PublishedAt    *time.Time     `gorm:"column:published_at"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
}

func (postModel) TableName() string { return "scheduled_posts" }

type credentialModel struct {
	TenantID       string         `gorm:"column:tenant_id;primaryKey"`
	Platform       string         `gorm:"primaryKey"`
	AccessToken    string         `gorm:"column:access_token;type:text;not null"`
	RefreshToken   sql.NullString `gorm:"column:refresh_token;type:text"`
	ExpiresAt      time.Time      `gorm:"column:expires_at;not null"`
	PlatformUserID sql.NullString `gorm:"column:platform_user_id"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
}

func (credentialModel) TableName() string { return "platform_credentials" }

// Migrate creates or updates every table this package owns.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&automationModel{},
		&postModel{},
		&credentialModel{},
	)
}

// --- Mappers ---

func toAutomationModel(a *domain.Automation) automationModel {
	return automationModel{
		ID:                  a.ID,
		TenantID:            a.TenantID,
		Name:                a.Name,
		Topic:               a.Topic,
		Provider:            string(a.Provider),
		Style:               nullString(a.Style),
		Instructions:        nullString(a.Instructions),
		TimeOfDay:           a.TimeOfDay,
		StartDate:           a.StartDate,
		EndDate:             a.EndDate,
		Frequency:           string(a.Frequency),
		Days:                nullString(timeutils.FormatWeekdays(a.Days)),
		Timezone:            a.Timezone,
		Hashtags:            nullString(strings.Join(a.Hashtags, ",")),
		Status:              string(a.Status),
		MaterializedThrough: nullString(a.MaterializedThrough),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func fromAutomationModel(m automationModel) *domain.Automation {
	// stored values were validated on the way in
	days, _ := timeutils.SplitWeekdays(nullStringValue(m.Days))
	var hashtags []string
	if h := nullStringValue(m.Hashtags); h != "" {
		hashtags = strings.Split(h, ",")
	}
	return &domain.Automation{
		ID:                  m.ID,
		TenantID:            m.TenantID,
		Name:                m.Name,
		Topic:               m.Topic,
		Provider:            contentgen.Provider(m.Provider),
		Style:               nullStringValue(m.Style),
		Instructions:        nullStringValue(m.Instructions),
		TimeOfDay:           m.TimeOfDay,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Frequency:           schedule.Frequency(m.Frequency),
		Days:                days,
		Timezone:            m.Timezone,
		Hashtags:            hashtags,
		Status:              domain.AutomationStatus(m.Status),
		MaterializedThrough: nullStringValue(m.MaterializedThrough),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toPostModel(p *domain.ScheduledPost) postModel {
	return postModel{
		ID:             p.ID,
		AutomationID:   p.AutomationID,
		ScheduledDay:   p.ScheduledDay,
		TenantID:       p.TenantID,
		Content:        p.Content,
		ScheduledAt:    p.ScheduledAt.UTC(),
		Status:         string(p.Status),
		Provider:       string(p.Provider),
		UsedFallback:   p.UsedFallback,
		PlatformPostID: nullString(p.PlatformPostID),
		ErrorKind:      nullString(string(p.ErrorKind)),
		Error:          nullString(p.Error),
		Attempts:       p.Attempts,
		ClaimToken:     nullString(p.ClaimToken),
		ClaimedAt:      p.ClaimedAt,
		ClaimedBy:      nullString(p.ClaimedBy),
		AttemptedAt:    p.AttemptedAt,
		PublishedAt:    p.PublishedAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromPostModel(m postModel) *domain.ScheduledPost {
	return &domain.ScheduledPost{
		ID:             m.ID,
		AutomationID:   m.AutomationID,
		TenantID:       m.TenantID,
		Content:        m.Content,
		ScheduledAt:    m.ScheduledAt.UTC(),
		ScheduledDay:   m.ScheduledDay,
		Status:         domain.PostStatus(m.Status),
		Provider:       contentgen.Provider(m.Provider),
		UsedFallback:   m.UsedFallback,
		PlatformPostID: nullStringValue(m.PlatformPostID),
		ErrorKind:      platform.ErrorKind(nullStringValue(m.ErrorKind)),
		Error:          nullStringValue(m.Error),
		Attempts:       m.Attempts,
		ClaimToken:     nullStringValue(m.ClaimToken),
		ClaimedAt:      m.ClaimedAt,
		ClaimedBy:      nullStringValue(m.ClaimedBy),
		AttemptedAt:    m.AttemptedAt,
		PublishedAt:    m.PublishedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func fromPostModels(models []postModel) []*domain.ScheduledPost {
	res := make([]*domain.ScheduledPost, len(models))
	for i, m := range models {
		res[i] = fromPostModel(m)
	}
	return res
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullStringValue returns a trimmed string or empty if null.
func nullStringValue(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return strings.TrimSpace(ns.String)
}
