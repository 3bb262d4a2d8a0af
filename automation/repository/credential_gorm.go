package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/crypto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CredentialGormRepository stores vault-issued tokens sealed with the
// application secret.
type CredentialGormRepository struct {
	db     *gorm.DB
	cipher *crypto.TokenCipher
}

func NewCredentialGormRepository(db *gorm.DB, cipher *crypto.TokenCipher) *CredentialGormRepository {
	return &CredentialGormRepository{db: db, cipher: cipher}
}

func (r *CredentialGormRepository) Upsert(ctx context.Context, c *domain.Credential) error {
	access, err := r.cipher.Encrypt(c.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refresh, err := r.cipher.Encrypt(c.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	now := time.Now().UTC()
	c.UpdatedAt = now
	model := credentialModel{
		TenantID:       c.TenantID,
		Platform:       c.Platform,
		AccessToken:    access,
		RefreshToken:   nullString(refresh),
		ExpiresAt:      c.ExpiresAt.UTC(),
		PlatformUserID: nullString(c.PlatformUserID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "platform"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "platform_user_id", "updated_at"}),
		}).
		Create(&model).Error
}

func (r *CredentialGormRepository) Get(ctx context.Context, tenantID, platform string) (*domain.Credential, error) {
	var m credentialModel
	if err := r.db.WithContext(ctx).First(&m, "tenant_id = ? AND platform = ?", tenantID, platform).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, err
	}

	access, err := r.cipher.Decrypt(m.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt access token: %v", domain.ErrCredentialUnreadable, err)
	}
	refresh, err := r.cipher.Decrypt(nullStringValue(m.RefreshToken))
	if err != nil {
		return nil, fmt.Errorf("%w: decrypt refresh token: %v", domain.ErrCredentialUnreadable, err)
	}

	return &domain.Credential{
		TenantID:       m.TenantID,
		Platform:       m.Platform,
		AccessToken:    access,
		RefreshToken:   refresh,
		ExpiresAt:      m.ExpiresAt.UTC(),
		PlatformUserID: nullStringValue(m.PlatformUserID),
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

func (r *CredentialGormRepository) SetPlatformUserID(ctx context.Context, tenantID, platform, userID string) error {
	return r.db.WithContext(ctx).Model(&credentialModel{}).
		Where("tenant_id = ? AND platform = ?", tenantID, platform).
		Updates(map[string]any{"platform_user_id": userID, "updated_at": time.Now().UTC()}).Error
}
