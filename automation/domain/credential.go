package domain

import "time"

// Credential is the token the vault handed over for one tenant and platform.
type Credential struct {
	TenantID       string    `json:"tenant_id"`
	Platform       string    `json:"platform"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	ExpiresAt      time.Time `json:"expires_at"`
	PlatformUserID string    `json:"platform_user_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ValidAt reports whether the token has not yet expired at now.
func (c *Credential) ValidAt(now time.Time) bool {
	return c != nil && c.AccessToken != "" && c.ExpiresAt.After(now)
}
