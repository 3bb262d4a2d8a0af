package domain

import "time"

type CreateAutomationRequest struct {
	Name         string   `json:"name"`
	Topic        string   `json:"topic"`
	Provider     string   `json:"provider"`
	Style        string   `json:"style"`
	Instructions string   `json:"instructions"`
	TimeOfDay    string   `json:"time_of_day"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Frequency    string   `json:"frequency"`
	Days         []string `json:"days"`
	Timezone     string   `json:"timezone"`
	Hashtags     []string `json:"hashtags"`
}

type UpdatePostRequest struct {
	Content string `json:"content"`
}

type StoreCredentialRequest struct {
	AccessToken    string    `json:"access_token"`
	RefreshToken   string    `json:"refresh_token"`
	ExpiresAt      time.Time `json:"expires_at"`
	PlatformUserID string    `json:"platform_user_id"`
}

type PreviewItem struct {
	Day     string    `json:"day"`
	At      time.Time `json:"at"`
	Local   string    `json:"local"`
	Weekday string    `json:"weekday"`
}
