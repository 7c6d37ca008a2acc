package model

import "time"

// Notification categories understood by Account.NotificationEnabled.
const (
	NotifyMessages = "messages"
	NotifyOffers   = "offers"
)

type Account struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID  int64           `gorm:"column:external_id;not null;uniqueIndex:uk_accounts_external_id" json:"externalId"`
	DisplayName string          `gorm:"column:display_name;size:255" json:"displayName"`
	Handle      string          `gorm:"column:handle;size:64" json:"handle,omitempty"`
	IsAdmin     bool            `gorm:"column:is_admin;not null;default:false" json:"isAdmin"`
	Banned      bool            `gorm:"column:banned;not null;default:false" json:"banned"`
	BanReason   string          `gorm:"column:ban_reason;size:512" json:"banReason,omitempty"`
	BannedAt    *time.Time      `gorm:"column:banned_at" json:"bannedAt,omitempty"`
	Preferences map[string]bool `gorm:"column:notification_preferences;type:text;serializer:json" json:"notificationPreferences"`
	LastSeenAt  *time.Time      `gorm:"column:last_seen_at" json:"lastSeenAt,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Account) TableName() string {
	return "accounts"
}

// NotificationEnabled reports whether the named category is on. Unknown keys default to enabled.
func (a *Account) NotificationEnabled(category string) bool {
	if a == nil || a.Preferences == nil {
		return true
	}
	v, ok := a.Preferences[category]
	if !ok {
		return true
	}
	return v
}
