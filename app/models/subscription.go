package models

import "time"

const (
	TIER_FREE        = "free"
	TIER_PREMIUM     = "premium"
	TIER_PREMIUM_MAX = "premium_max"
)

// Subscription scopes verification allowances to an external user id. The
// id is opaque to the service; tier changes and payment capture happen
// outside of it.
type Subscription struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ExternalUserID    string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"external_user_id"`
	Tier              string     `gorm:"type:varchar(20);not null;default:'free'" json:"tier"`
	ExpiresAt         *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	PeriodStart       time.Time  `gorm:"not null" json:"period_start"`
	VerificationsUsed int        `gorm:"not null;default:0" json:"verifications_used"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// EffectiveTier returns the tier taking expiry into account: a lapsed paid
// subscription degrades to free.
func (s *Subscription) EffectiveTier(now time.Time) string {
	if s.Tier == TIER_FREE {
		return TIER_FREE
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return TIER_FREE
	}
	return s.Tier
}
