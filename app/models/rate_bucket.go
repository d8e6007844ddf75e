package models

import "time"

// RateBucket tracks per-wallet request counts within a fixed window.
// Exactly one row exists per wallet address.
type RateBucket struct {
	WalletAddress string    `gorm:"type:varchar(56);primaryKey" json:"wallet_address"`
	Count         int       `gorm:"not null;default:0" json:"count"`
	WindowStart   time.Time `gorm:"not null" json:"window_start"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Advance applies the window rule at the given instant and reports whether
// the request is allowed. An elapsed window resets the bucket to count 1;
// a full bucket refuses without mutating state; otherwise the count is
// incremented. Callers must hold a row lock while calling this.
func (b *RateBucket) Advance(now time.Time, max int, window time.Duration) bool {
	if now.Sub(b.WindowStart) >= window {
		b.Count = 1
		b.WindowStart = now
		return true
	}
	if b.Count >= max {
		return false
	}
	b.Count++
	return true
}

// ResetAt returns the instant at which the current window expires.
func (b *RateBucket) ResetAt(window time.Duration) time.Time {
	return b.WindowStart.Add(window)
}
