package models

import "time"

// Verification is the durable result of a business verification scan,
// one row per wallet address. Subsequent scans upsert the same row; the
// record is never deleted by the service.
type Verification struct {
	ID                   string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	WalletAddress        string    `gorm:"type:varchar(56);uniqueIndex;not null" json:"wallet_address"`
	BusinessName         string    `gorm:"type:varchar(200);not null" json:"business_name"`
	ExternalUserID       string    `gorm:"type:varchar(191);index;not null" json:"external_user_id"`
	TotalTransactions    int       `gorm:"not null;default:0" json:"total_transactions"`
	CreditedTransactions int       `gorm:"not null;default:0" json:"credited_transactions"`
	UniqueWallets        int       `gorm:"not null;default:0" json:"unique_wallets"`
	Status               string    `gorm:"type:varchar(20);not null;index" json:"status"`
	FailureReason        string    `gorm:"type:text" json:"failure_reason"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

// MeetsRequirements reports whether the stored decision was an approval.
func (v *Verification) MeetsRequirements() bool {
	return v.Status == "approved"
}

// FreshAt reports whether the record is younger than ttl at the given time,
// i.e. still servable from cache.
func (v *Verification) FreshAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(v.UpdatedAt) < ttl
}
