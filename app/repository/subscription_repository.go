package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verifox/VeriFox/app/models"
	"github.com/verifox/VeriFox/internal/pkg/entitlements"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// CheckAllowance resolves the subscription for an external user, creating a
// free-tier row on first contact, and reports whether another verification
// fits in the current monthly quota.
func (r *subscriptionRepository) CheckAllowance(ctx context.Context, externalUserID string) (*Allowance, error) {
	now := time.Now().UTC()

	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("external_user_id = ?", externalUserID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = models.Subscription{
			ExternalUserID: externalUserID,
			Tier:           models.TIER_FREE,
			PeriodStart:    monthStart(now),
		}
		create := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&sub)
		if create.Error != nil {
			return nil, create.Error
		}
		if create.RowsAffected == 0 {
			// Concurrent first contact; read what the other caller created.
			if err := r.db.WithContext(ctx).Where("external_user_id = ?", externalUserID).First(&sub).Error; err != nil {
				return nil, err
			}
		}
	} else if err != nil {
		return nil, err
	}

	// Roll the usage counter over at month boundaries.
	if start := monthStart(now); start.After(sub.PeriodStart) {
		if err := r.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("external_user_id = ? AND period_start < ?", externalUserID, start).
			Updates(map[string]interface{}{"verifications_used": 0, "period_start": start}).Error; err != nil {
			return nil, err
		}
		sub.VerificationsUsed = 0
		sub.PeriodStart = start
	}

	tier := sub.EffectiveTier(now)
	quota := entitlements.MonthlyQuota(entitlements.Normalize(tier))
	if quota == entitlements.Unlimited {
		return &Allowance{Allowed: true, Remaining: entitlements.Unlimited, Tier: tier, ExpiresAt: sub.ExpiresAt}, nil
	}

	remaining := quota - sub.VerificationsUsed
	if remaining < 0 {
		remaining = 0
	}
	return &Allowance{Allowed: remaining > 0, Remaining: remaining, Tier: tier, ExpiresAt: sub.ExpiresAt}, nil
}

// IncrementUsage bumps the usage counter by one. Best-effort; callers log
// failures and carry on.
func (r *subscriptionRepository) IncrementUsage(ctx context.Context, externalUserID string) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("external_user_id = ?", externalUserID).
		UpdateColumn("verifications_used", gorm.Expr("verifications_used + 1")).Error
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
