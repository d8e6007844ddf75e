package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verifox/VeriFox/app/models"
)

// rateLimitRepository implements the RateLimitRepository interface
type rateLimitRepository struct {
	db *gorm.DB
}

// NewRateLimitRepository creates a new rate limit repository instance
func NewRateLimitRepository(db *gorm.DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

// Check atomically applies the fixed-window rule for one wallet. The bucket
// row is locked FOR UPDATE for the duration of the transaction so concurrent
// callers for the same wallet serialize here.
func (r *rateLimitRepository) Check(ctx context.Context, wallet string, max int, window time.Duration) (*RateLimitResult, error) {
	now := time.Now().UTC()
	var result RateLimitResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bucket models.RateBucket
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("wallet_address = ?", wallet).
			First(&bucket).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			bucket = models.RateBucket{WalletAddress: wallet, Count: 1, WindowStart: now}
			create := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&bucket)
			if create.Error != nil {
				return create.Error
			}
			if create.RowsAffected == 1 {
				result = RateLimitResult{Allowed: true, Count: 1, ResetAt: bucket.ResetAt(window)}
				return nil
			}
			// Lost the insert race; another transaction created the row.
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("wallet_address = ?", wallet).
				First(&bucket).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		allowed := bucket.Advance(now, max, window)
		if allowed {
			if err := tx.Save(&bucket).Error; err != nil {
				return err
			}
		}
		result = RateLimitResult{Allowed: allowed, Count: bucket.Count, ResetAt: bucket.ResetAt(window)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
