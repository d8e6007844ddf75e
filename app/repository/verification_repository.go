package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verifox/VeriFox/app/models"
)

// verificationRepository implements the VerificationRepository interface
type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification repository instance
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

// Upsert inserts the record or, when a row for the wallet already exists,
// replaces its mutable fields. The stored row is returned so callers see
// the id assigned on first insert.
func (r *verificationRepository) Upsert(ctx context.Context, v *models.Verification) (*models.Verification, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"business_name",
			"external_user_id",
			"total_transactions",
			"credited_transactions",
			"unique_wallets",
			"status",
			"failure_reason",
			"updated_at",
		}),
	}).Create(v).Error
	if err != nil {
		return nil, err
	}

	// Re-read so a conflicting upsert reports the pre-existing id.
	var stored models.Verification
	if err := r.db.WithContext(ctx).Where("wallet_address = ?", v.WalletAddress).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetByWallet retrieves the verification record for a wallet address.
// A missing record returns (nil, nil).
func (r *verificationRepository) GetByWallet(ctx context.Context, wallet string) (*models.Verification, error) {
	var v models.Verification
	err := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
