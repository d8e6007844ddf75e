package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/verifox/VeriFox/app/models"
)

// VerificationRepository defines the durable operations on verification records
type VerificationRepository interface {
	Upsert(ctx context.Context, v *models.Verification) (*models.Verification, error)
	GetByWallet(ctx context.Context, wallet string) (*models.Verification, error)
}

// RateLimitResult is the outcome of an atomic rate-limit check-and-increment.
type RateLimitResult struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

// RateLimitRepository defines the per-wallet sliding-window counter
type RateLimitRepository interface {
	Check(ctx context.Context, wallet string, max int, window time.Duration) (*RateLimitResult, error)
}

// Allowance is the subscription quota snapshot for an external user.
// Remaining is -1 for unlimited tiers.
type Allowance struct {
	Allowed   bool
	Remaining int
	Tier      string
	ExpiresAt *time.Time
}

// SubscriptionRepository defines the allowance operations consumed by the
// verification pipeline
type SubscriptionRepository interface {
	CheckAllowance(ctx context.Context, externalUserID string) (*Allowance, error)
	IncrementUsage(ctx context.Context, externalUserID string) error
}

// WebhookLogRepository defines the delivery log operations
type WebhookLogRepository interface {
	Create(ctx context.Context, d *models.WebhookDelivery) error
	Finalize(ctx context.Context, id, status string, httpStatus *int, snippet, errMsg string, attempts int) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Verification VerificationRepository
	RateLimit    RateLimitRepository
	Subscription SubscriptionRepository
	WebhookLog   WebhookLogRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Verification: NewVerificationRepository(db),
		RateLimit:    NewRateLimitRepository(db),
		Subscription: NewSubscriptionRepository(db),
		WebhookLog:   NewWebhookLogRepository(db),
	}
}
