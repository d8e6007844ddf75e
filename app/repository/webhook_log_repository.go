package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/verifox/VeriFox/app/models"
)

// webhookLogRepository implements the WebhookLogRepository interface
type webhookLogRepository struct {
	db *gorm.DB
}

// NewWebhookLogRepository creates a new webhook log repository instance
func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

// Create inserts a pending delivery row.
func (r *webhookLogRepository) Create(ctx context.Context, d *models.WebhookDelivery) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// Finalize records the delivery outcome once retries are exhausted or a
// 2xx response arrived.
func (r *webhookLogRepository) Finalize(ctx context.Context, id, status string, httpStatus *int, snippet, errMsg string, attempts int) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.WebhookDelivery{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"http_status":      httpStatus,
			"response_snippet": snippet,
			"error_message":    errMsg,
			"attempts":         attempts,
			"completed_at":     now,
		}).Error
}
