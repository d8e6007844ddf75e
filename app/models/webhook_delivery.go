package models

import "time"

const (
	DELIVERY_PENDING   = "pending"
	DELIVERY_SUCCEEDED = "succeeded"
	DELIVERY_FAILED    = "failed"
)

// WebhookDelivery records one webhook dispatch: the exact payload sent on
// the wire and the final outcome after retries.
type WebhookDelivery struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	VerificationID  string     `gorm:"type:varchar(36);index;not null" json:"verification_id"`
	Event           string     `gorm:"type:varchar(50);not null" json:"event"`
	WebhookURL      string     `gorm:"type:varchar(500);not null" json:"webhook_url"`
	Payload         string     `gorm:"type:longtext;not null" json:"payload"`
	Status          string     `gorm:"type:varchar(20);not null;index" json:"status"`
	HTTPStatus      *int       `gorm:"default:null" json:"http_status,omitempty"`
	ResponseSnippet string     `gorm:"type:varchar(512)" json:"response_snippet"`
	ErrorMessage    string     `gorm:"type:text" json:"error_message"`
	Attempts        int        `gorm:"not null;default:0" json:"attempts"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	CompletedAt     *time.Time `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
}
