package webhook

import (
	"encoding/json"
	"net/url"
)

// Events pushed to caller-supplied webhook URLs.
const (
	EventVerificationCompleted = "verification.completed"
	EventBatchCompleted        = "batch.verification.completed"
)

// Envelope is the JSON object posted to webhook targets. The marshalled
// bytes are signed as-is, so the payload must not be re-serialized between
// signing and sending.
type Envelope struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// deliveryJob is the queued unit of work for one webhook delivery.
type deliveryJob struct {
	DeliveryID string          `json:"delivery_id"`
	Event      string          `json:"event"`
	Timestamp  string          `json:"timestamp"`
	URL        string          `json:"url"`
	Secret     string          `json:"secret,omitempty"`
	Body       json.RawMessage `json:"body"`
}

// IsAcceptableURL reports whether raw is an absolute http or https URL.
// Anything else is refused at request-parse time.
func IsAcceptableURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
