package apiv1

import (
	"github.com/verifox/VeriFox/internal/pkg/verification"
)

// VerifyRequest is the single-verify request body. Threshold fields are
// pointers so an absent field falls back to the configured default while
// an explicit zero is honored.
type VerifyRequest struct {
	WalletAddress           string `json:"walletAddress" validate:"required"`
	BusinessName            string `json:"businessName" validate:"required"`
	ExternalUserID          string `json:"externalUserId" validate:"required"`
	ForceRefresh            bool   `json:"forceRefresh"`
	WebhookURL              string `json:"webhookUrl"`
	WebhookSecret           string `json:"webhookSecret"`
	MinTransactions         *int   `json:"minTransactions"`
	MinCreditedTransactions *int   `json:"minCreditedTransactions"`
	MinUniqueWallets        *int   `json:"minUniqueWallets"`
}

// BatchEntry is one verification inside a batch request.
type BatchEntry struct {
	WalletAddress  string `json:"walletAddress"`
	BusinessName   string `json:"businessName"`
	ExternalUserID string `json:"externalUserId"`
}

// BatchRequest is the batch-verify request body. forceRefresh, thresholds
// and the completion webhook apply to every entry.
type BatchRequest struct {
	Verifications           []BatchEntry `json:"verifications" validate:"required"`
	ForceRefresh            bool         `json:"forceRefresh"`
	WebhookURL              string       `json:"webhookUrl"`
	WebhookSecret           string       `json:"webhookSecret"`
	MinTransactions         *int         `json:"minTransactions"`
	MinCreditedTransactions *int         `json:"minCreditedTransactions"`
	MinUniqueWallets        *int         `json:"minUniqueWallets"`
}

// VerifyResponse is the 200 body of the single-verify endpoint.
type VerifyResponse struct {
	Success        bool                          `json:"success"`
	Cached         bool                          `json:"cached"`
	CacheExpiresAt string                        `json:"cacheExpiresAt"`
	WebhookQueued  bool                          `json:"webhookQueued"`
	Data           verification.VerificationData `json:"data"`
}

// BatchResponse is the 200 body of the batch endpoint.
type BatchResponse struct {
	Success         bool                            `json:"success"`
	BatchID         string                          `json:"batchId"`
	TotalRequested  int                             `json:"totalRequested"`
	TotalProcessed  int                             `json:"totalProcessed"`
	TotalSuccessful int                             `json:"totalSuccessful"`
	TotalFailed     int                             `json:"totalFailed"`
	Results         []verification.BatchEntryResult `json:"results"`
	WebhookQueued   bool                            `json:"webhookQueued"`
}

// ErrorResponse is the body of every non-200 outcome.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
