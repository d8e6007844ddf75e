package verification

import (
	"time"

	"github.com/verifox/VeriFox/app/models"
)

// VerificationData is the result shape shared by API responses and webhook
// payloads. Field names are part of the external contract.
type VerificationData struct {
	VerificationID       string  `json:"verificationId"`
	WalletAddress        string  `json:"walletAddress"`
	BusinessName         string  `json:"businessName"`
	TotalTransactions    int     `json:"totalTransactions"`
	CreditedTransactions int     `json:"creditedTransactions"`
	UniqueWallets        int     `json:"uniqueWallets"`
	MeetsRequirements    bool    `json:"meetsRequirements"`
	FailureReason        *string `json:"failureReason"`
	VerificationStatus   string  `json:"verificationStatus"`
	VerifiedAt           string  `json:"verifiedAt"`
}

// DataFor converts a stored verification row into the external shape.
// FailureReason is null for approved results.
func DataFor(v *models.Verification) VerificationData {
	var reason *string
	if v.FailureReason != "" {
		r := v.FailureReason
		reason = &r
	}
	return VerificationData{
		VerificationID:       v.ID,
		WalletAddress:        v.WalletAddress,
		BusinessName:         v.BusinessName,
		TotalTransactions:    v.TotalTransactions,
		CreditedTransactions: v.CreditedTransactions,
		UniqueWallets:        v.UniqueWallets,
		MeetsRequirements:    v.MeetsRequirements(),
		FailureReason:        reason,
		VerificationStatus:   v.Status,
		VerifiedAt:           v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
