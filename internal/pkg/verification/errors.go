package verification

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidAddress rejects wallet addresses that fail the format check.
	ErrInvalidAddress = errors.New("Invalid wallet address format")
	// ErrQuotaExceeded rejects requests once the caller's monthly allowance
	// is spent.
	ErrQuotaExceeded = errors.New("Monthly verification quota exceeded")
	// ErrPersistence wraps database failures while storing a result.
	ErrPersistence = errors.New("failed to persist verification result")
)

// RateLimitedError is returned when a wallet exceeds its request window.
// It carries the state the HTTP layer needs for the X-RateLimit headers.
type RateLimitedError struct {
	Limit   int
	Count   int
	ResetAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("Rate limit exceeded: %d requests per window, try again after %s",
		e.Limit, e.ResetAt.UTC().Format(time.RFC3339))
}
