package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateBucketAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	b := &RateBucket{WalletAddress: "G...", Count: 1, WindowStart: start}

	// Requests 2..5 within the window are allowed.
	for i := 2; i <= 5; i++ {
		assert.True(t, b.Advance(start.Add(time.Minute), 5, window), "request %d", i)
		assert.Equal(t, i, b.Count)
	}

	// The 6th request in the same window is refused without mutating state.
	assert.False(t, b.Advance(start.Add(2*time.Minute), 5, window))
	assert.Equal(t, 5, b.Count)
	assert.Equal(t, start, b.WindowStart)

	// Once the window elapses the bucket resets to count 1.
	later := start.Add(window)
	assert.True(t, b.Advance(later, 5, window))
	assert.Equal(t, 1, b.Count)
	assert.Equal(t, later, b.WindowStart)
}

func TestRateBucketResetAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &RateBucket{WindowStart: start}
	assert.Equal(t, start.Add(time.Hour), b.ResetAt(time.Hour))
}

func TestVerificationFreshAt(t *testing.T) {
	now := time.Now()
	v := &Verification{UpdatedAt: now.Add(-30 * time.Minute)}

	assert.True(t, v.FreshAt(now, time.Hour))
	assert.False(t, v.FreshAt(now, 30*time.Minute))
	assert.False(t, v.FreshAt(now.Add(time.Hour), time.Hour))
}

func TestVerificationMeetsRequirements(t *testing.T) {
	assert.True(t, (&Verification{Status: "approved"}).MeetsRequirements())
	assert.False(t, (&Verification{Status: "rejected"}).MeetsRequirements())
}
