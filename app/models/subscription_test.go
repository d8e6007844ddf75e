package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionEffectiveTier(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	free := &Subscription{Tier: TIER_FREE}
	assert.Equal(t, TIER_FREE, free.EffectiveTier(now))

	active := &Subscription{Tier: TIER_PREMIUM, ExpiresAt: &future}
	assert.Equal(t, TIER_PREMIUM, active.EffectiveTier(now))

	// A lapsed paid subscription degrades to free.
	lapsed := &Subscription{Tier: TIER_PREMIUM_MAX, ExpiresAt: &past}
	assert.Equal(t, TIER_FREE, lapsed.EffectiveTier(now))

	// No expiry means the paid tier stays effective.
	open := &Subscription{Tier: TIER_PREMIUM}
	assert.Equal(t, TIER_PREMIUM, open.EffectiveTier(now))
}
