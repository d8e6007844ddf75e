package verification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/verifox/VeriFox/app/models"
	"github.com/verifox/VeriFox/app/repository"
	"github.com/verifox/VeriFox/internal/pkg/cache"
)

const cacheKeyPrefix = "verify:"

// keyValue is the subset of cache operations the result cache needs. The
// default implementation is the shared redis client.
type keyValue interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
}

type redisKV struct{}

func (redisKV) Get(key string) (string, error) { return cache.Get(key) }
func (redisKV) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}

// ResultCache is the read-through cache over persisted verification rows.
// Redis fronts the database; the row's UpdatedAt doubles as the cache
// timestamp, so a database hit within the TTL counts as fresh too.
type ResultCache struct {
	kv   keyValue
	repo repository.VerificationRepository
	ttl  time.Duration
}

// NewResultCache creates the cache over the given repository.
func NewResultCache(repo repository.VerificationRepository, ttl time.Duration) *ResultCache {
	return &ResultCache{kv: redisKV{}, repo: repo, ttl: ttl}
}

func cacheKey(wallet string) string {
	return cacheKeyPrefix + wallet
}

// Lookup returns the stored verification for the wallet if it is still
// fresh. Redis failures fall through to the database; a stale or missing
// row is a miss.
func (c *ResultCache) Lookup(ctx context.Context, wallet string) (*models.Verification, bool) {
	now := time.Now()

	if raw, err := c.kv.Get(cacheKey(wallet)); err == nil {
		var v models.Verification
		if err := json.Unmarshal([]byte(raw), &v); err == nil && v.FreshAt(now, c.ttl) {
			return &v, true
		}
	}

	v, err := c.repo.GetByWallet(ctx, wallet)
	if err != nil {
		log.Warnf("[Cache] Lookup for %s failed: %v", wallet, err)
		return nil, false
	}
	if v == nil || !v.FreshAt(now, c.ttl) {
		return nil, false
	}

	// Warm redis so the next lookup skips the database.
	c.store(v)
	return v, true
}

// Store caches a freshly persisted verification. Failures are logged and
// ignored; the database remains authoritative.
func (c *ResultCache) Store(v *models.Verification) {
	c.store(v)
}

func (c *ResultCache) store(v *models.Verification) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Errorf("[Cache] Failed to marshal verification %s: %v", v.ID, err)
		return
	}
	if err := c.kv.Set(cacheKey(v.WalletAddress), raw, c.ttl); err != nil {
		log.Warnf("[Cache] Failed to store %s: %v", v.WalletAddress, err)
	}
}
