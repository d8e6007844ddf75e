package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/verifox/VeriFox/internal/pkg/env"
)

// Settings holds every runtime option of the verification service. It is
// loaded once at startup and treated as immutable afterwards.
type Settings struct {
	LedgerBase       string
	APIKey           string
	InternalTrustKey string

	MinTransactions         int
	MinCreditedTransactions int
	MinUniqueWallets        int

	CacheTTL   time.Duration
	RateMax    int
	RateWindow time.Duration

	BatchMax         int
	BatchConcurrency int

	LedgerTimeout  time.Duration
	WebhookTimeout time.Duration

	WebhookAttempts int
	WebhookBackoff  []time.Duration
	WebhookWorkers  int
}

// Load reads all settings from the environment, falling back to the
// documented defaults. Malformed values are logged and replaced by the
// default rather than aborting startup.
func Load() *Settings {
	return &Settings{
		LedgerBase:       strings.TrimRight(env.GetEnv("LEDGER_BASE", "https://api.mainnet.minepi.com"), "/"),
		APIKey:           env.GetEnv("API_KEY", ""),
		InternalTrustKey: env.GetEnv("INTERNAL_TRUST_KEY", ""),

		MinTransactions:         intEnv("MIN_TRANSACTIONS", 100),
		MinCreditedTransactions: intEnv("MIN_CREDITED_TRANSACTIONS", 50),
		MinUniqueWallets:        intEnv("MIN_UNIQUE_WALLETS", 10),

		CacheTTL:   durationEnv("CACHE_TTL", time.Hour),
		RateMax:    intEnv("RATE_MAX", 5),
		RateWindow: durationEnv("RATE_WINDOW", time.Hour),

		BatchMax:         intEnv("BATCH_MAX", 10),
		BatchConcurrency: intEnv("BATCH_CONCURRENCY", 3),

		LedgerTimeout:  durationEnv("LEDGER_TIMEOUT", 30*time.Second),
		WebhookTimeout: durationEnv("WEBHOOK_TIMEOUT", 10*time.Second),

		WebhookAttempts: intEnv("WEBHOOK_ATTEMPTS", 3),
		WebhookBackoff:  backoffEnv("WEBHOOK_BACKOFF", []time.Duration{0, time.Second, 5 * time.Second}),
		WebhookWorkers:  intEnv("WEBHOOK_WORKERS", 3),
	}
}

func intEnv(key string, def int) int {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Warnf("[Config] Invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Warnf("[Config] Invalid %s=%q, using default %s", key, raw, def)
		return def
	}
	return v
}

// backoffEnv parses a comma-separated duration list, e.g. "0,1s,5s".
func backoffEnv(key string, def []time.Duration) []time.Duration {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		v, err := time.ParseDuration(strings.TrimSpace(p))
		if err != nil || v < 0 {
			log.Warnf("[Config] Invalid %s=%q, using default", key, raw)
			return def
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return def
	}
	return out
}
