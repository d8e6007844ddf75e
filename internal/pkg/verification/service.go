package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/verifox/VeriFox/app/models"
	"github.com/verifox/VeriFox/app/repository"
	"github.com/verifox/VeriFox/internal/pkg/config"
	"github.com/verifox/VeriFox/internal/pkg/decision"
	"github.com/verifox/VeriFox/internal/pkg/ledger"
	"github.com/verifox/VeriFox/internal/pkg/wallet"
	"github.com/verifox/VeriFox/internal/pkg/webhook"
)

// LedgerFetcher is the ledger scan the pipeline depends on.
type LedgerFetcher interface {
	FetchPaymentCounters(ctx context.Context, walletAddr string) (ledger.Counters, error)
}

// WebhookEnqueuer hands completed results to the delivery queue.
type WebhookEnqueuer interface {
	Enqueue(refID, event, targetURL, secret string, data interface{}) (string, bool)
}

// Service runs the verification pipeline: rate limit, address check, cache
// read, allowance, ledger scan, decision, persist, usage increment and
// webhook enqueue, in that order.
type Service struct {
	cfg    *config.Settings
	repos  *repository.Repositories
	ledger LedgerFetcher
	cache  *ResultCache
	hooks  WebhookEnqueuer
}

// NewService wires the pipeline together.
func NewService(cfg *config.Settings, repos *repository.Repositories, lf LedgerFetcher, rc *ResultCache, hooks WebhookEnqueuer) *Service {
	return &Service{cfg: cfg, repos: repos, ledger: lf, cache: rc, hooks: hooks}
}

// Request is one verification to run. Thresholds are already resolved
// against the configured defaults by the caller.
type Request struct {
	WalletAddress  string
	BusinessName   string
	ExternalUserID string
	ForceRefresh   bool
	WebhookURL     string
	WebhookSecret  string
	Thresholds     decision.Thresholds
}

// Result is the outcome of one verification run.
type Result struct {
	Data           VerificationData
	Cached         bool
	CacheExpiresAt time.Time
	WebhookQueued  bool
}

// DefaultThresholds returns the configured decision thresholds.
func (s *Service) DefaultThresholds() decision.Thresholds {
	return decision.Thresholds{
		MinTotal:    s.cfg.MinTransactions,
		MinCredited: s.cfg.MinCreditedTransactions,
		MinUnique:   s.cfg.MinUniqueWallets,
	}
}

// Verify runs the full pipeline for one wallet. Refusals are reported as
// typed errors (*RateLimitedError, ErrInvalidAddress, ErrQuotaExceeded);
// ledger errors pass through for status mapping at the HTTP layer.
func (s *Service) Verify(ctx context.Context, req Request) (*Result, error) {
	// Rate limiting runs first so malformed requests burn quota too.
	rl, err := s.repos.RateLimit.Check(ctx, req.WalletAddress, s.cfg.RateMax, s.cfg.RateWindow)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !rl.Allowed {
		return nil, &RateLimitedError{Limit: s.cfg.RateMax, Count: rl.Count, ResetAt: rl.ResetAt}
	}

	if !wallet.IsValidAddress(req.WalletAddress) {
		return nil, ErrInvalidAddress
	}

	if !req.ForceRefresh {
		if hit, ok := s.cache.Lookup(ctx, req.WalletAddress); ok {
			return &Result{
				Data:           DataFor(hit),
				Cached:         true,
				CacheExpiresAt: hit.UpdatedAt.Add(s.cfg.CacheTTL),
			}, nil
		}
	}

	allowance, err := s.repos.Subscription.CheckAllowance(ctx, req.ExternalUserID)
	if err != nil {
		return nil, fmt.Errorf("allowance check: %w", err)
	}
	if !allowance.Allowed {
		return nil, ErrQuotaExceeded
	}

	counters, err := s.ledger.FetchPaymentCounters(ctx, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	d := decision.Decide(counters, req.Thresholds)

	stored, err := s.repos.Verification.Upsert(ctx, &models.Verification{
		WalletAddress:        req.WalletAddress,
		BusinessName:         req.BusinessName,
		ExternalUserID:       req.ExternalUserID,
		TotalTransactions:    counters.Total,
		CreditedTransactions: counters.Credited,
		UniqueWallets:        counters.UniqueCounterparties,
		Status:               d.Status,
		FailureReason:        d.FailureReason,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.cache.Store(stored)

	if err := s.repos.Subscription.IncrementUsage(ctx, req.ExternalUserID); err != nil {
		log.Warnf("[Verification] Failed to increment usage for %s: %v", req.ExternalUserID, err)
	}

	result := &Result{
		Data:           DataFor(stored),
		CacheExpiresAt: stored.UpdatedAt.Add(s.cfg.CacheTTL),
	}
	if req.WebhookURL != "" {
		_, queued := s.hooks.Enqueue(stored.ID, webhook.EventVerificationCompleted, req.WebhookURL, req.WebhookSecret, result.Data)
		result.WebhookQueued = queued
	}
	return result, nil
}
