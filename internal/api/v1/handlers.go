package apiv1

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/verifox/VeriFox/internal/pkg/cache"
	"github.com/verifox/VeriFox/internal/pkg/config"
	"github.com/verifox/VeriFox/internal/pkg/database"
	"github.com/verifox/VeriFox/internal/pkg/decision"
	"github.com/verifox/VeriFox/internal/pkg/ledger"
	"github.com/verifox/VeriFox/internal/pkg/verification"
	"github.com/verifox/VeriFox/internal/pkg/webhook"
)

// Verifier is the pipeline surface the handlers depend on.
type Verifier interface {
	Verify(ctx context.Context, req verification.Request) (*verification.Result, error)
	VerifyBatch(ctx context.Context, entries []verification.Request, webhookURL, webhookSecret string) *verification.BatchResult
	DefaultThresholds() decision.Thresholds
}

// APIServer holds the handler dependencies.
type APIServer struct {
	cfg      *config.Settings
	svc      Verifier
	validate *validator.Validate
}

func NewAPIServer(cfg *config.Settings, svc Verifier) *APIServer {
	return &APIServer{
		cfg:      cfg,
		svc:      svc,
		validate: validator.New(),
	}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Success: false, Error: msg})
}

// requiredFieldMessage maps the first validation failure to its wire message.
func requiredFieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].StructField() {
		case "WalletAddress":
			return "Missing required field: walletAddress"
		case "BusinessName":
			return "Missing required field: businessName"
		case "ExternalUserID":
			return "Missing required field: externalUserId"
		case "Verifications":
			return "Missing required field: verifications"
		}
	}
	return "Invalid request body"
}

// resolveThresholds merges per-request overrides over the configured defaults.
func resolveThresholds(defaults decision.Thresholds, minTotal, minCredited, minUnique *int) decision.Thresholds {
	t := defaults
	if minTotal != nil {
		t.MinTotal = *minTotal
	}
	if minCredited != nil {
		t.MinCredited = *minCredited
	}
	if minUnique != nil {
		t.MinUnique = *minUnique
	}
	return t
}

// PostVerifyBusiness handles POST /verify-business.
func (s *APIServer) PostVerifyBusiness(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, requiredFieldMessage(err))
	}
	if req.WebhookURL != "" && !webhook.IsAcceptableURL(req.WebhookURL) {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid webhook URL")
	}

	result, err := s.svc.Verify(c.Context(), verification.Request{
		WalletAddress:  req.WalletAddress,
		BusinessName:   req.BusinessName,
		ExternalUserID: req.ExternalUserID,
		ForceRefresh:   req.ForceRefresh,
		WebhookURL:     req.WebhookURL,
		WebhookSecret:  req.WebhookSecret,
		Thresholds:     resolveThresholds(s.svc.DefaultThresholds(), req.MinTransactions, req.MinCreditedTransactions, req.MinUniqueWallets),
	})
	if err != nil {
		return s.verifyError(c, err)
	}

	if result.Cached {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	c.Set("X-Cache-Expires", result.CacheExpiresAt.UTC().Format(time.RFC3339))

	return c.JSON(VerifyResponse{
		Success:        true,
		Cached:         result.Cached,
		CacheExpiresAt: result.CacheExpiresAt.UTC().Format(time.RFC3339),
		WebhookQueued:  result.WebhookQueued,
		Data:           result.Data,
	})
}

// PostVerifyBusinessBatch handles POST /verify-business-batch. The envelope
// is validated as a whole; individual entry failures surface in the results.
func (s *APIServer) PostVerifyBusinessBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, requiredFieldMessage(err))
	}
	if len(req.Verifications) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Batch must contain at least one verification")
	}
	if len(req.Verifications) > s.cfg.BatchMax {
		return errorJSON(c, fiber.StatusBadRequest, "Batch size exceeds maximum of "+strconv.Itoa(s.cfg.BatchMax))
	}
	if req.WebhookURL != "" && !webhook.IsAcceptableURL(req.WebhookURL) {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid webhook URL")
	}

	thresholds := resolveThresholds(s.svc.DefaultThresholds(), req.MinTransactions, req.MinCreditedTransactions, req.MinUniqueWallets)
	entries := make([]verification.Request, len(req.Verifications))
	for i, e := range req.Verifications {
		entries[i] = verification.Request{
			WalletAddress:  e.WalletAddress,
			BusinessName:   e.BusinessName,
			ExternalUserID: e.ExternalUserID,
			ForceRefresh:   req.ForceRefresh,
			Thresholds:     thresholds,
		}
	}

	batch := s.svc.VerifyBatch(c.Context(), entries, req.WebhookURL, req.WebhookSecret)

	return c.JSON(BatchResponse{
		Success:         true,
		BatchID:         batch.BatchID,
		TotalRequested:  batch.TotalRequested,
		TotalProcessed:  batch.TotalProcessed,
		TotalSuccessful: batch.TotalSuccessful,
		TotalFailed:     batch.TotalFailed,
		Results:         batch.Results,
		WebhookQueued:   batch.WebhookQueued,
	})
}

// verifyError maps pipeline errors to HTTP statuses.
func (s *APIServer) verifyError(c *fiber.Ctx, err error) error {
	var rlErr *verification.RateLimitedError
	switch {
	case errors.As(err, &rlErr):
		c.Set("X-RateLimit-Limit", strconv.Itoa(rlErr.Limit))
		c.Set("X-RateLimit-Remaining", "0")
		c.Set("X-RateLimit-Reset", rlErr.ResetAt.UTC().Format(time.RFC3339))
		return errorJSON(c, fiber.StatusTooManyRequests, rlErr.Error())
	case errors.Is(err, verification.ErrInvalidAddress):
		return errorJSON(c, fiber.StatusBadRequest, verification.ErrInvalidAddress.Error())
	case errors.Is(err, verification.ErrQuotaExceeded):
		return errorJSON(c, fiber.StatusForbidden, verification.ErrQuotaExceeded.Error())
	case errors.Is(err, ledger.ErrUnavailable):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Ledger service unavailable")
	case errors.Is(err, ledger.ErrTimeout):
		return errorJSON(c, fiber.StatusGatewayTimeout, "Ledger request timed out")
	case errors.Is(err, verification.ErrPersistence):
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to persist verification result")
	default:
		log.Errorf("[API] Verification failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

// GetHealthz reports liveness of the service and its backing stores.
func (s *APIServer) GetHealthz(c *fiber.Ctx) error {
	status := fiber.StatusOK
	checks := fiber.Map{"database": "ok", "cache": "ok"}

	if db := database.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
			checks["database"] = "unreachable"
			status = fiber.StatusServiceUnavailable
		}
	} else {
		checks["database"] = "uninitialized"
		status = fiber.StatusServiceUnavailable
	}
	if err := cache.Ping(c.Context()); err != nil {
		checks["cache"] = "unreachable"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": checks,
	})
}
