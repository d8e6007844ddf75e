package apiv1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiv1 "github.com/verifox/VeriFox/internal/api/v1"
	"github.com/verifox/VeriFox/internal/pkg/config"
	"github.com/verifox/VeriFox/internal/pkg/decision"
	"github.com/verifox/VeriFox/internal/pkg/ledger"
	"github.com/verifox/VeriFox/internal/pkg/middleware"
	"github.com/verifox/VeriFox/internal/pkg/verification"
)

const testWallet = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// stubVerifier returns canned pipeline results so handler behavior can be
// tested without backing stores.
type stubVerifier struct {
	result   *verification.Result
	err      error
	batch    *verification.BatchResult
	requests []verification.Request
}

func (s *stubVerifier) Verify(_ context.Context, req verification.Request) (*verification.Result, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubVerifier) VerifyBatch(_ context.Context, entries []verification.Request, _, _ string) *verification.BatchResult {
	s.requests = append(s.requests, entries...)
	return s.batch
}

func (s *stubVerifier) DefaultThresholds() decision.Thresholds {
	return decision.Thresholds{MinTotal: 100, MinCredited: 50, MinUnique: 10}
}

func newTestApp(svc apiv1.Verifier) *fiber.App {
	cfg := &config.Settings{
		APIKey:           "test-api-key",
		InternalTrustKey: "internal-key",
		BatchMax:         10,
		CacheTTL:         time.Hour,
	}
	app := fiber.New()
	server := apiv1.NewAPIServer(cfg, svc)
	protected := app.Group("/", middleware.APIKeyAuth(cfg))
	protected.Post("/verify-business", server.PostVerifyBusiness)
	protected.Post("/verify-business-batch", server.PostVerifyBusinessBatch)
	return app
}

func okResult() *verification.Result {
	return &verification.Result{
		Data: verification.VerificationData{
			VerificationID:       "v-1",
			WalletAddress:        testWallet,
			BusinessName:         "Pi Coffee Roasters",
			TotalTransactions:    150,
			CreditedTransactions: 80,
			UniqueWallets:        25,
			MeetsRequirements:    true,
			VerificationStatus:   "approved",
			VerifiedAt:           time.Now().UTC().Format(time.RFC3339),
		},
		CacheExpiresAt: time.Now().Add(time.Hour),
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func authed() map[string]string {
	return map[string]string{"x-api-key": "test-api-key"}
}

func decodeError(t *testing.T, resp *http.Response) apiv1.ErrorResponse {
	t.Helper()
	var body apiv1.ErrorResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"walletAddress":  testWallet,
		"businessName":   "Pi Coffee Roasters",
		"externalUserId": "user-1",
	}
}

func TestVerifyRequiresAPIKey(t *testing.T) {
	app := newTestApp(&stubVerifier{result: okResult()})

	resp := postJSON(t, app, "/verify-business", validBody(), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeError(t, resp)
	assert.False(t, body.Success)
	assert.Equal(t, "Unauthorized: Invalid or missing API key", body.Error)

	resp = postJSON(t, app, "/verify-business", validBody(), map[string]string{"x-api-key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyAcceptsInternalTrustKey(t *testing.T) {
	app := newTestApp(&stubVerifier{result: okResult()})

	resp := postJSON(t, app, "/verify-business", validBody(), map[string]string{"apikey": "internal-key"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVerifyMissingFields(t *testing.T) {
	app := newTestApp(&stubVerifier{result: okResult()})

	cases := []struct {
		drop    string
		message string
	}{
		{"walletAddress", "Missing required field: walletAddress"},
		{"businessName", "Missing required field: businessName"},
		{"externalUserId", "Missing required field: externalUserId"},
	}
	for _, tc := range cases {
		body := validBody()
		delete(body, tc.drop)
		resp := postJSON(t, app, "/verify-business", body, authed())
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, tc.message, decodeError(t, resp).Error)
	}
}

func TestVerifyRejectsBadWebhookURL(t *testing.T) {
	app := newTestApp(&stubVerifier{result: okResult()})

	body := validBody()
	body["webhookUrl"] = "ftp://example.com/hook"
	resp := postJSON(t, app, "/verify-business", body, authed())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid webhook URL", decodeError(t, resp).Error)
}

func TestVerifySuccessHeaders(t *testing.T) {
	svc := &stubVerifier{result: okResult()}
	app := newTestApp(svc)

	resp := postJSON(t, app, "/verify-business", validBody(), authed())

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	assert.NotEmpty(t, resp.Header.Get("X-Cache-Expires"))

	var body apiv1.VerifyResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Success)
	assert.False(t, body.Cached)
	assert.Equal(t, "v-1", body.Data.VerificationID)
	assert.Equal(t, 80, body.Data.CreditedTransactions)
}

func TestVerifyCachedResponseHeaders(t *testing.T) {
	res := okResult()
	res.Cached = true
	app := newTestApp(&stubVerifier{result: res})

	resp := postJSON(t, app, "/verify-business", validBody(), authed())

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))
}

func TestVerifyThresholdOverrides(t *testing.T) {
	svc := &stubVerifier{result: okResult()}
	app := newTestApp(svc)

	body := validBody()
	body["minTransactions"] = 5
	body["minUniqueWallets"] = 0
	resp := postJSON(t, app, "/verify-business", body, authed())

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, svc.requests, 1)
	// Explicit zero overrides; absent field keeps the default.
	assert.Equal(t, decision.Thresholds{MinTotal: 5, MinCredited: 50, MinUnique: 0}, svc.requests[0].Thresholds)
}

func TestVerifyRateLimitedResponse(t *testing.T) {
	resetAt := time.Now().Add(30 * time.Minute).UTC()
	app := newTestApp(&stubVerifier{err: &verification.RateLimitedError{Limit: 5, Count: 5, ResetAt: resetAt}})

	resp := postJSON(t, app, "/verify-business", validBody(), authed())

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "5", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, resetAt.Format(time.RFC3339), resp.Header.Get("X-RateLimit-Reset"))
	body := decodeError(t, resp)
	assert.Contains(t, body.Error, "Rate limit exceeded")
}

func TestVerifyErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{verification.ErrInvalidAddress, http.StatusBadRequest},
		{verification.ErrQuotaExceeded, http.StatusForbidden},
		{ledger.ErrUnavailable, http.StatusServiceUnavailable},
		{ledger.ErrTimeout, http.StatusGatewayTimeout},
		{verification.ErrPersistence, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		app := newTestApp(&stubVerifier{err: tc.err})
		resp := postJSON(t, app, "/verify-business", validBody(), authed())
		assert.Equal(t, tc.status, resp.StatusCode, "error %v", tc.err)
		assert.False(t, decodeError(t, resp).Success)
	}
}

func TestBatchRejectsOversizedBatch(t *testing.T) {
	app := newTestApp(&stubVerifier{})

	entries := make([]map[string]interface{}, 11)
	for i := range entries {
		entries[i] = validBody()
	}
	resp := postJSON(t, app, "/verify-business-batch", map[string]interface{}{"verifications": entries}, authed())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Batch size exceeds maximum of 10", decodeError(t, resp).Error)
}

func TestBatchRejectsEmptyBatch(t *testing.T) {
	app := newTestApp(&stubVerifier{})

	resp := postJSON(t, app, "/verify-business-batch", map[string]interface{}{"verifications": []interface{}{}}, authed())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Batch must contain at least one verification", decodeError(t, resp).Error)
}

func TestBatchSuccess(t *testing.T) {
	svc := &stubVerifier{
		batch: &verification.BatchResult{
			BatchID:         "b-1",
			TotalRequested:  2,
			TotalProcessed:  2,
			TotalSuccessful: 1,
			TotalFailed:     1,
			Results: []verification.BatchEntryResult{
				{Success: true, Data: &verification.VerificationData{VerificationID: "v-1"}},
				{Error: "Invalid wallet address format"},
			},
		},
	}
	app := newTestApp(svc)

	body := map[string]interface{}{
		"verifications": []map[string]interface{}{
			validBody(),
			{"walletAddress": "", "businessName": "B", "externalUserId": "user-1"},
		},
	}
	resp := postJSON(t, app, "/verify-business-batch", body, authed())

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out apiv1.BatchResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Success)
	assert.Equal(t, "b-1", out.BatchID)
	assert.Equal(t, 1, out.TotalFailed)
	require.Len(t, out.Results, 2)
	assert.False(t, out.Results[1].Success)
	assert.Contains(t, out.Results[1].Error, "Invalid wallet address format")
	// Every entry was passed through to the pipeline.
	assert.Len(t, svc.requests, 2)
}
