package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-contentgen-be/internal/bootstrap"
	"ai-contentgen-be/internal/config"
	"ai-contentgen-be/internal/entity"
	"ai-contentgen-be/internal/model"
	"ai-contentgen-be/internal/pkg/logger"
	"ai-contentgen-be/internal/pkg/mailer"
	"ai-contentgen-be/internal/pkg/serverutils"
	"ai-contentgen-be/internal/testutil"
	adminEvents "ai-contentgen-be/pkg/admin/events"
	"ai-contentgen-be/pkg/payment"
	"ai-contentgen-be/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// blogLimiter denies every blog request and lets everything else through.
type blogLimiter struct{}

func (blogLimiter) Allow(_ context.Context, subject ratelimit.Subject, _ []ratelimit.Window, _ time.Time) (ratelimit.Decision, error) {
	if subject.Tool == "blog" {
		return ratelimit.Decision{Allowed: false, RetryAfter: 90*time.Second + 500*time.Millisecond, Violated: "hour"}, nil
	}
	return ratelimit.Decision{Allowed: true}, nil
}

type noGateway struct{}

func (noGateway) CreateCheckout(req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	return &payment.CheckoutSession{Token: "tok", RedirectURL: "https://pay.example/" + req.OrderId}, nil
}

type harness struct {
	app *fiber.App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testSecret
	cfg.Ai.LLMModel = "test-model"
	cfg.Generation.Timeout = 5 * time.Second
	cfg.Generation.SignupBonusCredits = 5
	cfg.Generation.ToolCacheTTL = time.Minute
	cfg.Generation.UsageTopic = "usage"
	cfg.RateLimit.FlagTTL = time.Hour
	cfg.Payment.MidtransServerKey = "server-key"
	cfg.Payment.PricePerCredit = 1000
	cfg.Payment.MinTopUpCredits = 10

	container := bootstrap.NewContainerWith(db, cfg, bootstrap.Overrides{
		LLMProvider:  &testutil.FakeProvider{Text: "Generated"},
		Gateway:      noGateway{},
		Counter:      blogLimiter{},
		Logger:       logger.NewNop(),
		Incidents:    logger.NewNop(),
		EmailService: mailer.NewNoopEmailService(),
		Events:       adminEvents.NewRecorder(),
	})
	t.Cleanup(container.Close)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandlerMiddleware})
	RegisterRoutes(app, container)

	testutil.SeedTool(t, db, "caption", 2, 0, 0, true)
	testutil.SeedTool(t, db, "blog", 1, 5, 0, true)
	testutil.SeedTool(t, db, "retired", 1, 0, 0, false)
	return &harness{app: app, db: db}
}

func (h *harness) token(t *testing.T, accountId uuid.UUID) string {
	t.Helper()
	tok, err := serverutils.SignToken(testSecret, accountId.String(), "user", "creator@example.com", time.Now().Add(time.Hour).Unix())
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func generateBody(tool, content string) map[string]interface{} {
	return map[string]interface{}{
		"tool_name":      tool,
		"source_content": content,
		"settings":       map[string]string{"tone": "casual"},
	}
}

func TestPublicRoutes(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := h.do(t, http.MethodGet, "/api/tools", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 2)

	resp, _ = h.do(t, http.MethodPost, "/api/generations", "", generateBody("caption", "x"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGenerationFlowOverHTTP(t *testing.T) {
	h := newHarness(t)
	accountId := uuid.New()
	tok := h.token(t, accountId)

	// Unknown accounts must bootstrap first.
	resp, _ := h.do(t, http.MethodGet, "/api/account/balance", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := h.do(t, http.MethodPost, "/api/account/bootstrap", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.EqualValues(t, 5, body["data"].(map[string]interface{})["credits"])

	resp, body = h.do(t, http.MethodPost, "/api/generations", tok, generateBody("caption", "Launch day"))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Generated", data["content"])
	assert.EqualValues(t, 3, data["balance"])

	resp, body = h.do(t, http.MethodPost, "/api/generations", tok, generateBody("caption", "Launch day"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]interface{})["was_cached"])

	resp, _ = h.do(t, http.MethodPost, "/api/generations", tok, generateBody("caption", "Second post"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, "/api/generations", tok, generateBody("caption", "Third post"))
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	data = body["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["required"])
	assert.EqualValues(t, 1, data["available"])

	resp, body = h.do(t, http.MethodGet, "/api/generations", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["data"].(map[string]interface{})["total"])

	resp, body = h.do(t, http.MethodGet, "/api/account/transactions", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["data"].(map[string]interface{})["total"])
}

func TestGenerationErrorMapping(t *testing.T) {
	h := newHarness(t)
	accountId := testutil.SeedAccount(t, h.db, entity.AccountRoleUser, 10)
	tok := h.token(t, accountId)

	resp, body := h.do(t, http.MethodPost, "/api/generations", tok, generateBody("blog", "Long form"))
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "91", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "hour", body["data"].(map[string]interface{})["window"])

	resp, _ = h.do(t, http.MethodPost, "/api/generations", tok, generateBody("nope", "x"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/generations", tok, generateBody("retired", "x"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/generations", tok, map[string]interface{}{"tool_name": "caption"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/generations/"+uuid.NewString(), tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, h.db.Model(&model.Account{}).Where("id = ?", accountId).Update("is_banned", true).Error)
	resp, _ = h.do(t, http.MethodPost, "/api/generations", tok, generateBody("caption", "x"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminRoutesFollowStoredRole(t *testing.T) {
	h := newHarness(t)
	userId := testutil.SeedAccount(t, h.db, entity.AccountRoleUser, 10)
	supportId := testutil.SeedAccount(t, h.db, entity.AccountRoleSupport, 0)
	adminId := testutil.SeedAccount(t, h.db, entity.AccountRoleAdmin, 0)

	// The token claims "user" for everyone; the stored role decides.
	resp, _ := h.do(t, http.MethodGet, "/api/admin/accounts", h.token(t, userId), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/admin/accounts", h.token(t, supportId), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ban := map[string]interface{}{"banned": true, "reason": "spam"}
	resp, _ = h.do(t, http.MethodPut, "/api/admin/accounts/"+userId.String()+"/ban", h.token(t, supportId), ban)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := h.do(t, http.MethodPut, "/api/admin/accounts/"+userId.String()+"/ban", h.token(t, adminId), ban)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["data"].(map[string]interface{})["is_banned"])

	grant := map[string]interface{}{"amount": 4, "reason": "sorry"}
	resp, body = h.do(t, http.MethodPost, "/api/admin/accounts/"+userId.String()+"/credits", h.token(t, adminId), grant)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.EqualValues(t, 14, body["data"].(map[string]interface{})["balance_after"])

	deduct := map[string]interface{}{"amount": 100, "reason": "too much"}
	resp, _ = h.do(t, http.MethodPost, "/api/admin/accounts/"+userId.String()+"/credits/deduct", h.token(t, adminId), deduct)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	resp, body = h.do(t, http.MethodGet, "/api/admin/credits/drift", h.token(t, adminId), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])
}

func TestPaymentNotificationOutcomes(t *testing.T) {
	h := newHarness(t)

	orderId := uuid.NewString()
	signed := map[string]interface{}{
		"transaction_status": "settlement",
		"order_id":           orderId,
		"status_code":        "200",
		"gross_amount":       "10000.00",
		"signature_key":      payment.Signature(orderId, "200", "10000.00", "server-key"),
	}
	resp, body := h.do(t, http.MethodPost, "/api/payment/notification", "", signed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ignored", body["message"])

	signed["signature_key"] = "forged"
	resp, _ = h.do(t, http.MethodPost, "/api/payment/notification", "", signed)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
