package config

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/testutil"
	"pricecrowd-backend/pkg/fns"
	"pricecrowd-backend/pkg/jwt"
	"pricecrowd-backend/pkg/telegram"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	e2eQR       = "t=20240101T1200&fn=123&i=456&fp=789"
	fnsResponse = `{"code":1,"data":{"json":{"user":"Shop","totalSum":8990,"items":[{"name":"Milk","price":8990,"quantity":1,"sum":8990}]}}}`
)

type recordingBot struct {
	mu   sync.Mutex
	sent []string
}

func (b *recordingBot) GetUpdates(context.Context, string, int64, int) ([]telegram.Update, error) {
	return nil, nil
}

func (b *recordingBot) SendMessage(_ context.Context, _ string, _ int64, text string, _ *telegram.InlineKeyboardMarkup) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, text)
	return nil
}

func (b *recordingBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sent...)
}

type testApp struct {
	app *fiber.App
	bot *recordingBot
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "fns-token", r.PostForm.Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fnsResponse))
	}))
	t.Cleanup(upstream.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	bot := &recordingBot{}
	application, err := BuildApp(context.Background(), Dependencies{
		DB:            testutil.NewDB(t),
		Redis:         rdb,
		Logger:        logging.Nop(),
		JWTService:    jwt.NewJWTServiceWithSecret("e2e-secret"),
		FNS:           fns.Config{BaseURL: upstream.URL, Token: "fns-token"},
		BotAPI:        bot,
		WebAppURL:     "https://example.com/scan",
		AdminUsername: "admin",
		AdminPassword: "admin-pass",
	})
	require.NoError(t, err)
	return &testApp{app: application.App, bot: bot}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return a.doWithHeaders(t, method, path, headers, body)
}

func (a *testApp) doWithHeaders(t *testing.T, method, path string, headers map[string]string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	status, raw := a.do(t, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{Username: "admin", Password: "admin-pass"})
	require.Equal(t, http.StatusOK, status, string(raw))

	var res domain.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, domain.RoleAdmin, res.Role)
	return res.Token
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body.Error
}

func TestReceiptToPriceIndex(t *testing.T) {
	a := newTestApp(t)

	status, raw := a.do(t, http.MethodPost, "/api/v1/receipts/upload", "", fiber.Map{"qr": e2eQR, "user": "alice"})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	status, raw = a.do(t, http.MethodPost, "/api/v1/receipts/upload", "", fiber.Map{"qr": e2eQR})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"duplicate"}`, string(raw))

	status, raw = a.do(t, http.MethodPost, "/api/v1/receipts/upload", "", fiber.Map{"qr": ""})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"invalid_qr"}`, string(raw))

	status, raw = a.do(t, http.MethodPost, "/api/v1/receipts/upload", "", fiber.Map{"qr": "t=1&fn=2&i=3&fp=4&extra", "user": strings.Repeat("u", 100)})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	status, raw = a.do(t, http.MethodGet, "/api/v1/fns/check?qr=t%3D20240101T1200%26fn%3D123%26i%3D456%26fp%3D789", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, fnsResponse, string(raw))

	status, raw = a.do(t, http.MethodGet, "/api/v1/fns/check?t=20240101T1200", "", nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "missing_fields", errorCode(t, raw))

	status, _ = a.do(t, http.MethodPost, "/api/v1/operations", "", fiber.Map{})
	require.Equal(t, http.StatusUnauthorized, status)

	token := a.login(t)

	create := fiber.Map{
		"date":        "2024-01-01T12:00",
		"seller":      "Shop",
		"amount":      89.9,
		"qr":          e2eQR,
		"uploaded_by": "alice",
		"items": []fiber.Map{
			{"name": "Milk", "price": 89.9, "quantity": 1, "product_id": "P1"},
		},
	}
	status, raw = a.do(t, http.MethodPost, "/api/v1/operations", token, create)
	require.Equal(t, http.StatusOK, status, string(raw))
	var created domain.CreateOperationResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotEmpty(t, created.ID)

	create["qr"] = "t=20240202T1200&fn=1&i=2&fp=3"
	status, raw = a.do(t, http.MethodPost, "/api/v1/operations", token, create)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "user_has_operation", errorCode(t, raw))

	opPath := "/api/v1/operations/" + created.ID
	status, raw = a.do(t, http.MethodPost, opPath+"/status", token, fiber.Map{"status": "posted"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "missing_store", errorCode(t, raw))

	status, _ = a.do(t, http.MethodPut, opPath, token, fiber.Map{"store_id": "S1"})
	require.Equal(t, http.StatusNoContent, status)

	status, _ = a.do(t, http.MethodPost, opPath+"/status", token, fiber.Map{"status": "posted"})
	require.Equal(t, http.StatusNoContent, status)
	status, _ = a.do(t, http.MethodPost, opPath+"/status", token, fiber.Map{"status": "posted"})
	require.Equal(t, http.StatusNoContent, status)

	status, raw = a.do(t, http.MethodGet, "/api/v1/stores/S1/prices", "", nil)
	require.Equal(t, http.StatusOK, status)
	var prices []domain.PriceResponse
	require.NoError(t, json.Unmarshal(raw, &prices))
	require.Len(t, prices, 1)
	assert.Equal(t, "P1", prices[0].ProductID)
	assert.InDelta(t, 89.9, prices[0].Price, 1e-9)

	status, raw = a.do(t, http.MethodGet, "/api/v1/stores/S1/activities", "", nil)
	require.Equal(t, http.StatusOK, status)
	var activities []domain.ActivityResponse
	require.NoError(t, json.Unmarshal(raw, &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, "price_set", activities[0].Kind)
	assert.True(t, activities[0].Ts.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)), activities[0].Ts)

	status, raw = a.do(t, http.MethodPut, opPath, token, fiber.Map{"store_id": "S2"})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "operation_not_mutable", errorCode(t, raw))

	status, _ = a.do(t, http.MethodPost, opPath+"/status", token, fiber.Map{"status": "deleted"})
	require.Equal(t, http.StatusNoContent, status)
	status, raw = a.do(t, http.MethodPost, opPath+"/status", token, fiber.Map{"status": "posted"})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "operation_deleted", errorCode(t, raw))

	create["qr"] = e2eQR
	status, raw = a.do(t, http.MethodPost, "/api/v1/operations", token, create)
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "qr_used", errorCode(t, raw))

	status, _ = a.do(t, http.MethodGet, "/api/v1/operations/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = a.do(t, http.MethodGet, "/api/v1/receipts", token, nil)
	require.Equal(t, http.StatusOK, status)
	var receipts []domain.ReceiptResponse
	require.NoError(t, json.Unmarshal(raw, &receipts))
	require.Len(t, receipts, 2)
	submitters := map[string]string{}
	for _, r := range receipts {
		submitters[r.QR] = r.SubmittedBy
	}
	assert.Equal(t, "alice", submitters[e2eQR])
	assert.Equal(t, strings.Repeat("u", domain.MaxReceiptUser), submitters["t=1&fn=2&i=3&fp=4&extra"])
}

func TestTelegramLinkThroughWebhook(t *testing.T) {
	a := newTestApp(t)
	token := a.login(t)

	status, raw := a.do(t, http.MethodPost, "/api/v1/users/link_telegram/start", token, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var link domain.LinkStartResponse
	require.NoError(t, json.Unmarshal(raw, &link))
	require.Len(t, link.Code, 6)

	status, raw = a.do(t, http.MethodPut, "/api/v1/settings/telegram", token, fiber.Map{
		"token": "bot-token", "enabled": true, "webhook_enabled": true, "webhook_secret": "hook-secret",
	})
	require.Equal(t, http.StatusOK, status, string(raw))

	update := fiber.Map{
		"update_id": 501,
		"message": fiber.Map{
			"message_id": 1,
			"chat":       fiber.Map{"id": 9001},
			"from":       fiber.Map{"id": 9001, "username": "admin_tg"},
			"text":       "/link " + link.Code,
		},
	}
	status, raw = a.do(t, http.MethodPost, "/telegram/webhook", "", update)
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "webhook_secret_mismatch", errorCode(t, raw))
	status, _ = a.doWithHeaders(t, http.MethodPost, "/telegram/webhook", map[string]string{telegram.SecretTokenHeader: "wrong"}, update)
	require.Equal(t, http.StatusForbidden, status)
	assert.Empty(t, a.bot.texts())

	secret := map[string]string{telegram.SecretTokenHeader: "hook-secret"}
	status, _ = a.doWithHeaders(t, http.MethodPost, "/telegram/webhook", secret, update)
	require.Equal(t, http.StatusOK, status)
	status, _ = a.doWithHeaders(t, http.MethodPost, "/telegram/webhook", secret, update)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{telegram.ReplyLinked}, a.bot.texts())

	status, raw = a.do(t, http.MethodGet, "/api/v1/users/link_telegram/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"linked":true,"telegram_username":"admin_tg"}`, string(raw))

	status, raw = a.do(t, http.MethodGet, "/api/v1/settings/telegram/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	var botStatus domain.BotStatusResponse
	require.NoError(t, json.Unmarshal(raw, &botStatus))
	assert.True(t, botStatus.Enabled)
	assert.True(t, botStatus.WebhookEnabled)
	assert.False(t, botStatus.Polling)

	status, _ = a.do(t, http.MethodPost, "/api/v1/users/link_telegram/unlink", token, nil)
	require.Equal(t, http.StatusNoContent, status)
	status, raw = a.do(t, http.MethodGet, "/api/v1/users/link_telegram/status", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"linked":false}`, string(raw))
}

func TestAdminRoutesRejectPlainUsers(t *testing.T) {
	a := newTestApp(t)
	userToken, err := jwt.NewJWTServiceWithSecret("e2e-secret").GenerateTokenUser("u1", "bob", domain.RoleUser)
	require.NoError(t, err)

	status, raw := a.do(t, http.MethodGet, "/api/v1/operations", userToken, nil)
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "user_not_allowed", errorCode(t, raw))

	status, raw = a.do(t, http.MethodGet, "/api/v1/operations", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "token_invalid", errorCode(t, raw))

	status, raw = a.do(t, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{Username: "admin", Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_credentials", errorCode(t, raw))
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)

	status, raw := a.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	status, raw = a.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "go_goroutines")
}
