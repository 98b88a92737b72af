package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fatflowers/agrobill/internal/app/service/checkout"
	"github.com/fatflowers/agrobill/internal/app/service/ledger"
	"github.com/fatflowers/agrobill/internal/app/service/notification_log"
	"github.com/fatflowers/agrobill/internal/app/service/pricing"
	"github.com/fatflowers/agrobill/internal/app/service/statistics"
	subsvc "github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/app/service/webhook"
	"github.com/fatflowers/agrobill/internal/platform/archive"
	"github.com/fatflowers/agrobill/internal/platform/db/dbtest"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/internal/platform/razorpay/razorpaytest"
	"github.com/fatflowers/agrobill/internal/platform/redis"
	"github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/response"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	keySecret     = "rzp_test_secret"
	webhookSecret = "whsec_test"
)

type envelope struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    json.RawMessage          `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	subs   *subsvc.Service
	gw     *razorpaytest.Fake
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Gateway: config.GatewayConfig{KeyID: "rzp_test_key", KeySecret: keySecret, WebhookSecret: webhookSecret, Timeout: time.Second, SettlementCurrency: "INR"},
		Plans: []*types.Plan{
			{ID: "basic", Name: "Basic", Unit: types.AreaUnitHectare, Active: true, Pricing: []types.PricingEntry{
				{Currency: "INR", BillingCycle: types.BillingCycleMonthly, Unit: types.AreaUnitHectare, UnitPriceMinor: 5000},
				{Currency: "INR", BillingCycle: types.BillingCycleSeason, Unit: types.AreaUnitHectare, UnitPriceMinor: 3333},
			}},
			{ID: "trial", Name: "Trial", Unit: types.AreaUnitHectare, Active: true, IsTrial: true, TrialDays: 14},
		},
	}
	log := zap.NewNop().Sugar()
	gdb := dbtest.New(t)
	gw := razorpaytest.New()
	resolver, err := pricing.NewResolver(cfg)
	require.NoError(t, err)
	subs := subsvc.NewService(cfg, gdb, gw, resolver, log)
	led := ledger.NewService(gdb, log)
	router := webhook.NewRouter(webhook.Params{
		Config: cfg, Subscriptions: subs, Ledger: led, Gateway: gw,
		Guard:         redis.NewEventGuard(nil, time.Hour, "razorpay"),
		Archive:       archive.NewArchiver(nil, "", "webhooks"),
		Notifications: notification_log.New(gdb, log),
		Log:           log,
	})

	r := gin.New()
	api := r.Group("/api/v1")
	RegisterWebhookRoutes(api, router, log)

	user := api.Group("/")
	user.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(logctx.UserIDKey, uid)
		}
		c.Next()
	})
	RegisterSubscriptionRoutes(user, subs, led, log)
	RegisterCheckoutRoutes(user, checkout.NewService(cfg, subs, led, gw, log), log)
	RegisterAdminRoutes(api.Group("/admin"), subs, led, statistics.New(gdb), log)
	RegisterHealthRoutes(r)

	return &testServer{engine: r, subs: subs, gw: gw}
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, &env
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
}

func TestCreateSubscription(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{
		"field_id": "field-1", "plan_id": "basic", "currency": "INR", "billing_cycle": "monthly", "quantity": "2.5",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res subsvc.CreateResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, "user-1", res.Subscription.UserID)
	require.Equal(t, int64(12500), res.Subscription.AmountMinor)
	require.Equal(t, types.SubscriptionStatusPending, res.Subscription.Status)
	require.Equal(t, subsvc.CheckoutKindSubscription, res.Checkout.Kind)
	require.Equal(t, "rzp_test_key", res.Checkout.KeyID)

	// the same field cannot be subscribed twice
	w, env = s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{
		"field_id": "field-1", "plan_id": "basic", "currency": "INR", "billing_cycle": "season", "quantity": "1",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, response.APIResponseCodeConflict, env.Code)
	require.Contains(t, string(env.Data), res.Subscription.ID)
}

func TestCreateSubscription_Validation(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{
		"plan_id": "basic", "billing_cycle": "weekly", "quantity": "two",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &details))
	require.Equal(t, "is required", details["field_id"])
	require.Contains(t, details["billing_cycle"], "must be one of")
	require.Equal(t, "must be a number", details["quantity"])

	w, _ = s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", `{"field_id":"f","plan_id":"basic","price":1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{
		"field_id": "field-1", "plan_id": "basic", "billing_cycle": "monthly", "quantity": "1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details = nil
	require.NoError(t, json.Unmarshal(env.Data, &details))
	require.Equal(t, "is required", details["currency"])
	require.Empty(t, s.gw.Plans)
}

func TestCreateSubscription_PricingNotFound(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{
		"field_id": "field-1", "plan_id": "basic", "currency": "EUR", "billing_cycle": "monthly", "quantity": "1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, response.APIResponseCodePricingNotFound, env.Code)
	require.Empty(t, s.gw.Plans)
}

func TestCreateSubscription_GatewayFailureHidesCause(t *testing.T) {
	s := newTestServer(t)
	s.gw.CreateOrderErr = &razorpay.Error{Op: "create_order", StatusCode: 500, Description: "internal secret detail"}

	w, env := s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{
		"field_id": "field-1", "plan_id": "basic", "currency": "INR", "billing_cycle": "season", "quantity": "1",
	})
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, response.APIResponseCodeGateway, env.Code)
	require.NotContains(t, w.Body.String(), "internal secret detail")

	w, env = s.do(t, http.MethodGet, "/api/v1/subscriptions", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Empty(t, items)
}

func TestGetAndCancelSubscription(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{
		"field_id": "field-1", "plan_id": "trial",
	})
	var created subsvc.CreateResult
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created.Subscription.ID
	require.Nil(t, created.Checkout)

	w, _ := s.do(t, http.MethodGet, "/api/v1/subscriptions/"+id, "user-2", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/fields/field-1/active_subscription", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status FieldSubscriptionStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.True(t, status.Active)
	require.Equal(t, id, status.Subscription.ID)

	w, _ = s.do(t, http.MethodPost, "/api/v1/subscriptions/"+id+"/cancel", "user-2", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/subscriptions/"+id+"/cancel", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, string(env.Data), `"status":"cancelled"`)

	w, env = s.do(t, http.MethodGet, "/api/v1/fields/field-1/active_subscription", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.False(t, status.Active)
}

func TestWebhookAnswersBareStatus(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"entity":"event","event":"payment.refunded","payload":{}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(razorpay.HeaderSignature, "bogus")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, w.Body.Len())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	req.Header.Set(razorpay.HeaderSignature, razorpay.Sign(webhookSecret, body))
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, w.Body.Len())
}

func TestVerifyCheckout(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{
		"field_id": "field-1", "plan_id": "basic", "currency": "INR", "billing_cycle": "season", "quantity": "2.5",
	})
	var created subsvc.CreateResult
	require.NoError(t, json.Unmarshal(env.Data, &created))
	orderID := created.Checkout.GatewayRef

	w, env := s.do(t, http.MethodPost, "/api/v1/checkout/verify", "user-1", map[string]any{
		"razorpay_payment_id": "pay_1", "razorpay_order_id": orderID, "razorpay_signature": "deadbeef",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "validation failed", env.Message)
	require.JSONEq(t, `null`, string(env.Data))

	s.gw.Payments["pay_1"] = &razorpay.Payment{ID: "pay_1", Amount: 8333, Currency: "INR", Status: "captured", OrderID: orderID}
	w, env = s.do(t, http.MethodPost, "/api/v1/checkout/verify", "user-1", map[string]any{
		"razorpay_payment_id": "pay_1", "razorpay_order_id": orderID,
		"razorpay_signature": razorpay.Sign(keySecret, []byte(orderID+"|pay_1")),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var res checkout.VerifyResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, types.SubscriptionStatusActive, res.Subscription.Status)
	require.Equal(t, int64(8333), res.Payment.AmountMinor)

	w, env = s.do(t, http.MethodGet, "/api/v1/subscriptions/"+created.Subscription.ID+"/payments", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, string(env.Data), `"provider_payment_id":"pay_1"`)
}

func TestAdminList(t *testing.T) {
	s := newTestServer(t)
	for _, field := range []string{"f1", "f2", "f3"} {
		w, _ := s.do(t, http.MethodPost, "/api/v1/subscriptions", "user-1", map[string]any{"field_id": field, "plan_id": "trial"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, env := s.do(t, http.MethodPost, "/api/v1/admin/list_subscriptions", "", map[string]any{
		"filters":   []map[string]any{{"field": "field_id", "operator": "in", "values": []string{"f1", "f2"}}},
		"page":      1,
		"page_size": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var page ListSubscriptionsResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 1)

	w, _ = s.do(t, http.MethodPost, "/api/v1/admin/list_subscriptions", "", map[string]any{
		"filters": []map[string]any{{"field": "notes", "operator": "eq", "values": []string{"x"}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/admin/get_billing_statistic", "", map[string]any{
		"data_items": []map[string]any{{"id": "subscription_count_by_status"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, string(env.Data), `"label":"active","value":3`)
}
