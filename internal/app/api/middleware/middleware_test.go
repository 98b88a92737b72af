package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const secret = "test-secret"

func sign(t *testing.T, claims *Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func newEngine(base *zap.SugaredLogger, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(base), AuthMiddleware(secret))
	r.Use(extra...)
	r.GET("/whoami", func(c *gin.Context) {
		logctx.FromCtx(c.Request.Context(), base).Info("handled")
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString(logctx.UserIDKey),
			"ctx_user_id": logctx.UserID(c.Request.Context()),
			"role":        c.GetString(RoleKey),
		})
	})
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeCode(t *testing.T, w *httptest.ResponseRecorder) response.APIResponseCode {
	t.Helper()
	var resp response.APIResponse[any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestAuthMiddleware_AcceptsValidToken(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newEngine(zap.New(core).Sugar())

	w := get(r, "Bearer "+sign(t, &Claims{UserID: "user-1", Role: "farmer", StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()}}))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id":"user-1","ctx_user_id":"user-1","role":"farmer"}`, w.Body.String())
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	entries := logs.FilterMessage("handled").All()
	require.Len(t, entries, 1)
	require.Equal(t, "user-1", entries[0].ContextMap()["user_id"])
	require.Equal(t, w.Header().Get("X-Request-ID"), entries[0].ContextMap()["trace_id"])
}

func TestAuthMiddleware_FallsBackToSubject(t *testing.T) {
	r := newEngine(zap.NewNop().Sugar())
	w := get(r, "Bearer "+sign(t, &Claims{StandardClaims: jwt.StandardClaims{Subject: "user-2"}}))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"user_id":"user-2"`)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	r := newEngine(zap.NewNop().Sugar())

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString([]byte("other"))
	require.NoError(t, err)

	cases := map[string]string{
		"missing":    "",
		"not bearer": "Basic dXNlcjpwYXNz",
		"garbage":    "Bearer not-a-token",
		"expired":    "Bearer " + sign(t, &Claims{UserID: "user-1", StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()}}),
		"wrong key":  "Bearer " + otherKey,
		"alg none":   "Bearer " + none,
		"no user":    "Bearer " + sign(t, &Claims{Role: RoleAdmin}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(r, header)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Equal(t, response.APIResponseCodeUnauthorized, decodeCode(t, w))
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newEngine(zap.NewNop().Sugar(), RequireRole(RoleAdmin))

	w := get(r, "Bearer "+sign(t, &Claims{UserID: "user-1", Role: "farmer"}))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, response.APIResponseCodeForbidden, decodeCode(t, w))

	w = get(r, "Bearer "+sign(t, &Claims{UserID: "ops-1", Role: RoleAdmin}))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestTraceMiddleware_KeepsClientRequestID(t *testing.T) {
	r := newEngine(zap.NewNop().Sugar())
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Request-ID", "req-42")
	req.Header.Set("Authorization", "Bearer "+sign(t, &Claims{UserID: "user-1"}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}
