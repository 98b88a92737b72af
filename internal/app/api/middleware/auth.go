package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatflowers/agrobill/pkg/apperr"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
)

const (
	RoleKey   = "role"
	RoleAdmin = "admin"
)

// Claims is the bearer token issued by the identity service.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// AuthMiddleware authenticates HS256 bearer tokens signed with secret and exposes
// the caller's user id to handlers and request-scoped loggers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		raw := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if raw == "" || raw == c.GetHeader("Authorization") || len(key) == 0 {
			abort(c, apperr.New(apperr.CodeUnauthorized, "missing bearer token"))
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			abort(c, apperr.New(apperr.CodeUnauthorized, "invalid or expired token"))
			return
		}

		userID := claims.UserID
		if userID == "" {
			userID = claims.Subject
		}
		if userID == "" {
			abort(c, apperr.New(apperr.CodeUnauthorized, "token has no subject"))
			return
		}

		c.Set(logctx.UserIDKey, userID)
		c.Set(RoleKey, claims.Role)
		ctx := context.WithValue(c.Request.Context(), logctx.UserIDKey, userID)
		// enrich the request logger attached before authentication
		if l, ok := c.Get(logctx.LoggerKey); ok {
			if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
				lg = lg.With("user_id", userID)
				c.Set(logctx.LoggerKey, lg)
				ctx = logctx.WithLogger(ctx, lg)
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole rejects callers whose token does not carry role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != role {
			abort(c, apperr.New(apperr.CodeForbidden, "access denied"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	status, resp := response.FromError(err)
	c.AbortWithStatusJSON(status, resp)
}
