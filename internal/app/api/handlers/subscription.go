package handlers

import (
	"net/http"

	"github.com/fatflowers/agrobill/internal/app/service/ledger"
	subsvc "github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FieldSubscriptionStatus answers whether a field is currently covered.
type FieldSubscriptionStatus struct {
	FieldID      string               `json:"field_id"`
	Active       bool                 `json:"active"`
	Subscription *models.Subscription `json:"subscription"`
}

// @Summary      Create Subscription
// @Description  Prices the field on the plan and creates the subscription. Paid cycles also return the gateway checkout to open; trial plans are active immediately.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body subscription.CreateRequest true "Field, plan and billing terms"
// @Success      200  {object}  handlers.RespCreateSubscription
// @Failure      400  {object}  handlers.RespOK
// @Failure      409  {object}  handlers.RespOK
// @Failure      422  {object}  handlers.RespOK
// @Failure      502  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions [post]
func ApiCreateSubscription(sub *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req subsvc.CreateRequest
		if err := decodeJSON(c.Request.Body, &req); err != nil {
			writeError(c, log, "create_subscription", err)
			return
		}
		req.UserID = userID(c)
		res, err := sub.Create(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, "create_subscription", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List My Subscriptions
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespSubscriptionList
// @Router       /api/v1/subscriptions [get]
func ApiListMySubscriptions(sub *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := sub.ListByUser(c.Request.Context(), userID(c))
		if err != nil {
			writeError(c, log, "list_subscriptions", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Get Subscription
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Subscription id"
// @Success      200  {object}  handlers.RespSubscription
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id} [get]
func ApiGetSubscription(sub *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := sub.GetForUser(c.Request.Context(), userID(c), c.Param("id"))
		if err != nil {
			writeError(c, log, "get_subscription", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Cancel Subscription
// @Description  Cancels the subscription locally and, for recurring cycles, at the gateway on a best-effort basis.
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Subscription id"
// @Success      200  {object}  handlers.RespSubscription
// @Failure      404  {object}  handlers.RespOK
// @Failure      409  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id}/cancel [post]
func ApiCancelSubscription(sub *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := sub.CancelForUser(c.Request.Context(), userID(c), c.Param("id"))
		if err != nil {
			writeError(c, log, "cancel_subscription", err)
			return
		}
		logctx.FromGin(c, log).Infow("subscription_cancelled", "subscription_id", res.ID, "by", subsvc.CancelledByUser)
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      List Subscription Payments
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Subscription id"
// @Success      200  {object}  handlers.RespPaymentList
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{id}/payments [get]
func ApiListSubscriptionPayments(sub *subsvc.Service, led *ledger.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		owned, err := sub.GetForUser(c.Request.Context(), userID(c), c.Param("id"))
		if err != nil {
			writeError(c, log, "list_payments", err)
			return
		}
		items, err := led.ListBySubscription(c.Request.Context(), owned.ID)
		if err != nil {
			writeError(c, log, "list_payments", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Field Active Subscription
// @Description  Reports whether the field has an active subscription.
// @Tags         Subscription
// @Produce      json
// @Security     BearerAuth
// @Param        field_id  path  string  true  "Field id"
// @Success      200  {object}  handlers.RespFieldSubscriptionStatus
// @Router       /api/v1/fields/{field_id}/active_subscription [get]
func ApiFieldActiveSubscription(sub *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fieldID := c.Param("field_id")
		active, err := sub.ActiveForField(c.Request.Context(), fieldID)
		if err != nil {
			writeError(c, log, "field_active_subscription", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&FieldSubscriptionStatus{FieldID: fieldID, Active: active != nil, Subscription: active}))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, sub *subsvc.Service, led *ledger.Service, log *zap.SugaredLogger) {
	r.POST("/subscriptions", ApiCreateSubscription(sub, log))
	r.GET("/subscriptions", ApiListMySubscriptions(sub, log))
	r.GET("/subscriptions/:id", ApiGetSubscription(sub, log))
	r.POST("/subscriptions/:id/cancel", ApiCancelSubscription(sub, log))
	r.GET("/subscriptions/:id/payments", ApiListSubscriptionPayments(sub, led, log))
	r.GET("/fields/:field_id/active_subscription", ApiFieldActiveSubscription(sub, log))
}
