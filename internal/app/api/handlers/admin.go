package handlers

import (
	"net/http"

	"github.com/fatflowers/agrobill/internal/app/service/ledger"
	"github.com/fatflowers/agrobill/internal/app/service/statistics"
	subsvc "github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/models"
	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/response"
	"github.com/fatflowers/agrobill/pkg/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ListRequest struct {
	Filters  []*types.CommonFilter `json:"filters"`
	Page     int                   `json:"page" validate:"gte=0"`
	PageSize int                   `json:"page_size" validate:"gte=0,lte=200"`
}

func (r *ListRequest) pagination() types.Pagination {
	return types.Pagination{Page: r.Page, PageSize: r.PageSize}
}

type ListSubscriptionsResponse struct {
	Items []*models.Subscription `json:"items"`
	Total int64                  `json:"total"`
}

type ListPaymentsResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

type ExpireDueResponse struct {
	Expired int `json:"expired"`
}

// @Summary      List Subscriptions (Admin)
// @Description  Retrieves a paginated and filterable list of subscriptions.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ListRequest true "Filters and pagination"
// @Success      200  {object}  handlers.RespListSubscriptions
// @Router       /api/v1/admin/list_subscriptions [post]
func ApiListSubscriptions(sub *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListRequest
		if err := decodeJSON(c.Request.Body, &req); err != nil {
			writeError(c, log, "admin_list_subscriptions", err)
			return
		}
		items, total, err := sub.List(c.Request.Context(), req.Filters, req.pagination())
		if err != nil {
			writeError(c, log, "admin_list_subscriptions", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListSubscriptionsResponse{Items: items, Total: total}))
	}
}

// @Summary      List Payments (Admin)
// @Description  Retrieves a paginated and filterable list of ledger payments.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ListRequest true "Filters and pagination"
// @Success      200  {object}  handlers.RespListPayments
// @Router       /api/v1/admin/list_payments [post]
func ApiListPayments(led *ledger.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListRequest
		if err := decodeJSON(c.Request.Body, &req); err != nil {
			writeError(c, log, "admin_list_payments", err)
			return
		}
		items, total, err := led.List(c.Request.Context(), req.Filters, req.pagination())
		if err != nil {
			writeError(c, log, "admin_list_payments", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListPaymentsResponse{Items: items, Total: total}))
	}
}

// @Summary      Get Billing Statistics (Admin)
// @Description  Retrieves daily payment counts, GMV by currency and subscription counts.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body statistics.StatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespBillingStatistic
// @Router       /api/v1/admin/get_billing_statistic [post]
func ApiGetBillingStatistic(svc *statistics.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.StatisticRequest
		if err := decodeJSON(c.Request.Body, &req); err != nil {
			writeError(c, log, "admin_billing_statistic", err)
			return
		}
		res, err := svc.GetBillingStatistic(c.Request.Context(), &req)
		if err != nil {
			writeError(c, log, "admin_billing_statistic", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Cancel Subscription (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Subscription id"
// @Success      200  {object}  handlers.RespSubscription
// @Failure      404  {object}  handlers.RespOK
// @Failure      409  {object}  handlers.RespOK
// @Router       /api/v1/admin/subscriptions/{id}/cancel [post]
func ApiAdminCancelSubscription(sub *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := sub.Cancel(c.Request.Context(), c.Param("id"), subsvc.CancelInput{
			By:         subsvc.CancelledByAdmin,
			OperatorID: userID(c),
		})
		if err != nil {
			writeError(c, log, "admin_cancel_subscription", err)
			return
		}
		logctx.FromGin(c, log).Infow("subscription_cancelled", "subscription_id", res.ID, "by", subsvc.CancelledByAdmin)
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Expire Due Subscriptions (Admin)
// @Description  Moves active subscriptions whose end date has passed to expired.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespExpireDue
// @Router       /api/v1/admin/expire_due [post]
func ApiExpireDue(sub *subsvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := sub.ExpireDue(c.Request.Context())
		if err != nil {
			writeError(c, log, "admin_expire_due", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ExpireDueResponse{Expired: n}))
	}
}

func RegisterAdminRoutes(r gin.IRouter, sub *subsvc.Service, led *ledger.Service, stats *statistics.Service, log *zap.SugaredLogger) {
	r.POST("/list_subscriptions", ApiListSubscriptions(sub, log))
	r.POST("/list_payments", ApiListPayments(led, log))
	r.POST("/get_billing_statistic", ApiGetBillingStatistic(stats, log))
	r.POST("/subscriptions/:id/cancel", ApiAdminCancelSubscription(sub, log))
	r.POST("/expire_due", ApiExpireDue(sub, log))
}
