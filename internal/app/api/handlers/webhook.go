package handlers

import (
	"io"
	"net/http"

	"github.com/fatflowers/agrobill/internal/app/service/webhook"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/pkg/logctx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// @Summary      Razorpay Webhook
// @Description  Receives gateway events. The raw body is authenticated with X-Razorpay-Signature before it is parsed. Answers with a bare status: 400 for a bad signature, 500 to request redelivery, 200 otherwise.
// @Tags         Webhook
// @Accept       json
// @Param        X-Razorpay-Signature  header  string  true   "HMAC-SHA256 of the body with the webhook secret"
// @Param        X-Razorpay-Event-Id   header  string  false  "Delivery event id"
// @Param        payload body string true "Event payload"
// @Success      200
// @Failure      400
// @Failure      500
// @Router       /api/v1/webhooks/razorpay [post]
func ApiRazorpayWebhook(router *webhook.Router, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			logctx.FromGin(c, log).Warnw("webhook_body_read_failed", "err", err)
			c.Status(http.StatusBadRequest)
			return
		}
		res := router.Handle(c.Request.Context(), raw,
			c.GetHeader(razorpay.HeaderSignature), c.GetHeader(razorpay.HeaderEventID))
		c.Status(res.StatusCode)
	}
}

func RegisterWebhookRoutes(r gin.IRouter, router *webhook.Router, log *zap.SugaredLogger) {
	r.POST("/webhooks/razorpay", ApiRazorpayWebhook(router, log))
}
