package handlers

import (
	"net/http"

	"github.com/fatflowers/agrobill/internal/app/service/checkout"
	"github.com/fatflowers/agrobill/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary      Verify Checkout
// @Description  Verifies the signature returned by the gateway checkout, activates the subscription and records the payment. Safe to repeat.
// @Tags         Checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body checkout.VerifyRequest true "Checkout callback fields"
// @Success      200  {object}  handlers.RespVerifyCheckout
// @Failure      400  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/checkout/verify [post]
func ApiVerifyCheckout(svc *checkout.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkout.VerifyRequest
		if err := decodeJSON(c.Request.Body, &req); err != nil {
			writeError(c, log, "verify_checkout", err)
			return
		}
		res, err := svc.Verify(c.Request.Context(), userID(c), &req)
		if err != nil {
			writeError(c, log, "verify_checkout", err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterCheckoutRoutes(r gin.IRouter, svc *checkout.Service, log *zap.SugaredLogger) {
	r.POST("/checkout/verify", ApiVerifyCheckout(svc, log))
}
