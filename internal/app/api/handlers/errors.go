package handlers

import (
	"net/http"

	"github.com/fatflowers/agrobill/pkg/logctx"
	"github.com/fatflowers/agrobill/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError answers with the envelope and status for err. Server-side failures are
// logged with their cause, which never reaches the client.
func writeError(c *gin.Context, log *zap.SugaredLogger, op string, err error) {
	status, resp := response.FromError(err)
	if status >= http.StatusInternalServerError {
		logctx.FromGin(c, log).Errorw(op+"_failed", "err", err)
	} else {
		logctx.FromGin(c, log).Infow(op+"_rejected", "code", resp.Code, "err", err)
	}
	c.JSON(status, resp)
}

func userID(c *gin.Context) string {
	return c.GetString(logctx.UserIDKey)
}
