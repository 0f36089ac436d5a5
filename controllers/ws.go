package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"accounting-portal-api/realtime"
)

// ConnectWS upgrades the request to a websocket session. Auth already ran
// (token comes in as a query parameter for upgrades), so the user identity
// is on the context; room membership is negotiated over the socket itself.
func ConnectWS(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Realtime service not available"})
		return
	}
	realtime.ServeWS(hub, c.Writer, c.Request, userID)
}
