package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scavnger-backend/internal/services"
	"scavnger-backend/internal/utils"
)

// WebSocketHandler upgrades status-push connections.
type WebSocketHandler struct {
	push *services.PushService
}

func NewWebSocketHandler(push *services.PushService) *WebSocketHandler {
	return &WebSocketHandler{push: push}
}

// Connect handles GET /ws. The wallet address to receive pushes for is
// passed as a query parameter; check-in progress is public information, so
// no authentication is required to observe it.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	address := c.Query("address")
	if !utils.IsAccountAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "address query parameter must be a valid account address",
		})
		return
	}

	h.push.HandleWebSocket(c.Writer, c.Request, address)
}

// Stats handles GET /api/ws/stats. With an address query parameter it also
// reports that wallet's live connection count.
func (h *WebSocketHandler) Stats(c *gin.Context) {
	stats := gin.H{
		"success":            true,
		"active_connections": h.push.GetActiveConnections(),
	}
	if address := c.Query("address"); address != "" {
		stats["user_connections"] = h.push.GetUserConnections(address)
	}
	c.JSON(http.StatusOK, stats)
}
