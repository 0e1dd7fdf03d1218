package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserIDFunc extracts the authenticated user from the request context
type UserIDFunc func(c *gin.Context) (int64, bool)

// Handler upgrades authenticated requests to notification sessions
type Handler struct {
	hub    *Hub
	userID UserIDFunc
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, userID UserIDFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		userID: userID,
		logger: logger,
	}
}

// HandleConnection godoc
// @Summary Open a live notification stream
// @Description Upgrades the connection to a WebSocket that receives the caller's workflow notifications
// @Tags notifications, websocket
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /notifications/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
		logger: h.logger,
	}
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}
