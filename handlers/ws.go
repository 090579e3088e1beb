package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// Live upgrades an authenticated request to a websocket that receives the
// user's notification events.
func (h *Handler) Live(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	// The upgrader has already written an HTTP error response on failure.
	if err := h.hub.Serve(c.Writer, c.Request, me.ID.Hex()); err != nil {
		slog.Debug("websocket session not established", "user", me.ID.Hex(), "error", err)
	}
}
