package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Notifications(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.notifications.List(ctx, me.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) DeleteNotifications(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.notifications.DeleteAll(ctx, me.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications deleted successfully"})
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "Notification not found")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.notifications.DeleteOne(ctx, me.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
