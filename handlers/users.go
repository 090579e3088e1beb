package handlers

import (
	"net/http"

	"socialapp/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Profile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.Profile(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) Follow(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	target, ok := pathID(c, "id", "User not found")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	following, err := h.users.FollowToggle(ctx, me.ID, target)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "User Unfollowed successfully"
	if following {
		msg = "User Followed successfully"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *Handler) Suggested(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.users.Suggested(ctx, me.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}
	var req models.UserUpdate
	if !bind(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.UpdateProfile(ctx, me.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
