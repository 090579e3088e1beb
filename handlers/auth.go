package handlers

import (
	"log/slog"
	"net/http"

	"socialapp/services"

	"github.com/gin-gonic/gin"
)

// Signup persists the user before granting a session.
func (h *Handler) Signup(c *gin.Context) {
	var req services.SignupInput
	if !bind(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.Register(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.sessions.Start(c, user.ID); err != nil {
		respondError(c, err)
		return
	}

	slog.Info("user signed up", "user", user.ID.Hex())
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req services.LoginInput
	if !bind(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.Login(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.sessions.Start(c, user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.End(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) Me(c *gin.Context) {
	me, ok := actor(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.WhoAmI(ctx, me.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
