// Package handlers adapts the HTTP surface onto the services.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"socialapp/apperr"
	"socialapp/auth"
	"socialapp/middleware"
	"socialapp/models"
	"socialapp/services"
	"socialapp/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const requestTimeout = 10 * time.Second

type Handler struct {
	auth          *services.AuthService
	users         *services.UserService
	posts         *services.PostService
	notifications *services.NotificationService
	sessions      *auth.Sessions
	hub           *websocket.Manager
}

type Deps struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Posts         *services.PostService
	Notifications *services.NotificationService
	Sessions      *auth.Sessions
	Hub           *websocket.Manager
}

func New(d Deps) *Handler {
	return &Handler{
		auth:          d.Auth,
		users:         d.Users,
		posts:         d.Posts,
		notifications: d.Notifications,
		sessions:      d.Sessions,
		hub:           d.Hub,
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// actor returns the user resolved by the authorization gate. Handlers behind
// the gate can rely on it; the 401 here only guards against miswiring.
func actor(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No Token Provided"})
	}
	return user, ok
}

// pathID parses an ObjectID path parameter. Malformed ids cannot reference a
// stored entity, so they are reported as not found.
func pathID(c *gin.Context, name, notFound string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return primitive.NilObjectID, false
	}
	return id, true
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// respondError writes err as {"error": message}. Unexpected failures are
// logged with their cause; domain failures are not.
func respondError(c *gin.Context, err error) {
	status, msg := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.JSON(status, gin.H{"error": msg})
}
