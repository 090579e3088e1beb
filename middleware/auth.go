package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"socialapp/auth"
	"socialapp/database"
	"socialapp/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const currentUserKey = "currentUser"

// UserFinder resolves the token subject to a live user.
type UserFinder interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequireUser authenticates the request from the session cookie and stores
// the resolved user, without its password hash, on the gin context.
func RequireUser(sessions *auth.Sessions, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		// CORS preflight carries no cookie.
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			abort(c, http.StatusUnauthorized, "Unauthorized: No Token Provided")
			return
		}

		userID, err := sessions.Verify(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Unauthorized: Invalid Token")
			return
		}

		user, err := users.FindUserByID(c.Request.Context(), userID)
		if errors.Is(err, database.ErrNotFound) {
			abort(c, http.StatusUnauthorized, "User not found")
			return
		}
		if err != nil {
			slog.Error("resolving session user", "user", userID.Hex(), "error", err)
			abort(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		public := user.Public()
		c.Set(currentUserKey, &public)
		c.Next()
	}
}

// CurrentUser returns the user attached by RequireUser.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
