package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"socialapp/auth"
	"socialapp/handlers"
	"socialapp/metrics"
	"socialapp/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Handler     *handlers.Handler
	Sessions    *auth.Sessions
	Users       middleware.UserFinder
	Store       Pinger
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
}

func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware())

	// The session cookie is only sent cross-origin to explicitly listed
	// origins, never to a wildcard.
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := opts.Store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	h := opts.Handler
	limiter := middleware.NewIPRateLimiter(opts.RateLimit, opts.RateWindow)
	requireUser := middleware.RequireUser(opts.Sessions, opts.Users)

	authGroup := router.Group("/api/auth")
	authGroup.POST("/signup", limiter.Middleware(), h.Signup)
	authGroup.POST("/login", limiter.Middleware(), h.Login)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", requireUser, h.Me)

	users := router.Group("/api/users", requireUser)
	users.GET("/profile/:username", h.Profile)
	users.POST("/follow/:id", h.Follow)
	users.GET("/suggested", h.Suggested)
	users.POST("/update", h.UpdateProfile)

	posts := router.Group("/api/posts", requireUser)
	posts.GET("/all", h.AllPosts)
	posts.GET("/following", h.FollowingPosts)
	posts.GET("/liked/:id", h.LikedPosts)
	posts.GET("/user/:username", h.UserPosts)
	posts.POST("/create", h.CreatePost)
	posts.POST("/like/:id", h.LikePost)
	posts.POST("/comment/:id", h.CommentPost)
	posts.DELETE("/:id", h.DeletePost)

	notifications := router.Group("/api/notifications", requireUser)
	notifications.GET("", h.Notifications)
	notifications.DELETE("", h.DeleteNotifications)
	notifications.DELETE("/:id", h.DeleteNotification)

	router.GET("/ws", requireUser, h.Live)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}
