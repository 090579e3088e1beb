package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialapp/auth"
	"socialapp/config"
	"socialapp/database"
	"socialapp/handlers"
	"socialapp/media"
	"socialapp/routes"
	"socialapp/services"
	"socialapp/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if err := config.InitLogger(cfg.LogLevel); err != nil {
		slog.Error("initializing logger", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (services.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return database.NewMemory(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	slog.Info("connecting to MongoDB", "database", cfg.MongoDatabase)
	store, err := database.ConnectMongo(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}
	slog.Info("MongoDB connected")
	return store, nil
}

func openMedia(cfg *config.Config) (media.Host, error) {
	if cfg.CloudinaryURL == "" {
		slog.Warn("CLOUDINARY_URL not set, image uploads are disabled")
		return media.Disabled{}, nil
	}
	return media.NewCloudinary(cfg.CloudinaryURL)
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			slog.Warn("closing store", "error", err)
		}
	}()

	images, err := openMedia(cfg)
	if err != nil {
		return err
	}

	hub := websocket.NewManager(cfg.CORSOrigins)
	go hub.Start(ctx)

	sessions := auth.NewSessions(cfg.JWTSecret, cfg.TokenLifetime, !cfg.Development())
	notifications := services.NewNotificationService(store, store, hub)

	h := handlers.New(handlers.Deps{
		Auth:          services.NewAuthService(store),
		Users:         services.NewUserService(store, notifications, images),
		Posts:         services.NewPostService(store, store, notifications, images),
		Notifications: notifications,
		Sessions:      sessions,
		Hub:           hub,
	})

	router := routes.SetupRouter(routes.Options{
		Handler:     h,
		Sessions:    sessions,
		Users:       store,
		Store:       store,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		RateWindow:  cfg.RateWindow,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
