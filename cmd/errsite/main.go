// Package main is the entry point for the site server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"errsite/internal/auth"
	"errsite/internal/authz"
	"errsite/internal/cache"
	"errsite/internal/config"
	"errsite/internal/database"
	"errsite/internal/handlers"
	"errsite/internal/metrics"
	"errsite/internal/middleware"
	"errsite/internal/render"
	"errsite/internal/router"
	"errsite/internal/scope"
	"errsite/internal/session"
	"errsite/internal/store"
)

// loginRateLimit allows this many login attempts per IP per window.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the first admin, the localities, and the site settings
	// singleton (no-op once users exist).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Valkey backs the public page cache. The site runs without it; every
	// public request just hits the database.
	var pageCache *cache.PageCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, page cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		pageCache = cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	}

	// Session tokens are signed, not stored; Valkey plays no part in
	// authentication.
	tokens, err := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		slog.Error("failed to initialize session tokens", "error", err)
		os.Exit(1)
	}

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	metrics.Init()

	// Data stores.
	userStore := store.NewUserStore(db)
	localityStore := store.NewLocalityStore(db)
	postStore := store.NewPostStore(db)
	grantStore := store.NewGrantStore(db)
	auditStore := store.NewAuditStore(db)
	siteStore := store.NewSiteStore(db)

	// Session resolution and the authorization gate.
	secureCookies := !cfg.IsDev()
	sessions := session.NewResolver(tokens, userStore, secureCookies)
	scopes := scope.NewResolver(grantStore)
	gate := authz.New(db, userStore, localityStore, postStore, grantStore, auditStore, siteStore, scopes)

	loginLimiter := middleware.NewLoginLimiter(loginRateLimit, loginRateWindow)
	defer loginLimiter.Stop()

	// Handler groups.
	adminHandlers := handlers.NewAdmin(renderer, gate, userStore, localityStore, postStore, grantStore, auditStore, siteStore, scopes, pageCache)
	authHandlers := handlers.NewAuth(renderer, sessions, userStore)
	publicHandlers := handlers.NewPublic(renderer, postStore, localityStore, siteStore, pageCache)

	r := router.New(sessions, loginLimiter, adminHandlers, authHandlers, publicHandlers)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
