// Package main is the entry point for the blog API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogapi/internal/cache"
	"blogapi/internal/config"
	"blogapi/internal/database"
	"blogapi/internal/handlers"
	"blogapi/internal/middleware"
	"blogapi/internal/router"
	"blogapi/internal/store"
	"blogapi/internal/store/memory"
	"blogapi/internal/token"
)

// stores bundles the persistence backend selected by STORE_DRIVER.
type stores struct {
	users    handlers.UserStore
	posts    handlers.PostStore
	comments handlers.CommentStore
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var logHandler slog.Handler
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	st, err := openStores(cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	// Valkey backs token revocation and the listing cache. Without it the
	// denylist lives in process memory and listings are not cached.
	var (
		denylist  token.Denylist
		listCache handlers.ListCache
	)
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		if cfg.StoreDriver == config.DriverPostgres {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		slog.Warn("valkey unavailable, using in-memory token denylist and no listing cache", "error", err)
		denylist = token.NewMemoryDenylist()
	} else {
		defer valkeyClient.Close()
		denylist = token.NewValkeyDenylist(valkeyClient)
		listCache = cache.NewListCache(valkeyClient, cache.DefaultListTTL)
	}

	tokens, err := token.NewManager(cfg.JWTSecret, cfg.JWTTTL, denylist)
	if err != nil {
		slog.Error("failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	defer authLimiter.Stop()

	r := router.New(
		tokens,
		st.users,
		authLimiter,
		handlers.NewAuth(st.users, tokens),
		handlers.NewPosts(st.posts, st.comments, listCache),
		handlers.NewComments(st.posts, st.comments),
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
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

// openStores connects the configured backend, runs migrations, and seeds the
// admin account in development.
func openStores(cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		mem := memory.New()
		if cfg.IsDev() {
			if err := database.Seed(mem.Users(), cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
				return nil, err
			}
		}
		return &stores{
			users:    mem.Users(),
			posts:    mem.Posts(),
			comments: mem.Comments(),
			close:    func() {},
		}, nil
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.IsDev() {
		if err := database.Seed(store.NewUserStore(db), cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &stores{
		users:    store.NewUserStore(db),
		posts:    store.NewPostStore(db),
		comments: store.NewCommentStore(db),
		close:    func() { db.Close() },
	}, nil
}
