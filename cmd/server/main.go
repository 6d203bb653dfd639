package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ceosim/game-engine/internal/catalog"
	"github.com/ceosim/game-engine/internal/config"
	"github.com/ceosim/game-engine/internal/game"
	"github.com/ceosim/game-engine/internal/metrics"
	"github.com/ceosim/game-engine/internal/rng"
	"github.com/ceosim/game-engine/internal/session"
	"github.com/ceosim/game-engine/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()

	switch {
	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("database connection failed", "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, pool.Close)
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("database migration failed", "err", err)
			os.Exit(1)
		}
		st = pg
		slog.Info("connected to PostgreSQL")
	case cfg.SQLitePath != "":
		lite, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			slog.Error("sqlite open failed", "path", cfg.SQLitePath, "err", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, func() { lite.Close() })
		st = lite
		slog.Info("using SQLite store", "path", cfg.SQLitePath)
	default:
		slog.Warn("DATABASE_URL and SQLITE_PATH not set, using in-memory store (games will not persist)")
		st = store.NewMemoryStore()
	}

	// Wrap with Redis read-through cache if configured.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
		slog.Info("Redis cache enabled", "ttl", cfg.CacheTTL)
	}

	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	// --- Engine ---
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("catalog load failed", "path", cfg.CatalogPath, "err", err)
		os.Exit(1)
	}
	size := cat.Size()
	slog.Info("catalog loaded",
		"startup", size["startup"],
		"growth", size["growth"],
		"scale", size["scale"],
	)
	engine := game.New(cat, rng.New(cfg.Seed), cfg.Engine)

	// --- WebSocket hub ---
	wsHub := session.NewWSHub()
	go wsHub.Run(ctx)

	// --- Session service ---
	svc := session.NewService(st, engine, wsHub, session.Options{Delay: cfg.DecisionDelay})

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware)

	// CORS middleware for frontend cross-origin requests.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"ceosim"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for resolved-turn pushes. Registered outside
		// the timeout middleware, which would cut long-lived connections.
		r.Get("/ws", wsHub.HandleWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Get("/catalog", svc.GetCatalog)

			// Game sessions.
			r.Get("/games", svc.ListGames)
			r.Post("/games", svc.CreateGame)
			r.Get("/games/{gameID}", svc.GetGame)
			r.Post("/games/{gameID}/decisions", svc.SubmitDecision)
			r.Post("/games/{gameID}/reset", svc.ResetGame)
			r.Get("/games/{gameID}/turns", svc.ListTurns)
			r.Get("/games/{gameID}/score", svc.GetScore)

			// Story-mode actions.
			r.Post("/games/{gameID}/products", svc.DevelopProduct)
			r.Post("/games/{gameID}/markets", svc.EnterMarket)
		})
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("ceosim listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slog.Info("shutting down ceosim...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
	fmt.Println("ceosim stopped")
}
