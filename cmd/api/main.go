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

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/db"
	httpx "github.com/geocoder89/bloghub/internal/http"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/redisclient"
	"github.com/geocoder89/bloghub/internal/repo/memory"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/geocoder89/bloghub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: cfg.OTELServiceName,
			Endpoint:    cfg.OTLPEndpoint,
			Env:         cfg.Env,
		})
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			sctx, cancel := config.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	ready := map[string]handlers.Pinger{}

	// wire up repositories
	var (
		users     httpx.UserRepo
		posts     handlers.PostStore
		adminSeed db.AdminStore
	)

	switch cfg.Store {
	case config.StoreMemory:
		usersRepo := memory.NewUsersRepo()
		users, adminSeed = usersRepo, usersRepo
		posts = memory.NewPostsRepo(usersRepo)
		log.Warn("using in-memory store; data is lost on restart")

	default:
		pool, err := db.NewPool(ctx, cfg.DBURL, db.PoolOptions{MaxConns: int32(cfg.DBMaxConns)})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		sctx, cancel := config.WithTimeout(ctx, 10*time.Second)
		err = db.EnsureSchema(sctx, pool)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}

		usersRepo := postgres.NewUsersRepo(pool, prom)
		users, adminSeed = usersRepo, usersRepo
		posts = postgres.NewPostsRepo(pool, prom)
		ready["postgres"] = pool
	}

	hasher := security.NewHasher(cfg.BcryptCost)

	sctx, cancel := config.WithTimeout(ctx, 5*time.Second)
	created, err := db.EnsureAdminUser(sctx, adminSeed, hasher, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	// revocations and auth throttling are shared through redis when configured
	var (
		revocations auth.RevocationList = auth.NewMemoryRevocations()
		authLimiter middlewares.Limiter
	)

	if cfg.AuthRateLimitPerMinute > 0 {
		authLimiter = middlewares.NewRateLimiter(cfg.AuthRateLimitPerMinute, httpx.AuthWindow)
	}

	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rc.Close() }()

		pctx, cancel := config.WithTimeout(ctx, 3*time.Second)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}

		revocations = redisclient.NewRevocations(rc)
		if cfg.AuthRateLimitPerMinute > 0 {
			authLimiter = redisclient.NewRateLimiter(rc, "", cfg.AuthRateLimitPerMinute, httpx.AuthWindow)
		}
		ready["redis"] = rc
	}

	tokens := auth.NewManager(cfg.SigningSecret(), cfg.TokenTTL())
	authenticator := auth.NewAuthenticator(tokens, users, revocations, cfg.RevocationRetention())

	health := handlers.NewHealthHandler(ready)

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Users:         users,
		Posts:         posts,
		Authenticator: authenticator,
		Tokens:        tokens,
		Hasher:        hasher,
		AuthLimiter:   authLimiter,
		Prom:          prom,
		Metrics:       reg,
		Health:        health,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-stop:
	}

	log.Info("server shutting down")
	health.Drain()

	shutdownCtx, cancel := config.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
