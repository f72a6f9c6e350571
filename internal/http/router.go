package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// AuthWindow is the window AUTH_RATE_LIMIT_PER_MINUTE is counted over.
const AuthWindow = time.Minute

// UserRepo is what the user routes and author checks need from storage.
type UserRepo interface {
	handlers.UserStore
	handlers.AuthorLookup
}

// Authenticator validates bearer headers and revokes tokens on logout.
type Authenticator interface {
	middlewares.Authenticator
	handlers.TokenRevoker
}

type Deps struct {
	Users         UserRepo
	Posts         handlers.PostStore
	Authenticator Authenticator
	Tokens        handlers.TokenIssuer
	Hasher        handlers.PasswordHasher

	// AuthLimiter throttles login and registration; nil disables it.
	AuthLimiter middlewares.Limiter

	Prom    *observability.Prom
	Metrics prometheus.Gatherer

	// Health serves /healthz and /readyz; nil means no readiness checks.
	Health *handlers.HealthHandler
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.OTELServiceName))
	}
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}
	r.Use(middlewares.RequireJSON())

	// health
	h := deps.Health
	if h == nil {
		h = handlers.NewHealthHandler(nil)
	}
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	// Wire up handlers
	usersHandler := handlers.NewUsersHandler(deps.Users, deps.Hasher, deps.Tokens, deps.Authenticator, deps.Prom)
	postsHandler := handlers.NewPostsHandler(deps.Posts, deps.Users)

	authMW := middlewares.NewAuthMiddleware(deps.Authenticator, deps.Prom)
	requireAuth := authMW.RequireAuth()

	limitAuth := func(c *gin.Context) { c.Next() }
	if deps.AuthLimiter != nil {
		limitAuth = middlewares.RateLimit(deps.AuthLimiter, middlewares.KeyByIP)
	}

	api := r.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", limitAuth, usersHandler.Register)
	users.POST("/login", limitAuth, usersHandler.Login)
	users.GET("", requireAuth, middlewares.ResolveScope(), usersHandler.List)
	users.POST("", requireAuth, middlewares.RequireAdmin(), usersHandler.Create)
	users.GET("/me", requireAuth, usersHandler.Me)
	users.POST("/logout", requireAuth, usersHandler.Logout)

	// every post route filters rows by owner
	posts := api.Group("/posts", requireAuth, middlewares.ResolveScope())
	posts.GET("", postsHandler.List)
	posts.POST("", postsHandler.Create)
	posts.DELETE("/:id", postsHandler.Delete)
	posts.PATCH("/toggle_visibility/:id", postsHandler.ToggleVisibility)

	return r
}
