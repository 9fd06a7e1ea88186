package routes

import (
	"fmt"

	"portfolio-cms/internal/auth"
	"portfolio-cms/internal/config"
	"portfolio-cms/internal/delivery/http/handler"
	"portfolio-cms/internal/logger"
	"portfolio-cms/internal/middleware"

	"github.com/gin-gonic/gin"
)

const maxRequestBodyBytes = 1 << 20

type Handlers struct {
	Auth   *handler.AuthHandler
	Users  *handler.UserHandler
	Health *handler.HealthHandler
}

// Router wraps the gin engine together with the rate limiters it owns.
type Router struct {
	*gin.Engine
	limiters []*middleware.RateLimiter
}

func SetupRoutes(cfg *config.Config, sessions *auth.SessionManager, h Handlers) (*Router, error) {
	router := gin.New()
	// X-Forwarded-For is only honoured from listed proxies; rate limits and
	// auth events key on the client IP.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	generalLimiter := middleware.NewRateLimiter("general", cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)
	authLimiter := middleware.NewRateLimiter("auth", cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	// Order: recovery, request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(maxRequestBodyBytes))
	router.Use(generalLimiter.Middleware())

	v1 := router.Group("/api/v1")
	{
		h.Health.RegisterRoutes(v1)

		public := v1.Group("/auth")
		public.Use(authLimiter.Middleware())
		h.Auth.RegisterRoutes(public)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(sessions))
		{
			h.Auth.RegisterSessionRoutes(protected.Group("/auth"))
			h.Users.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return &Router{
		Engine:   router,
		limiters: []*middleware.RateLimiter{generalLimiter, authLimiter},
	}, nil
}

// Stop releases the background cleanup goroutines of the rate limiters.
func (r *Router) Stop() {
	for _, limiter := range r.limiters {
		limiter.Stop()
	}
}
