package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/waitingboard/api/internal/handler/prometheus"
	"github.com/waitingboard/api/internal/middleware"
)

// Handler is a resource handler with separate read and write routes.
type Handler interface {
	RegisterRoutes(r, w gin.IRoutes)
}

// PublicHandler registers routes that never require a token.
type PublicHandler interface {
	RegisterRoutes(r gin.IRoutes)
}

type HealthHandler interface {
	RegisterRoutes(r gin.IRouter)
}

type RouterConfig struct {
	Mode           string
	RequestTimeout time.Duration
	MaxBodySize    int64
	CORSConfig     middleware.CORSConfig
	Security       middleware.SecurityConfig

	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RateTTL          time.Duration

	// AuthRequired puts the write routes behind bearer token authentication.
	AuthRequired bool
}

type Router struct {
	engine  *gin.Engine
	config  RouterConfig
	auth    *middleware.AuthMiddleware
	metrics *prometheus.Handler
	health  HealthHandler
	login   PublicHandler
	events  PublicHandler
	routes  []Handler
}

func NewRouter(
	config RouterConfig,
	auth *middleware.AuthMiddleware,
	metrics *prometheus.Handler,
	health HealthHandler,
	login PublicHandler,
	events PublicHandler,
	routes ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()

	r := &Router{
		engine:  engine,
		config:  config,
		auth:    auth,
		metrics: metrics,
		health:  health,
		login:   login,
		events:  events,
		routes:  routes,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}
	engine.Use(
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(config.Security),
		middleware.SizeLimit(config.MaxBodySize),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
			TTL:   config.RateTTL,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

// Setup registers every route. Health, metrics and the SSE stream sit
// outside the request timeout.
func (r *Router) Setup() {
	if r.health != nil {
		r.health.RegisterRoutes(r.engine)
	}
	if r.metrics != nil {
		r.metrics.RegisterRoutes(r.engine)
	}
	if r.events != nil {
		r.events.RegisterRoutes(r.engine)
	}

	api := r.engine.Group("")
	api.Use(middleware.Timeout(r.config.RequestTimeout))

	if r.login != nil {
		r.login.RegisterRoutes(api)
	}

	write := api.Group("")
	if r.config.AuthRequired && r.auth != nil {
		write.Use(r.auth.Authenticate())
	}

	for _, h := range r.routes {
		h.RegisterRoutes(api, write)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
