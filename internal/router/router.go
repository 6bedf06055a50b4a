package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/salonflow/salon-api/internal/handler"
	"github.com/salonflow/salon-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	CORSConfig       middleware.CORSConfig
	MetricsNamespace string
}

type Router struct {
	engine        *gin.Engine
	h             *handler.Handler
	salonH        Handler
	scheduleH     Handler
	availabilityH Handler
	appointmentH  Handler
}

func NewRouter(
	log zerolog.Logger,
	h *handler.Handler,
	salonH Handler,
	scheduleH Handler,
	availabilityH Handler,
	appointmentH Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Metrics(config.MetricsNamespace),
		middleware.Timeout(config.RequestTimeout),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return &Router{
		engine:        engine,
		h:             h,
		salonH:        salonH,
		scheduleH:     scheduleH,
		availabilityH: availabilityH,
		appointmentH:  appointmentH,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	health := api.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}

	r.salonH.RegisterRoutes(api)
	r.scheduleH.RegisterRoutes(api)
	r.availabilityH.RegisterRoutes(api)
	r.appointmentH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
