package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/salonflow/salon-api/internal/config"
	"github.com/salonflow/salon-api/internal/handler"
	appointmentHandler "github.com/salonflow/salon-api/internal/handler/appointment"
	availabilityHandler "github.com/salonflow/salon-api/internal/handler/availability"
	salonHandler "github.com/salonflow/salon-api/internal/handler/salon"
	scheduleHandler "github.com/salonflow/salon-api/internal/handler/schedule"
	"github.com/salonflow/salon-api/internal/middleware"
	"github.com/salonflow/salon-api/internal/repository/postgres"
	"github.com/salonflow/salon-api/internal/router"
	"github.com/salonflow/salon-api/internal/service/availability"
	"github.com/salonflow/salon-api/internal/service/booking"
	salonService "github.com/salonflow/salon-api/internal/service/salon"
	scheduleService "github.com/salonflow/salon-api/internal/service/schedule"
	"github.com/salonflow/salon-api/internal/worker"
	"github.com/salonflow/salon-api/pkg/logger"
	"github.com/salonflow/salon-api/pkg/messaging"
	redisBroker "github.com/salonflow/salon-api/pkg/messaging/redis"
	"github.com/salonflow/salon-api/pkg/metrics"
)

const expiryInterval = time.Minute

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal(err, "invalid booking timezone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	salonRepo := postgres.NewSalonRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	m := metrics.NewMetrics("salonflow", "api")

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.URL != "" {
		broker, err := redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log.Zerolog())
		if err != nil {
			log.Fatal(err, "failed to connect to redis")
		}
		defer broker.Close()
		publisher = broker
	}

	availabilitySvc := availability.NewService(staffRepo, salonRepo, serviceRepo, scheduleRepo, appointmentRepo, m, availability.Config{
		SlotIntervalMinutes: cfg.Booking.SlotIntervalMinutes,
		LookaheadDays:       cfg.Booking.LookaheadDays,
		Location:            loc,
		ScheduleCacheTTL:    cfg.Booking.ScheduleCacheTTL,
	})
	bookingSvc := booking.NewService(appointmentRepo, staffRepo, salonRepo, serviceRepo, availabilitySvc, publisher, m)
	salonSvc := salonService.NewService(salonRepo, staffRepo, serviceRepo)
	scheduleSvc := scheduleService.NewService(scheduleRepo, availabilitySvc, loc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsConfig.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.Security.AllowedHeaders
	}

	r := router.NewRouter(
		*log.Zerolog(),
		handler.NewHandler(),
		salonHandler.NewHandler(salonSvc),
		scheduleHandler.NewHandler(scheduleSvc),
		availabilityHandler.NewHandler(availabilitySvc),
		appointmentHandler.NewHandler(bookingSvc),
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   30 * time.Second,
			CORSConfig:       corsConfig,
			MetricsNamespace: "salonflow",
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expiry := worker.NewExpiryWorker(bookingSvc, expiryInterval, *log.Zerolog())
	go expiry.Start(ctx)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
