package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/salonflow/salon-api/internal/config"
	"github.com/salonflow/salon-api/internal/repository/postgres"
	"github.com/salonflow/salon-api/internal/service/availability"
	"github.com/salonflow/salon-api/internal/service/booking"
	"github.com/salonflow/salon-api/internal/worker"
	"github.com/salonflow/salon-api/pkg/logger"
	"github.com/salonflow/salon-api/pkg/metrics"
)

// workerConfig is read from the environment so the sweep worker can run
// without the API's config file.
type workerConfig struct {
	DBHost         string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort         int           `envconfig:"DB_PORT" default:"5432"`
	DBUser         string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword     string        `envconfig:"DB_PASSWORD" default:""`
	DBName         string        `envconfig:"DB_NAME" default:"salonflow"`
	DBSSLMode      string        `envconfig:"DB_SSLMODE" default:"disable"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	HealthAddr     string        `envconfig:"HEALTH_ADDR" default:":8081"`
	Timezone       string        `envconfig:"TIMEZONE" default:"UTC"`
}

func main() {
	log := logger.NewLogger(nil)

	var cfg workerConfig
	if err := envconfig.Process("SALONFLOW", &cfg); err != nil {
		log.Fatal(err, "failed to load worker configuration")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal(err, "invalid timezone")
	}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	salonRepo := postgres.NewSalonRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	m := metrics.NewMetrics("salonflow", "worker")

	availabilitySvc := availability.NewService(staffRepo, salonRepo, serviceRepo, scheduleRepo, appointmentRepo, m, availability.Config{
		Location: loc,
	})
	bookingSvc := booking.NewService(appointmentRepo, staffRepo, salonRepo, serviceRepo, availabilitySvc, nil, m)

	startHealthServer(cfg.HealthAddr, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	worker.NewExpiryWorker(bookingSvc, cfg.SweepInterval, *log.Zerolog()).Start(ctx)
}

func startHealthServer(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error(err, "health server failed")
		}
	}()
}
