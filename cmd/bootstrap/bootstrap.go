package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dental-scheduling/config"
	deliveryHttp "dental-scheduling/internal/delivery/http"
	"dental-scheduling/internal/delivery/http/handler"
	"dental-scheduling/internal/delivery/http/middleware"
	"dental-scheduling/internal/domain/scheduling"
	"dental-scheduling/internal/infrastructure/cache"
	"dental-scheduling/internal/infrastructure/database"
	"dental-scheduling/internal/observability/metrics"
	"dental-scheduling/internal/repository"
	"dental-scheduling/internal/service"
	"dental-scheduling/internal/usecase"
	"dental-scheduling/pkg/jwt"
	"dental-scheduling/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New(configPath string) (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log, err := newLogger(cfg.App)
	if err != nil {
		return nil, err
	}
	app.Log = log
	log.Info("Configuration loaded successfully")

	opts, err := NewSchedulingOptions(cfg.Scheduling)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduling config: %w", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return nil, err
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	app.RedisClient = redisClient

	// Initialize all layers
	app.Server = initializeServer(cfg, log, opts, db, redisClient)

	return app, nil
}

// newLogger configures the logrus logger
func newLogger(cfg config.AppConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(level)
	return log, nil
}

// NewSchedulingOptions turns the scheduling config into clinic rules
func NewSchedulingOptions(cfg config.SchedulingConfig) (usecase.SchedulingOptions, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return usecase.SchedulingOptions{}, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	bounds, err := scheduling.NewClinicBounds(cfg.ClinicOpen, cfg.ClinicClose)
	if err != nil {
		return usecase.SchedulingOptions{}, fmt.Errorf("clinic hours: %w", err)
	}

	start, err := scheduling.ParseTimeOfDay(cfg.FallbackStart)
	if err != nil {
		return usecase.SchedulingOptions{}, fmt.Errorf("fallback start: %w", err)
	}
	end, err := scheduling.ParseTimeOfDay(cfg.FallbackEnd)
	if err != nil {
		return usecase.SchedulingOptions{}, fmt.Errorf("fallback end: %w", err)
	}
	if start >= end {
		return usecase.SchedulingOptions{}, fmt.Errorf("fallback hours: %w", scheduling.ErrInvalidDayWindow)
	}
	if start < bounds.Open || end > bounds.Close {
		return usecase.SchedulingOptions{}, fmt.Errorf("fallback hours: %w", scheduling.ErrOutsideClinicBounds)
	}

	if cfg.GranularityMinutes <= 0 {
		return usecase.SchedulingOptions{}, scheduling.ErrInvalidGranularity
	}
	if cfg.DefaultDurationMinutes <= 0 {
		return usecase.SchedulingOptions{}, scheduling.ErrInvalidDuration
	}

	return usecase.SchedulingOptions{
		Location:               loc,
		Bounds:                 bounds,
		Fallback:               scheduling.NewWeekdayFallbackPolicy(start, end),
		GranularityMinutes:     cfg.GranularityMinutes,
		DefaultDurationMinutes: cfg.DefaultDurationMinutes,
	}, nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, opts usecase.SchedulingOptions, db *gorm.DB, redisClient *redis.Client) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	schedulingMetrics := metrics.NewSchedulingMetrics(registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	scheduleRepo := repository.NewWeeklyScheduleRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	slotLocker := service.NewSlotLockService(redisClient, log, schedulingMetrics, service.SlotLockConfig{
		TTL:        cfg.Scheduling.BookingLockTTL,
		Retries:    cfg.Scheduling.BookingLockRetries,
		RetryDelay: cfg.Scheduling.BookingLockRetryDelay,
	})

	// Initialize usecases
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(db, log, opts, userRepo, doctorProfileRepo, scheduleRepo, auditService)
	weeklyScheduleUsecase := usecase.NewWeeklyScheduleUsecase(db, log, opts, scheduleRepo, appointmentRepo, doctorProfileRepo, auditService, schedulingMetrics)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, opts, appointmentRepo, scheduleRepo, doctorProfileRepo, patientProfileRepo, slotLocker, auditService, schedulingMetrics)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	doctorHandler := handler.NewDoctorHandler(doctorProfileUsecase, customValidator)
	weeklyScheduleHandler := handler.NewWeeklyScheduleHandler(weeklyScheduleUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		doctorHandler,
		weeklyScheduleHandler,
		appointmentHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
