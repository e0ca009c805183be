package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/meeting-quality/docs"
	"github.com/johnquangdev/meeting-quality/internal/adapter/handler"
	"github.com/johnquangdev/meeting-quality/internal/adapter/repository"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/meeting-quality/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/realtime"
	"github.com/johnquangdev/meeting-quality/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-quality/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-quality/internal/usecase/presence"
	"github.com/johnquangdev/meeting-quality/internal/usecase/task"
	"github.com/johnquangdev/meeting-quality/internal/usecase/user"
	"github.com/johnquangdev/meeting-quality/pkg/config"
	"github.com/johnquangdev/meeting-quality/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/meeting-quality/pkg/validator"
)

// @title           Meeting Quality API
// @version         1.0
// @description     Structured meeting retrospectives: phases, submissions, live presence and statistics.
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	logger.Info("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			logger.Fatal("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE and run scripts/migrate.")
		}
		if err := database.AutoMigrate(db, logger); err != nil {
			logger.Fatal("Failed to run AutoMigrate", zap.Error(err))
		}
	} else {
		logger.Info("🔄 Skipping AutoMigrate; schema is managed with sql-migrate")
	}

	// Redis backs the cross-instance event bus and the sweep lock. Without it both stay in process.
	var (
		bus    realtime.Bus
		locker meeting.Locker
		relay  *realtime.RedisBus
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		relay = realtime.NewRedisBus(redisClient, cfg.Redis.EventsChannel, logger)
		bus = relay
		locker = cache.NewRedisLocker(redisClient, logger)
	} else {
		logger.Warn("⚠️  Redis disabled: realtime events stay on this instance")
		store := cache.NewMemoryStore()
		defer store.Close()
		locker = cache.NewMemoryLocker(store)
	}

	// Report archive
	var archiver meeting.ReportArchiver
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinIOClient(&cfg.Storage, logger)
		if err != nil {
			logger.Fatal("Failed to initialize MinIO", zap.Error(err))
		}
		archiver = storage.NewReportArchiver(minioClient, cfg.Storage.PresignExpiry, logger)
	} else {
		logger.Info("📁 Report storage disabled; exports will return 503")
	}

	// Realtime
	hub := realtime.NewHub(logger)
	tracker := presence.NewTracker(hub, logger)
	hub.UsePresence(tracker)
	go hub.Run(ctx)

	notifier := realtime.NewNotifier(hub, bus, logger)
	go notifier.Run(ctx)
	if relay != nil {
		go func() {
			if err := relay.Subscribe(ctx, notifier.Deliver); err != nil && ctx.Err() == nil {
				logger.Error("Realtime relay stopped", zap.Error(err))
			}
		}()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	transactor := repository.NewTransactor(db)

	// Services
	meetingService := meeting.NewMeetingService(meeting.Dependencies{
		MeetingRepo: meetingRepo,
		TaskRepo:    taskRepo,
		UserRepo:    userRepo,
		Transactor:  transactor,
		Presence:    tracker,
		Notifier:    notifier,
		Archiver:    archiver,
		Policy:      meeting.SubmissionPolicy(cfg.Meeting.SubmissionPolicy),
		Logger:      logger,
	})
	taskService := task.NewTaskService(taskRepo, meetingRepo, transactor, notifier, logger)
	userService := user.NewUserService(userRepo)

	sweeper := meeting.NewActivationSweeper(meetingRepo, notifier, locker, metrics.SweepRecorder{},
		meeting.SweeperConfig{
			Interval: cfg.Meeting.ActivationInterval,
			LockTTL:  cfg.Meeting.ActivationLockTTL,
		}, logger)
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatal("Failed to start activation sweeper", zap.Error(err))
	}

	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Cookie"},
		ExposeHeaders:    []string{echo.HeaderXRequestID, "Deprecation", "Link"},
		AllowCredentials: true,
	}))
	e.Use(metrics.EchoMiddleware())
	if cfg.IsDevelopment() {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
		}))
	}

	router := handler.NewRouter(cfg,
		httpmw.EchoAuth(jwtManager, logger),
		handler.NewMeetingHandler(meetingService, logger),
		handler.NewTaskHandler(taskService, logger),
		handler.NewUserHandler(userService, logger),
		handler.NewRealtimeHandler(hub, jwtManager, cfg, logger),
	)
	router.Setup(e)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("submission_policy", cfg.Meeting.SubmissionPolicy),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}
	if err := sweeper.Stop(); err != nil {
		logger.Warn("Activation sweeper stop", zap.Error(err))
	}

	// Cancelling closes every realtime connection; the presence state goes with them.
	cancel()
	tracker.Clear()

	logger.Info("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
