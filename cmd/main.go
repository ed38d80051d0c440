package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"comparteride/api/internal/config"
	"comparteride/api/internal/handler"
	"comparteride/api/internal/model"
	"comparteride/api/internal/repository"
	"comparteride/api/internal/service"
	"comparteride/api/internal/worker"
	jwtpkg "comparteride/api/pkg/jwt"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	var logger *zap.Logger
	if cfg.Log.Format == "json" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// 3. Connect to PostgreSQL
	db, err := config.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// 4. Auto-migrate if enabled
	if cfg.Database.Postgres.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			logger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		logger.Info("database migration completed")
	}

	// 5. Initialize the job queue (Redis or in-memory)
	var queue worker.Queue
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		queue = worker.NewRedisQueue(redisClient, cfg.Worker.QueueKey)
		logger.Info("using Redis job queue")
	case "memory":
		queue = worker.NewMemoryQueue(256)
		logger.Info("using in-memory job queue")
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}

	// 6. Initialize repositories
	userRepo := repository.NewPGUserRepository(db)
	circleRepo := repository.NewPGCircleRepository(db)
	membershipRepo := repository.NewPGMembershipRepository(db)
	invitationRepo := repository.NewPGInvitationRepository(db, cfg.Invite.CodeLength)
	rideRepo := repository.NewPGRideRepository(db)

	// 7. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.VerificationTokenTTL,
	)

	// 8. Initialize services
	userService := service.NewUserService(userRepo, queue, jwtManager, logger)
	circleService := service.NewCircleService(circleRepo, membershipRepo, userRepo, uint(cfg.Invite.CreatorQuota))
	membershipService := service.NewMembershipService(circleRepo, membershipRepo, invitationRepo, userRepo)
	invitationService := service.NewInvitationService(circleRepo, membershipRepo, invitationRepo, cfg.Invite.CodeLength, cfg.Invite.IssueAttempts)
	rideService := service.NewRideService(circleRepo, membershipRepo, rideRepo, userRepo, cfg.Rides.MinLeadTime)

	mailSender, err := service.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logger.Fatal("failed to init smtp sender", zap.Error(err))
	}

	// 9. Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	circleHandler := handler.NewCircleHandler(circleService)
	membershipHandler := handler.NewMembershipHandler(membershipService)
	invitationHandler := handler.NewInvitationHandler(invitationService)
	rideHandler := handler.NewRideHandler(rideService)

	// 10. Background worker and ride sweeper
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	w := worker.New(queue, cfg.Worker.MaxAttempts, cfg.Worker.RetryDelay, logger)
	w.Register(worker.JobSendConfirmationEmail, worker.ConfirmationEmailHandler(userRepo, jwtManager, mailSender))
	go w.Run(bgCtx)

	sweeper := worker.NewSweeper(rideRepo, cfg.Rides.SweepInterval, logger)
	go sweeper.Run(bgCtx)

	// 11. Setup router
	router := handler.SetupRouter(cfg, logger, jwtManager, userHandler, circleHandler, membershipHandler, invitationHandler, rideHandler)

	// 12. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 13. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
