package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/gradpush/recommend-api/internal/config"
	"github.com/gradpush/recommend-api/internal/database"
	"github.com/gradpush/recommend-api/internal/handler"
	"github.com/gradpush/recommend-api/internal/middleware"
	"github.com/gradpush/recommend-api/internal/models"
	"github.com/gradpush/recommend-api/internal/observability"
	"github.com/gradpush/recommend-api/internal/repository"
	"github.com/gradpush/recommend-api/internal/router"
	"github.com/gradpush/recommend-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Faculty{},
		&models.Department{},
		&models.Major{},
		&models.Student{},
		&models.Application{},
		&models.Rule{},
		&models.RuleCalculation{},
		&models.FacultyScoreSettings{},
		&models.Notification{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	observability.RegisterMetrics()

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	settingsRepo := repository.NewScoreSettingsRepository(db)
	organizationRepo := repository.NewOrganizationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventChannelBase, natsConn, validate, logger)
	rankingService := service.NewRankingService(studentRepo, organizationRepo, redisClient, cfg.RankingCacheTTL, logger)
	statisticsService := service.NewStatisticsService(studentRepo, applicationRepo, settingsRepo, activityService, rankingService, logger)
	reviewService := service.NewReviewService(applicationRepo, statisticsService, notificationService, activityService, validate, logger)
	ruleService := service.NewRuleService(ruleRepo, service.NewRuleEvaluator(), validate, logger)
	settingsService := service.NewScoreSettingsService(settingsRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	notificationService.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentHandler:       handler.NewStudentHandler(studentService, statisticsService, logger),
		RankingHandler:       handler.NewRankingHandler(rankingService, logger),
		ReviewHandler:        handler.NewReviewHandler(reviewService, logger),
		RuleHandler:          handler.NewRuleHandler(ruleService, logger),
		ScoreSettingsHandler: handler.NewScoreSettingsHandler(settingsService, logger),
		NotificationHandler:  handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
		ActivityHandler:      handler.NewActivityHandler(activityService, logger),
		OrganizationHandler:  handler.NewOrganizationHandler(organizationRepo, logger),
		JWTMiddleware:        middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
