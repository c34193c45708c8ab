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

	"github.com/tdnguyen-dev/classroom-go-api/internal/config"
	"github.com/tdnguyen-dev/classroom-go-api/internal/database"
	"github.com/tdnguyen-dev/classroom-go-api/internal/handler"
	"github.com/tdnguyen-dev/classroom-go-api/internal/middleware"
	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
	"github.com/tdnguyen-dev/classroom-go-api/internal/repository"
	"github.com/tdnguyen-dev/classroom-go-api/internal/router"
	"github.com/tdnguyen-dev/classroom-go-api/internal/service"
	cloud "github.com/tdnguyen-dev/classroom-go-api/pkg/cloudinary"
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
		&models.Class{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionGradeEntry{},
		&models.Comment{},
		&models.ActivityLog{},
		&models.UploadRecord{},
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
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, events disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	statsRepo := repository.NewAdminStatsRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	events := service.NewEventPublisher(natsConn, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	gradebookService := service.NewGradebookService(classRepo, assignmentRepo, submissionRepo, redisClient, cfg.CacheTTL, logger)
	classService := service.NewClassService(classRepo, userRepo, validate, activityService, gradebookService, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, classRepo, validate, activityService, gradebookService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, classRepo, validate, events, gradebookService, redisClient, cfg.CacheTTL, logger)
	gradingService := service.NewGradingService(submissionRepo, classRepo, validate, activityService, events, gradebookService, logger)
	studentService := service.NewStudentAssignmentService(classRepo, assignmentRepo, submissionRepo, logger)
	adminUserService := service.NewAdminUserService(userRepo, validate, activityService, logger)
	adminStatsService := service.NewAdminStatsService(statsRepo, redisClient, cfg.CacheTTL, logger)
	reportService := service.NewReportService(userRepo, classRepo, assignmentRepo, submissionRepo, logger)
	commentService := service.NewCommentService(commentRepo, submissionRepo, classRepo, validate, logger)
	uploadService := service.NewUploadService(uploader, uploadRepo, cfg.UploadMaxSizeMB, cfg.UploadAllowedExts, logger)

	classHandler := handler.NewClassHandler(classService, gradebookService, reportService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, submissionService, logger)
	gradeHandler := handler.NewGradeHandler(gradingService, submissionService, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	uploadHandler := handler.NewUploadHandler(uploadService, logger)
	adminHandler := handler.NewAdminHandler(adminUserService, classService, adminStatsService, reportService, activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ClassHandler:      classHandler,
		AssignmentHandler: assignmentHandler,
		GradeHandler:      gradeHandler,
		StudentHandler:    studentHandler,
		CommentHandler:    commentHandler,
		UploadHandler:     uploadHandler,
		AdminHandler:      adminHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
