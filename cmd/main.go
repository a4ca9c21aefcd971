package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/config"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/database/minio"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/database/mongo"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/database/redis"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/events"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/handlers"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/jobs"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/middleware"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/repository"
	"github.com/Ayush-an/Exam-Buddy-sub000/internal/service"
	"github.com/Ayush-an/Exam-Buddy-sub000/pkg/discovery"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupLogging(logDir string) (*os.File, error) {
	err := os.MkdirAll(logDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

type indexCreator interface {
	CreateIndexes(ctx context.Context) error
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	// Reload so values from .env take effect.
	config.ServiceConfig = config.Load()
	cfg := config.ServiceConfig

	logFile, err := setupLogging(cfg.Log.Dir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := mongo.InitMongo(&cfg.MongoDB); err != nil {
		log.Fatalf("Fatal error connecting to MongoDB: %v", err)
	}

	if err := redis.InitRedis(&cfg.Redis); err != nil {
		log.Printf("Warning: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		UnescapePath: true,
	})

	app.Use(recoverer.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"*"},
	}))

	app.Get("/health", func(c fiber.Ctx) error {
		if !mongo.IsConnected() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Exam Service database unavailable")
		}
		return c.Status(fiber.StatusOK).SendString("Exam Service is healthy")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Initialize repositories
	paperRepo := repository.NewQuestionPaperRepository(mongo.Mongo_Database)
	questionRepo := repository.NewQuestionRepository(mongo.Mongo_Database)
	attemptRepo := repository.NewExamAttemptRepository(mongo.Mongo_Database)
	userRepo := repository.NewUserRepository(mongo.Mongo_Database)
	sessionRepo := repository.NewSessionRepository(redis.Redis_Client)

	// Create database indexes
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	for _, repo := range []indexCreator{paperRepo, questionRepo, attemptRepo, userRepo} {
		if err := repo.CreateIndexes(ctx); err != nil {
			log.Printf("Warning: Failed to create database indexes: %v", err)
		}
	}
	cancel()
	log.Println("Database indexes ensured")

	var eventPublisher events.Publisher
	publisher, err := events.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher: %v", err)
		publisher, _ = events.NewEventPublisher("", cfg.RabbitMQ.Exchange)
	}
	eventPublisher = publisher

	var mediaStorage service.MediaStorage
	mediaStore, err := minio.NewMediaStore(&cfg.MinIO)
	if err != nil {
		log.Printf("Warning: Failed to initialize media storage, uploads are disabled: %v", err)
	} else {
		mediaStorage = mediaStore
	}

	jwtService, err := service.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	// Initialize services
	scoringService := service.NewScoringService(questionRepo)
	attemptService := service.NewAttemptService(scoringService, attemptRepo, userRepo, eventPublisher)
	reviewService := service.NewReviewService(userRepo, attemptRepo, questionRepo)
	catalogService := service.NewCatalogService(paperRepo, questionRepo, userRepo, eventPublisher)
	userService := service.NewUserService(userRepo, sessionRepo, jwtService, eventPublisher, cfg.Auth)
	mediaService := service.NewMediaService(mediaStorage, cfg.MinIO)

	scheduler, err := jobs.Schedule(attemptService, cfg.Jobs)
	if err != nil {
		log.Printf("Warning: Background jobs disabled: %v", err)
	} else if scheduler != nil {
		scheduler.Start()
		log.Println("History reconcile job scheduled")
	}

	auth := middleware.AuthRequired(jwtService, userService)

	// Initialize and register handlers
	handlers.NewUserHandler(userService).RegisterRoutes(app, auth)
	handlers.NewExamHandler(attemptService, reviewService, catalogService).RegisterRoutes(app, auth)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(app, auth)
	handlers.NewMediaHandler(mediaService).RegisterRoutes(app, auth)

	var registry *discovery.ServiceRegistry
	if cfg.Consul.Enabled {
		registry, err = discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Printf("Warning: Service discovery init failed: %v", err)
		} else if err := registry.Register(); err != nil {
			log.Printf("Warning: %v", err)
			registry = nil
		}
	}

	shutdownChan := make(chan os.Signal, 1)
	doneChan := make(chan bool, 1)

	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := app.Listen(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
		doneChan <- true
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	if err := eventPublisher.Close(); err != nil {
		log.Printf("Error closing event publisher: %v", err)
	}

	redis.CloseRedis()
	mongo.DisconnectMongo()

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	<-doneChan
	log.Println("Server shutdown complete")
}
