package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/estate-manager/property-service/internal/adapter/httpapi"
	natsadapter "github.com/estate-manager/property-service/internal/adapter/messaging/nats"
	"github.com/estate-manager/property-service/internal/adapter/repository/cache"
	"github.com/estate-manager/property-service/internal/adapter/repository/mongodb"
	"github.com/estate-manager/property-service/internal/adapter/storage/s3"
	"github.com/estate-manager/property-service/internal/app/config"
	"github.com/estate-manager/property-service/internal/platform/logger"
	"github.com/estate-manager/property-service/internal/property/usecase"
	"github.com/estate-manager/property-service/internal/salelog"
)

// App owns every long-lived component and tears them down in reverse
// order on shutdown.
type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *http.Server
	mongoClient *mongo.Client
	redisClient *redis.Client
	publisher   *natsadapter.Publisher
	saleLog     *salelog.Log
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Logger initialized")
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s", cfg.Env, cfg.HTTPServer.Port)

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized successfully")

	appLogger.Info("Initializing Redis client...")
	redisClient, err := cache.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	appLogger.Info("Redis client initialized successfully")

	appLogger.Info("Initializing media storage...")
	mediaStorage, err := s3.NewMediaStorage(
		cfg.Media.Endpoint,
		cfg.Media.AccessKey,
		cfg.Media.SecretKey,
		cfg.Media.Bucket,
		cfg.Media.UseSSL,
		appLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media storage: %w", err)
	}
	appLogger.Info("Media storage initialized successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	appLogger.Info("NATS publisher connected")

	saleLog, err := salelog.Open(cfg.SaleLog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sale log: %w", err)
	}
	appLogger.Infof("Sale log opened at %s", cfg.SaleLog.Path)

	propertyRepo := mongodb.NewPropertyRepository(mongoClient, cfg.MongoDB.Database)
	if err := propertyRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Errorf("Failed to ensure MongoDB indexes: %v", err)
	}
	propertyCache := cache.NewPropertyCache(redisClient, cfg.Redis.CacheTTL)

	soldUsecase := usecase.NewSoldUsecase(propertyRepo, mediaStorage, saleLog, propertyCache, publisher, appLogger)
	propertyUsecase := usecase.NewPropertyUsecase(propertyRepo, mediaStorage, propertyCache, publisher, soldUsecase, appLogger)
	mediaUsecase := usecase.NewMediaUsecase(propertyRepo, mediaStorage, propertyCache, publisher, appLogger)

	handler := httpapi.NewPropertyHandler(
		propertyUsecase,
		soldUsecase,
		mediaUsecase,
		cfg.HTTPServer.MaxUploadBytes,
		appLogger,
	)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		Handler:      httpapi.NewRouter(handler, appLogger),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		mongoClient: mongoClient,
		redisClient: redisClient,
		publisher:   publisher,
		saleLog:     saleLog,
	}, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		a.log.Infof("HTTP server listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped successfully")
	}

	a.log.Info("Closing connections...")

	a.publisher.Close()
	a.log.Info("NATS publisher closed")

	if err := a.saleLog.Close(); err != nil {
		a.log.Errorf("Error closing sale log: %v", err)
	} else {
		a.log.Info("Sale log closed successfully")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}
