package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pacs-study-browser/config"
	deliveryHttp "pacs-study-browser/internal/delivery/http"
	"pacs-study-browser/internal/delivery/http/handler"
	"pacs-study-browser/internal/delivery/http/middleware"
	domainRepo "pacs-study-browser/internal/domain/repository"
	"pacs-study-browser/internal/infrastructure/cache"
	"pacs-study-browser/internal/infrastructure/database"
	"pacs-study-browser/internal/repository"
	"pacs-study-browser/internal/service"
	"pacs-study-browser/internal/usecase"
	"pacs-study-browser/pkg/jwt"
	"pacs-study-browser/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// Usecases are the application services shared by the HTTP server and the CLI.
type Usecases struct {
	Study     usecase.StudyUsecase
	Directory usecase.DirectoryUsecase
	AuditLog  usecase.AuditLogUsecase // nil without a database
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	if cfg.DB.Enabled() {
		db, err := database.NewPostgresConnection(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = db
		if err := database.Migrate(db); err != nil {
			app.Close()
			return nil, err
		}
		logrus.Info("Database connected successfully")
	} else {
		logrus.Warn("DB_HOST not set, query audit is disabled")
	}

	// Initialize Redis
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		logrus.Info("Redis connected successfully")
	} else {
		logrus.Warn("REDIS_HOST not set, directory is not shared between sessions")
	}

	// Initialize all layers
	server, err := initializeServer(cfg, app.DB, app.RedisClient)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// NewUsecases builds the application services. db, redisClient and metrics may be
// nil; the corresponding features are then left out.
func NewUsecases(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client, metrics *service.SearchMetrics) Usecases {
	// Initialize repositories
	archiveRepo := repository.NewArchiveRepository(cfg.Archive.BaseURL, cfg.Archive.Timeout, log)
	directoryCache := newDirectoryCache(redisClient)

	// Initialize services
	permissionService := service.NewPermissionService(cfg.UI)
	schemaService := service.NewFilterSchemaService()
	errorHandler := service.NewHTTPErrorHandler(log)

	var indicator service.LoadingIndicator = nopIndicator{}
	if metrics != nil {
		indicator = metrics
	}

	auditService := service.NewNopAuditService()
	var auditLogUsecase usecase.AuditLogUsecase
	if db != nil {
		auditRepo := repository.NewQueryAuditLogRepository()
		auditService = service.NewAuditService(db, log, auditRepo)
		auditLogUsecase = usecase.NewAuditLogUsecase(db, log, auditRepo)
	}

	// Initialize usecases
	directoryUsecase := usecase.NewDirectoryUsecase(log, archiveRepo, directoryCache, cfg.Archive.DirectoryCacheTTL, permissionService, metrics)
	sessions := usecase.NewSessionStore(cfg.Session.TTL, cfg.Session.CleanupInterval)
	studyUsecase := usecase.NewStudyUsecase(log, archiveRepo, directoryUsecase, schemaService, errorHandler, indicator, auditService, sessions)

	return Usecases{
		Study:     studyUsecase,
		Directory: directoryUsecase,
		AuditLog:  auditLogUsecase,
	}
}

func newDirectoryCache(redisClient *redis.Client) domainRepo.DirectoryCache {
	if redisClient == nil {
		return nil
	}
	return repository.NewDirectoryCache(redisClient)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*http.Server, error) {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := service.NewSearchMetrics(registry)
	if err != nil {
		return nil, err
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	usecases := NewUsecases(cfg, log, db, redisClient, metrics)

	// Initialize handlers
	studyHandler := handler.NewStudyHandler(usecases.Study, customValidator)
	directoryHandler := handler.NewDirectoryHandler(usecases.Directory)
	var auditLogHandler *handler.AuditLogHandler
	if usecases.AuditLog != nil {
		auditLogHandler = handler.NewAuditLogHandler(usecases.AuditLog)
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, cfg.JWT.Enabled)
	corsMiddleware := middleware.NewCORSMiddleware()
	if !cfg.JWT.Enabled {
		log.Warn("JWT_ENABLED is false, sessions are selected by the " + middleware.SessionHeader + " header")
	}

	// Initialize router
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	router := deliveryHttp.NewRouter(studyHandler, directoryHandler, auditLogHandler, metricsHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		logrus.Infof("Archive: %s", app.Config.Archive.BaseURL)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

type nopIndicator struct{}

func (nopIndicator) Start(string) {}

func (nopIndicator) Complete(string, string, time.Time) {}

// NewCLI builds the usecases for a one-shot command line run: no database, no shared
// cache, no metrics. Logs go to stderr so stdout stays parseable.
func NewCLI(archiveURL string) (Usecases, error) {
	// the command line acts on behalf of the local operator
	viper.Set("JWT_ENABLED", false)
	if archiveURL != "" {
		viper.Set("ARCHIVE_URL", archiveURL)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return Usecases{}, fmt.Errorf("failed to load config: %w", err)
	}

	setupLogger(cfg.App.LogLevel)
	logrus.SetOutput(os.Stderr)

	// a single run needs no session janitor
	cfg.Session.CleanupInterval = 0

	return NewUsecases(cfg, logrus.StandardLogger(), nil, nil, nil), nil
}
