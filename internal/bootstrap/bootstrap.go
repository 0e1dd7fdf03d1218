package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/internflow/internal/app/auth"
	appControllers "github.com/yigit/internflow/internal/app/controllers"
	"github.com/yigit/internflow/internal/app/metrics"
	appMigrations "github.com/yigit/internflow/internal/app/migrations"
	"github.com/yigit/internflow/internal/app/notify"
	appRepos "github.com/yigit/internflow/internal/app/repositories"
	"github.com/yigit/internflow/internal/app/repositories/memory"
	appRoutes "github.com/yigit/internflow/internal/app/routes"
	appServices "github.com/yigit/internflow/internal/app/services"
	"github.com/yigit/internflow/internal/config"
	"github.com/yigit/internflow/internal/db"
	appMiddleware "github.com/yigit/internflow/internal/middleware"
	pkgAuth "github.com/yigit/internflow/internal/pkg/auth"
	"github.com/yigit/internflow/internal/pkg/email"
	"github.com/yigit/internflow/internal/pkg/filestorage"
	"github.com/yigit/internflow/internal/pkg/logger"
	"github.com/yigit/internflow/internal/pkg/websocket"
	"github.com/yigit/internflow/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store      appRepos.Store
	Hub        *websocket.Hub
	Dispatcher *notify.Dispatcher

	AuthService         appServices.AuthService
	InternshipService   appServices.InternshipService
	WorkflowService     appServices.WorkflowService
	ApprovalService     appServices.ApprovalService
	NotificationService appServices.NotificationService

	AuthController         *appControllers.AuthController
	InternshipController   *appControllers.InternshipController
	WorkflowController     *appControllers.WorkflowController
	NotificationController *appControllers.NotificationController
	WebSocketHandler       *websocket.Handler

	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	FileStorage    *filestorage.LocalStorage
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := log.Logger
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Str("storage", cfg.Storage.Driver).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the configured store, applies migrations for Postgres and
// seeds default accounts. The returned func releases the store.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appRepos.Store, func(), error) {
	var (
		store   appRepos.Store
		closeFn = func() {}
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using the in-memory store; data is lost on restart")
		store = memory.NewStore(memory.WithTransactionTimeout(cfg.Workflow.TransactionTimeout))

	default:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, nil, err
		}
		closeFn = database.Close
		lgr.Info().Msg("Database connection successfully established.")

		migrationsDir := cfg.Database.MigrationsDir
		if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
			database.Close()
			return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
		}

		lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		store = appRepos.NewPostgresStore(database, cfg.Workflow.TransactionTimeout, cfg.Workflow.LockTimeout)
	}

	if err := seed.CreateDefaultData(ctx, store, cfg, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return store, closeFn, nil
}

// NewEmailSender picks the mail provider named in the configuration
func NewEmailSender(cfg *config.Config, lgr zerolog.Logger) email.Sender {
	from := email.From{Email: cfg.Email.From, Name: cfg.Email.FromName}
	emailLogger := lgr.With().Str(logger.FieldComponent, "email").Logger()

	switch cfg.Email.Provider {
	case config.EmailProviderSMTP:
		return email.NewSMTPSender(email.SMTPConfig{
			Host:        cfg.Email.SMTPHost,
			Port:        cfg.Email.SMTPPort,
			Username:    cfg.Email.SMTPUsername,
			Password:    cfg.Email.SMTPPassword,
			From:        from,
			ImplicitTLS: cfg.Email.SMTPPort == 465,
		}, emailLogger)
	case config.EmailProviderSendGrid:
		return email.NewSendGridSender(cfg.Email.SendGridAPIKey, from, emailLogger)
	default:
		return email.NewLogSender(emailLogger)
	}
}

// BuildDependencies initializes services, the notification pipeline and controllers.
func BuildDependencies(cfg *config.Config, store appRepos.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService()

	// Notification pipeline
	deps.Hub = websocket.NewHub(lgr.With().Str(logger.FieldComponent, "hub").Logger())
	deps.Dispatcher = notify.NewDispatcher(cfg.Notifications.QueueSize, []notify.Sink{
		notify.NewInboxSink(store),
		notify.NewEmailSink(store, NewEmailSender(cfg, lgr)),
		notify.NewHubSink(deps.Hub),
	}, notify.WithWorkers(cfg.Notifications.Workers))
	planner := notify.NewPlanner(store, store)

	deps.AuthService = appServices.NewAuthService(store, deps.JWTService)
	deps.InternshipService = appServices.NewInternshipService(store, deps.AuthzService, deps.FileStorage, planner, deps.Dispatcher)
	deps.WorkflowService = appServices.NewWorkflowService(store, deps.AuthzService, planner, deps.Dispatcher)
	deps.ApprovalService = appServices.NewApprovalService(store, deps.AuthzService)
	deps.NotificationService = appServices.NewNotificationService(store, deps.AuthzService)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.RateLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.InternshipController = appControllers.NewInternshipController(deps.InternshipService, lgr)
	deps.WorkflowController = appControllers.NewWorkflowController(deps.WorkflowService, deps.ApprovalService, lgr)
	deps.NotificationController = appControllers.NewNotificationController(deps.NotificationService)
	deps.WebSocketHandler = websocket.NewHandler(deps.Hub, appMiddleware.UserID, lgr.With().Str(logger.FieldComponent, "ws").Logger())

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), metrics.Middleware(cfg.Server.MetricsPath))
	router.MaxMultipartMemory = appServices.MaxDocumentSize

	appRoutes.SetupRouter(router,
		cfg.Server.MetricsPath,
		deps.AuthController,
		deps.InternshipController,
		deps.WorkflowController,
		deps.NotificationController,
		deps.WebSocketHandler,
		deps.AuthMiddleware,
		deps.RateLimiter,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
