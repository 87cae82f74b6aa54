package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/deniz/commverse/internal/app/controllers"
	appMigrations "github.com/deniz/commverse/internal/app/migrations"
	appRepos "github.com/deniz/commverse/internal/app/repositories"
	appRoutes "github.com/deniz/commverse/internal/app/routes"
	appServices "github.com/deniz/commverse/internal/app/services"
	"github.com/deniz/commverse/internal/config"
	"github.com/deniz/commverse/internal/db"
	pkgAuth "github.com/deniz/commverse/internal/pkg/auth"
	"github.com/deniz/commverse/internal/pkg/email"
	"github.com/deniz/commverse/internal/pkg/logger"
	"github.com/deniz/commverse/internal/realtime"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                  *appRepos.Repositories
	Cache                  *appRepos.NotificationCache
	Services               *appServices.Services
	AuthController         *appControllers.AuthController
	CommunityController    *appControllers.CommunityController
	InvitationController   *appControllers.InvitationController
	ChatController         *appControllers.ChatController
	SurveyController       *appControllers.SurveyController
	PostController         *appControllers.PostController
	NotificationController *appControllers.NotificationController
	RealtimeHandler        *realtime.Handler
	Hub                    *realtime.Hub
	KafkaSink              *realtime.KafkaSink
	RedisClient            *redis.Client
	JWTService             *pkgAuth.JWTService
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")
	return dbPool, nil
}

// BuildDependencies initializes repositories, the realtime hub, services,
// and controllers. The hub loop and the optional Kafka relay are started
// here so the returned dependency graph is ready to serve.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.Hub = realtime.NewHub(lgr)
	go deps.Hub.Run()

	if len(cfg.Realtime.KafkaBrokers) > 0 {
		deps.KafkaSink = realtime.NewKafkaSink(cfg.Realtime.KafkaBrokers, cfg.Realtime.KafkaTopic, lgr)
		deps.Hub.AttachSink(deps.KafkaSink)

		// Each instance consumes every event, so the relay joins its own
		// consumer group.
		groupID := "commverse-" + uuid.NewString()
		go realtime.RunKafkaRelay(context.Background(), cfg.Realtime.KafkaBrokers, cfg.Realtime.KafkaTopic, groupID, deps.Hub, lgr)
		lgr.Info().Strs("brokers", cfg.Realtime.KafkaBrokers).Str("topic", cfg.Realtime.KafkaTopic).Msg("Kafka event mirror enabled")
	}

	if cfg.Redis.Addr != "" {
		deps.RedisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis unread counter cache enabled")
	}
	deps.Cache = appRepos.NewNotificationCache(deps.RedisClient, deps.Repos.NotificationRepository)

	accessTokenExp, err := time.ParseDuration(cfg.JWT.AccessTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access token expiration: %w", err)
	}
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: accessTokenExp,
		TokenIssuer:    cfg.JWT.Issuer,
	})

	emailService := email.NewService(email.Config{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, lgr)

	deps.Services = appServices.NewServices(deps.Repos, deps.Cache, deps.JWTService, emailService, deps.Hub, lgr)

	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService)
	deps.CommunityController = appControllers.NewCommunityController(deps.Services.CommunityService)
	deps.InvitationController = appControllers.NewInvitationController(deps.Services.InvitationService)
	deps.ChatController = appControllers.NewChatController(deps.Services.ChatService)
	deps.SurveyController = appControllers.NewSurveyController(deps.Services.SurveyService)
	deps.PostController = appControllers.NewPostController(deps.Services.PostService)
	deps.NotificationController = appControllers.NewNotificationController(deps.Services.NotificationService)

	deps.RealtimeHandler = realtime.NewHandler(deps.Hub, deps.Repos, lgr)

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

	router := gin.Default()

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CommunityController,
		deps.InvitationController,
		deps.ChatController,
		deps.SurveyController,
		deps.PostController,
		deps.NotificationController,
		deps.RealtimeHandler,
		deps.JWTService,
	)

	return router
}
