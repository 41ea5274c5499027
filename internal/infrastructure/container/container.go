package container

import (
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/config"
	"github.com/gdugdh24/bookswap-backend/internal/delivery/http"
	"github.com/gdugdh24/bookswap-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/bookswap-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/bookswap-backend/internal/infrastructure/database"
	"github.com/gdugdh24/bookswap-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/bookswap-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/bookswap-backend/internal/infrastructure/server"
	"github.com/gdugdh24/bookswap-backend/internal/repository/postgres"
	redisrepo "github.com/gdugdh24/bookswap-backend/internal/repository/redis"
	"github.com/gdugdh24/bookswap-backend/internal/usecase/auth"
	"github.com/gdugdh24/bookswap-backend/internal/usecase/match"
	"github.com/gdugdh24/bookswap-backend/internal/usecase/transfer"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Log     *logrus.Logger
	DB      *sqlx.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Server  *server.Server

	Matches   *match.MatchUseCase
	Transfers *transfer.TransferUseCase
	Auth      *auth.SessionAuthUseCase
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.New(cfg.Logging.Level, cfg.Server.IsProduction())

	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	m := metrics.New()

	// Initialize repositories
	matchRepo := postgres.NewMatchRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	locker := redisrepo.NewLocker(redisClient)
	sessions := redisrepo.NewSessionStore(redisClient)

	// Initialize use cases
	matchUseCase := match.NewMatchUseCase(
		matchRepo,
		inventoryRepo,
		orderRepo,
		locker,
		m,
		log,
		cfg.Matching.GenerationLockTTL,
		cfg.Matching.DefaultMeetingDuration,
	)

	transferUseCase := transfer.NewTransferUseCase(
		matchUseCase,
		matchRepo,
		inventoryRepo,
		orderRepo,
		locker,
		m,
		log,
		cfg.Matching.TransferLockTTL,
	)

	authUseCase := auth.NewSessionAuthUseCase(
		sessions,
		cfg.JWT.AccessSecret,
		time.Duration(cfg.JWT.AccessExpiryMin)*time.Minute,
	)

	var metricsHandler nethttp.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = m.Handler()
	}

	// Initialize router
	router := http.NewRouter(
		handler.NewAuthHandler(authUseCase),
		handler.NewMatchHandler(matchUseCase),
		handler.NewTransferHandler(transferUseCase),
		middleware.NewAuthMiddleware(authUseCase),
		middleware.NewRateLimiter(cfg.RateLimit.TransferPerSecond, cfg.RateLimit.TransferBurst, log),
		m,
		metricsHandler,
		log,
	)

	return &Container{
		Config:    cfg,
		Log:       log,
		DB:        db,
		Redis:     redisClient,
		Metrics:   m,
		Server:    server.NewServer(&cfg.Server, router.Setup(), log),
		Matches:   matchUseCase,
		Transfers: transferUseCase,
		Auth:      authUseCase,
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.WithError(err).Warn("error closing redis")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
