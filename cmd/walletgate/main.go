package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/layer-3/walletgate/adapters/anomaly"
	"github.com/layer-3/walletgate/adapters/eth"
	"github.com/layer-3/walletgate/adapters/events"
	"github.com/layer-3/walletgate/adapters/store"
	"github.com/layer-3/walletgate/adapters/tokenizer"
	"github.com/layer-3/walletgate/config"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/internal/logging"
	"github.com/layer-3/walletgate/ports"
	"github.com/layer-3/walletgate/service"
	transport "github.com/layer-3/walletgate/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.Setup("walletgate", cfg.Logging.Level)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	challengeStore := store.NewChallengeStore(db)
	userStore := store.NewUserStore(db)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	}

	// Counters live in Redis when available so lockouts hold across
	// instances; otherwise they are process-local.
	var detector ports.AnomalyDetector
	if redisClient != nil {
		detector = anomaly.NewRedisDetector(redisClient, cfg.Auth.MaxFailedAttempts, cfg.Auth.AttemptWindow, logger)
	} else {
		detector = anomaly.NewMemoryDetector(cfg.Auth.MaxFailedAttempts, cfg.Auth.AttemptWindow, logger)
	}

	var eventPub ports.EventPublisher
	if cfg.Events.Enabled && redisClient != nil {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("Failed to create event publisher: %v", err)
		}
		eventPub = events.NewWatermillPublisher(publisher)
	}

	jwtTokenizer, err := tokenizer.NewJWTTokenizer([]byte(cfg.JWT.Secret), cfg.JWT.Expiry)
	if err != nil {
		log.Fatalf("Failed to create tokenizer: %v", err)
	}

	authService := service.NewAuthService(
		challengeStore,
		userStore,
		detector,
		jwtTokenizer,
		eth.NewPersonalSignRecoverer(),
		eventPub,
		core.MessageConfig{
			Domain:  cfg.Auth.Domain,
			URI:     cfg.Auth.URI,
			ChainID: cfg.Auth.ChainID,
		},
		cfg.Auth.ChallengeTTL,
		logger,
	)
	userService := service.NewUserService(userStore)

	sweeper := service.NewSweeper(challengeStore, cfg.Auth.SweepInterval, logger)
	go sweeper.Run(ctx)

	router := transport.SetupRouter(authService, userService, jwtTokenizer)

	logger.Info("starting server", "addr", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
