package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/alo-api/internal/config"
	"github.com/noah-isme/alo-api/internal/database"
	"github.com/noah-isme/alo-api/internal/handler"
	"github.com/noah-isme/alo-api/internal/middleware"
	"github.com/noah-isme/alo-api/internal/realtime"
	"github.com/noah-isme/alo-api/internal/repository"
	"github.com/noah-isme/alo-api/internal/router"
	"github.com/noah-isme/alo-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access database pool")
	}
	defer sqlDB.Close()

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	probes := map[string]handler.HealthProbe{
		"database": sqlDB.PingContext,
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(rootCtx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
	}

	relay := realtime.NewRelay(logger)
	bridge := realtime.NewBridge(relay, redisClient, natsConn, cfg.RealtimeChannelBase, logger)
	if err := bridge.Start(rootCtx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start realtime bridge")
	}
	broadcaster := realtime.NewBroadcaster(relay, bridge, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	profileRepo := repository.NewProfileRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	directory := service.NewRoomDirectory(communityRepo, roomRepo)
	profileService := service.NewProfileService(profileRepo, validate, logger)
	communityService := service.NewCommunityService(communityRepo, profileRepo, validate, logger)
	messageService := service.NewMessageService(messageRepo, profileRepo, directory, broadcaster, validate, logger, service.MessageServiceOptions{
		LatestWindow: cfg.MessageHistoryWindow == config.HistoryWindowLatest,
	})
	voiceService := service.NewVoiceService(service.VoiceConfig{
		URL:       cfg.LiveKitURL,
		APIKey:    cfg.LiveKitAPIKey,
		APISecret: cfg.LiveKitAPISecret,
		TokenTTL:  cfg.LiveKitTokenTTL,
	}, validate, logger)

	if cfg.LiveKitURL == "" || cfg.LiveKitAPIKey == "" || cfg.LiveKitAPISecret == "" {
		logger.Warn().Msg("livekit is not configured; voice tokens will be refused")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.IsDevelopment(),
	})
	router.Register(app, cfg, router.Dependencies{
		ProfileHandler:   handler.NewProfileHandler(profileService, logger),
		CommunityHandler: handler.NewCommunityHandler(communityService, logger),
		MessageHandler:   handler.NewMessageHandler(messageService, logger),
		VoiceHandler:     handler.NewVoiceHandler(voiceService, profileService, logger),
		RealtimeHandler:  handler.NewRealtimeHandler(rootCtx, relay, 0, logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		MessageLimiter:   middleware.RateLimit("messages", cfg.MessageRateLimit, cfg.RateLimitWindow),
		VoiceLimiter:     middleware.RateLimit("livekit", cfg.MessageRateLimit, cfg.RateLimitWindow),
		HealthProbes:     probes,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, cancelRoot, logger)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()
}

func waitForShutdown(app *fiber.App, cancelRealtime context.CancelFunc, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	// websocket sessions are hijacked and not tracked by fiber, so end them first
	cancelRealtime()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
