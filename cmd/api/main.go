package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"vexara-llm/internal/config"
	"vexara-llm/internal/db"
	apihttp "vexara-llm/internal/http"
	"vexara-llm/internal/identity"
	"vexara-llm/internal/llm"
	"vexara-llm/internal/service"
	"vexara-llm/internal/store"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var historyStore store.HistoryStore
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		pgStore := store.NewPgStore(pool)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		historyStore = pgStore
		logger.Info("history store: postgres")
	} else {
		boltStore, err := store.OpenBolt(cfg.HistoryPath, logger)
		if err != nil {
			logger.Fatal("open history file", zap.Error(err))
		}
		defer boltStore.Close()
		historyStore = boltStore
		logger.Info("history store: bolt", zap.String("path", cfg.HistoryPath))
	}

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	sessionStore := identity.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			sessionStore = identity.NewRedisStore(redisClient)
		}
		cancel()
	}
	resolver := identity.NewResolver(sessionStore, sessionTTL)

	llmClient := llm.NewHTTPClient(
		cfg.LLMBaseURL,
		cfg.LLMAPIKey,
		cfg.LLMModel,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second,
		logger,
	)

	chatSvc := service.NewChatService(historyStore, llmClient, logger, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
	tokens := service.NewSessionTokenService(cfg.SessionSecret, sessionTTL)

	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	authHandler := apihttp.NewAuthHandler(logger, tokens, resolver)
	router := apihttp.NewRouter(logger, tokens, resolver, chatHandler, authHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
