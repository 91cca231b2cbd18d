package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"sakinah/backend/internal/auth"
	"sakinah/backend/internal/chat"
	"sakinah/backend/internal/config"
	"sakinah/backend/internal/db"
	"sakinah/backend/internal/emotion"
	"sakinah/backend/internal/inference"
	"sakinah/backend/internal/llm"
	"sakinah/backend/internal/logging"
	"sakinah/backend/internal/server"
	"sakinah/backend/internal/store"
	"sakinah/backend/internal/translate"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, ServiceName: "sakinah-api"})
	log := logging.Component("main")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("database ping failed")
	}
	sqlDB := db.SQLDB(pool)
	defer sqlDB.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, sqlDB, logging.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
	}
	if err := db.ValidateRuntimeSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("database schema mismatch")
	}

	gdb, err := db.OpenGorm(sqlDB)
	if err != nil {
		log.Fatal().Err(err).Msg("gorm open failed")
	}
	st := store.New(gdb)

	tokens, err := auth.NewTokenManager(auth.KeyConfig{
		ActiveKeyID:     cfg.JWTKeyID,
		ActiveSecret:    cfg.JWTSecret,
		PreviousSecrets: cfg.JWTPreviousSecrets,
		Issuer:          cfg.JWTIssuer,
		AccessTTL:       time.Duration(cfg.JWTAccessTTLMinutes) * time.Minute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("token manager setup failed")
	}
	log.Info().
		Str("active_kid", cfg.JWTKeyID).
		Int("previous_keys", len(cfg.JWTPreviousSecrets)).
		Msg("jwt signing keys loaded")

	arToEn, enToAr, classifier := buildInference(cfg, log)
	if rdb := connectRedis(ctx, cfg, log); rdb != nil {
		defer rdb.Close()
		ttl := time.Duration(cfg.TranslationCacheTTL) * time.Minute
		arToEn = translate.NewCached(arToEn, rdb, translate.ArabicToEnglish, ttl)
		enToAr = translate.NewCached(enToAr, rdb, translate.EnglishToArabic, ttl)
	}

	llmService, err := llm.NewService(ctx, buildChatModel(cfg, log))
	if err != nil {
		log.Fatal().Err(err).Msg("llm chain setup failed")
	}

	app := server.New(cfg, server.Services{
		Store: st,
		Auth:  auth.NewService(st, tokens),
		Chat: chat.NewService(chat.Deps{
			Store:           st,
			ArabicToEnglish: arToEn,
			EnglishToArabic: enToAr,
			Classifier:      classifier,
			LLM:             llmService,
		}),
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msgf("%s listening on http://localhost:%s", cfg.AppName, cfg.AppPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func buildInference(cfg config.Config, log zerolog.Logger) (translate.Translator, translate.Translator, emotion.Classifier) {
	if cfg.InferenceProvider == "local" {
		log.Warn().Msg("INFERENCE_PROVIDER=local: translation is passthrough and emotion uses the keyword lexicon")
		return translate.Passthrough{}, translate.Passthrough{}, emotion.Lexicon{}
	}
	if cfg.InferenceAPIKey == "" {
		log.Warn().Msg("INFERENCE_API_KEY is empty; hosted inference calls may be rejected")
	}
	client := inference.New(cfg.InferenceBaseURL, cfg.InferenceAPIKey, time.Duration(cfg.AITimeoutSeconds)*time.Second)
	return translate.NewInferenceTranslator(client, cfg.TranslateArEnModel, translate.ArabicToEnglish),
		translate.NewInferenceTranslator(client, cfg.TranslateEnArModel, translate.EnglishToArabic),
		emotion.NewInferenceClassifier(client, cfg.EmotionModel)
}

func buildChatModel(cfg config.Config, log zerolog.Logger) model.BaseChatModel {
	if cfg.LLMProvider == "mock" {
		log.Warn().Msg("LLM_PROVIDER=mock: replies are generated offline")
		return llm.MockChatModel{}
	}
	if cfg.LLMAPIKey == "" {
		log.Warn().Msg("LLM_API_KEY is empty; chat completions may be rejected")
	}
	return llm.NewHTTPChatModel(llm.ClientConfig{
		URL:     cfg.LLMAPIURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: time.Duration(cfg.AITimeoutSeconds) * time.Second,
	})
}

// connectRedis returns nil when caching is disabled or Redis is unreachable.
func connectRedis(ctx context.Context, cfg config.Config, log zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL; translation cache disabled")
		return nil
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; translation cache disabled")
		_ = rdb.Close()
		return nil
	}
	log.Info().Msg("translation cache enabled")
	return rdb
}
