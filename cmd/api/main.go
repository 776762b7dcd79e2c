package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"twin-llm/internal/config"
	"twin-llm/internal/db"
	"twin-llm/internal/email"
	apihttp "twin-llm/internal/http"
	"twin-llm/internal/llm"
	"twin-llm/internal/repository"
	"twin-llm/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	avatarRepo := repository.NewPgAvatarRepository(pool)
	conversationRepo := repository.NewPgConversationRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	codeRepo := repository.NewPgContributionCodeRepository(pool)

	llmTimeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	llmClient := llm.NewHTTPChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, llmTimeout, logger)
	imageClient := llm.NewOpenAIImageClient(cfg.LLMBaseURL, cfg.LLMAPIKey)

	var synthesizer llm.SpeechSynthesizer = llm.NewOpenAISpeechClient(cfg.LLMBaseURL, cfg.LLMAPIKey)
	if cfg.SpeechProvider == "google" {
		googleClient, err := llm.NewGoogleSpeechClient(ctx, cfg.GoogleCredentials)
		if err != nil {
			logger.Warn("google tts init failed, falling back to openai", zap.Error(err))
		} else {
			synthesizer = googleClient
			defer googleClient.Close()
		}
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		turnLimiter service.TurnRateLimiter
		tokenStore  service.RefreshTokenStore
		draftStore  service.DraftStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			turnLimiter = service.NewRedisTurnRateLimiter(redisClient, time.Minute, 20)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			draftStore = service.NewRedisDraftStore(redisClient)
		}
		cancel()
	}
	if turnLimiter == nil {
		turnLimiter = service.NewMemoryTurnRateLimiter(time.Minute, 20)
	}
	if draftStore == nil {
		draftStore = service.NewMemoryDraftStore()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	window := service.NewContextWindow(cfg.ContextMaxTurns, cfg.ContextMaxTokens)
	chatSvc := service.NewChatService(llmClient, avatarRepo, conversationRepo, messageRepo, window, turnLimiter)
	speechSvc := service.NewSpeechService(synthesizer, cfg.SpeechProvider)
	portraitSvc := service.NewPortraitService(imageClient, avatarRepo)
	progress := service.NewProgressRegistry()
	onboardingSvc := service.NewOnboardingService(logger, draftStore, avatarRepo, codeRepo, progress, cfg.PersonalityNextStep)
	userSvc := service.NewUserService(logger, userRepo)
	avatarSvc := service.NewAvatarService(avatarRepo)
	inviteSvc := service.NewInviteService(logger, avatarRepo, codeRepo, emailSender)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	speechHandler := apihttp.NewSpeechHandler(logger, speechSvc)
	portraitHandler := apihttp.NewPortraitHandler(logger, portraitSvc)
	onboardingHandler := apihttp.NewOnboardingHandler(logger, onboardingSvc)
	avatarHandler := apihttp.NewAvatarHandler(logger, avatarSvc, inviteSvc)

	router := apihttp.NewRouter(
		logger,
		jwtSvc,
		userHandler,
		chatHandler,
		speechHandler,
		portraitHandler,
		onboardingHandler,
		avatarHandler,
		cfg.CORSAllowOrigins,
	)

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
