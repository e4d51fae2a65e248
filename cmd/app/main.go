// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"drive-search-bot/internal/application"
	"drive-search-bot/internal/config"
	"drive-search-bot/internal/domain/model"
	"drive-search-bot/internal/infra/adapters/drive"
	tele "drive-search-bot/internal/infra/adapters/telegram"
	"drive-search-bot/internal/infra/db"
	httpapi "drive-search-bot/internal/infra/http"
	"drive-search-bot/internal/infra/i18n"
	"drive-search-bot/internal/infra/logging"
	"drive-search-bot/internal/infra/memory"
	"drive-search-bot/internal/infra/metrics"
	red "drive-search-bot/internal/infra/redis"
	"drive-search-bot/internal/infra/sched"
	"drive-search-bot/internal/infra/security"
	"drive-search-bot/internal/infra/worker"
	"drive-search-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, bot debug)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	logger.Info().Str("version", version).Bool("dev", cfg.Runtime.Dev).Msg("starting drive search bot")

	// ---- Store ----
	store, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer store.Close()

	// ---- Drive ----
	var cipher drive.TokenCipher
	if cfg.Security.EncryptionKey != "" {
		enc, err := security.NewEncryptionService(cfg.Security.EncryptionKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption")
		}
		cipher = enc
	} else {
		logger.Warn().Msg("security.encryption_key not set; drive token stored unencrypted")
	}
	creds, err := drive.LoadCredentials(cfg.Drive)
	if err != nil {
		logger.Fatal().Err(err).Msg("drive credentials")
	}
	auth, err := drive.NewAuthenticator(creds, store, cipher, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("drive auth")
	}
	if err := auth.Bootstrap(ctx, cfg.Drive.TokenBase64); err != nil {
		logger.Error().Err(err).Msg("drive token bootstrap failed")
	}
	if !auth.HasCredentials() {
		logger.Warn().Msg("no drive credentials configured; searches will fail until they are provided")
	}
	driveClient := drive.NewClient(auth, cfg.Drive, logger)

	// ---- Redis (optional) ----
	var (
		rateLimiter *red.RateLimiter
		memberCache *red.MembershipCache
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; rate limiting disabled")
		} else {
			defer redisClient.Close()
			rateLimiter = red.NewRateLimiter(redisClient, cfg.Limits.CommandsPerMinute, time.Minute)
			memberCache = red.NewMembershipCache(redisClient, cfg.Redis.TTL)
		}
	}

	// ---- Telegram ----
	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		logger.Fatal().Err(err).Str("token", logging.Redact(cfg.Bot.Token, false)).Msg("telegram")
	}
	bot.Debug = cfg.Runtime.Dev
	if cfg.Bot.Username == "" {
		cfg.Bot.Username = bot.Self.UserName
	}
	messenger := tele.NewMessenger(bot, logger)

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}
	logger.Debug().Str("lang", tr.Lang()).Msg("translations loaded")

	// ---- Use cases ----
	sessions := memory.NewSessionStore(cfg.Limits.SessionTTL)
	userUC := usecase.NewUserUseCase(store, logger)
	searchUC := usecase.NewSearchUseCase(driveClient, store, logger)
	chatUC := usecase.NewChatUseCase(store, store, logger)
	statsUC := usecase.NewStatsUseCase(store, driveClient, cfg.Drive.FolderID, logger)
	dupUC := usecase.NewDuplicateUseCase(driveClient, sessions, cfg.Limits.RemovalPace, logger)
	broadcastUC := usecase.NewBroadcastUseCase(store, messenger, cfg.Limits.BroadcastPace, logger)

	// ---- Application ----
	searchFlow := application.NewSearchFlow(searchUC, messenger, tr, cfg.Bot.Username, logger)
	gate := application.NewGatekeeper(cfg.Bot, messenger, userUC, logger)
	if memberCache != nil {
		gate.UseMembershipCache(memberCache)
	}
	orch := application.NewOrchestrator(sessions, messenger, tr, userUC, broadcastUC, searchFlow,
		model.ParseChatRef(cfg.Bot.RequestChat), logger)
	facade := application.NewBotFacade(cfg.Bot, messenger, tr, gate, orch, searchFlow, application.Services{
		Users:      userUC,
		Search:     searchUC,
		Duplicates: dupUC,
		Stats:      statsUC,
		Chats:      chatUC,
		Drive:      driveClient,
		Auth:       auth,
	}, store.Backend(), logger)

	pool := worker.NewPool(cfg.Bot.Workers, logger)
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, bot, facade, rateLimiter, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram adapter")
	}
	if err := botAdapter.PublishCommands(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to publish bot commands")
	}

	// ---- HTTP ----
	srv := httpapi.NewServer(statsUC, cfg.Admin.APIKey, logger)
	go func() {
		if err := srv.Start(cfg.Admin.Port); err != nil {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	// ---- Cleanup worker ----
	cleanup := sched.NewCleanupWorker(cfg.Drive.DownloadDir, cfg.Scheduler.CleanupInterval, cfg.Scheduler.DownloadMaxAge, logger)
	go func() { _ = cleanup.Run(ctx) }()

	logger.Info().Str("bot", cfg.Bot.Username).Str("store", store.Backend()).
		Bool("rate_limit", rateLimiter != nil).Msg("bot is running")
	if err := botAdapter.StartPolling(ctx); err != nil {
		logger.Error().Err(err).Msg("telegram polling stopped")
	}

	// ---- Graceful shutdown ----
	shutdown(srv, logger)
}

func shutdown(srv *httpapi.Server, logger *zerolog.Logger) {
	logger.Info().Msg("shutdown requested")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
}
