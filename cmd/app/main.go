// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"telegram-broadcast-bot/internal/application"
	"telegram-broadcast-bot/internal/config"
	"telegram-broadcast-bot/internal/domain/ports/adapter"
	tele "telegram-broadcast-bot/internal/infra/adapters/telegram"
	pg "telegram-broadcast-bot/internal/infra/db/postgres"
	"telegram-broadcast-bot/internal/infra/i18n"
	"telegram-broadcast-bot/internal/infra/logging"
	"telegram-broadcast-bot/internal/infra/metrics"
	red "telegram-broadcast-bot/internal/infra/redis"
	"telegram-broadcast-bot/internal/infra/web"
	"telegram-broadcast-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop sends)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	rateLimiter := red.NewRateLimiter(redisClient)
	stateRepo := red.NewStateRepo(redisClient, cfg.Redis.TTL)

	// ---- Translator ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Lang)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Settings ----
	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("settings")
	}

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Outbound telegram client ----
	var sender adapter.MessageSender
	var client *tele.Client
	if cfg.Runtime.Dev && cfg.Bot.Token == "dev" {
		sender = tele.NewNoopSender()
	} else {
		client, err = tele.NewClient(cfg.Bot.Token, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		sender = client
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	broadcastUC := usecase.NewBroadcastUseCase(userRepo, sender, cfg.Broadcast.SendInterval, logger)
	mailingUC := usecase.NewMailingUseCase(stateRepo, broadcastUC, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, mailingUC, broadcastUC, settings)

	// ---- Telegram polling ----
	if client != nil {
		bot, err := tele.NewBot(&cfg.Bot, client, facade, tr, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram bot")
		}
		if strings.ToLower(cfg.Bot.Mode) != "" && strings.ToLower(cfg.Bot.Mode) != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented, falling back to polling")
		}
		go func() {
			if err := bot.StartPolling(ctx); err != nil && err != context.Canceled {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	} else {
		logger.Warn().Msg("noop sender active, telegram polling disabled")
	}

	// ---- Operator web API ----
	auth := web.NewAuthManager(cfg.Web.SessionSecret, !cfg.Runtime.Dev, cfg.Web.SessionTTL)
	srv := web.NewServer(userUC, broadcastUC, settings, auth, cfg.Web.APIKey, logger)
	webPort := cfg.Web.Port
	if webPort == 0 {
		webPort = 8080
	}
	go func() {
		addr := fmt.Sprintf(":%d", webPort)
		logger.Info().Str("addr", addr).Msg("operator api listening")
		if err := srv.Serve(ctx, addr); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("operator api stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
}
