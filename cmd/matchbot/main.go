package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Rom2555/VK-BOT/internal/bot"
	"github.com/Rom2555/VK-BOT/internal/config"
	"github.com/Rom2555/VK-BOT/internal/domain"
	"github.com/Rom2555/VK-BOT/internal/repository/memory"
	"github.com/Rom2555/VK-BOT/internal/repository/sqlstore"
	"github.com/Rom2555/VK-BOT/internal/service"
	"github.com/Rom2555/VK-BOT/internal/vk"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var (
		sessions  domain.SessionRepository
		favorites domain.FavoriteRepository
	)

	if cfg.DBDriver == "memory" {
		store := memory.New()
		sessions, favorites = store, store
		logger.Info("using in-memory store")
	} else {
		db, err := sqlstore.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()

		sessions = sqlstore.NewSessionRepository(db)
		favorites = sqlstore.NewFavoriteRepository(db)
		logger.Info("database ready", zap.String("driver", cfg.DBDriver))
	}

	// Search runs on the user token, messaging and long poll on the group token
	searchClient := vk.NewClient(cfg.UserToken, logger.Named("search"))
	groupClient := vk.NewClient(cfg.GroupToken, logger.Named("vk"))

	matchmaker := service.NewMatchmaker(sessions, favorites, searchClient, logger.Named("matchmaker"), service.Settings{
		AgeWindow:      cfg.AgeWindow,
		SearchLimit:    cfg.SearchLimit,
		GatewayTimeout: cfg.GatewayTimeout,
	})

	poller := vk.NewLongPoller(groupClient, logger.Named("longpoll"))
	matchBot := bot.New(poller, groupClient, matchmaker, logger.Named("bot"), cfg.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started")

	if err := matchBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("bot stopped with error", zap.Error(err))
	}

	logger.Info("shutting down gracefully")
}
