package main

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"Zoom-License-Bot/config"
	"Zoom-License-Bot/internal/admin"
	"Zoom-License-Bot/internal/bot"
	"Zoom-License-Bot/internal/db"
	"Zoom-License-Bot/internal/logger"
	"Zoom-License-Bot/internal/services"
	"Zoom-License-Bot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", zap.Error(err))
		return
	}

	store, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("open database", zap.Error(err))
		return
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("connect telegram", zap.Error(err))
		return
	}
	logger.Info("authorized", zap.String("bot", api.Self.UserName))

	gw := telegram.NewGateway(api)
	logger.InitNotifier(func(chatID int64, text string) error {
		_, err := gw.SendText(chatID, text, nil)
		return err
	}, cfg.BotOwnerID)

	roles := admin.NewRoleCache(gw, admin.DefaultRoleTTL)
	broadcasts := admin.NewBroadcaster(gw, store, 300*time.Millisecond)
	staff := admin.NewHandler(gw, store, roles, broadcasts, cfg.BotOwnerID, cfg.DatabaseURL)
	b := bot.New(gw, store, staff, cfg.BotOwnerID)
	sweeper := services.NewSweeper(gw, store)

	c := cron.New()
	if _, err := c.AddFunc("@hourly", sweeper.Run); err != nil {
		logger.Error("schedule sweep", zap.Error(err))
		return
	}
	if _, err := c.AddFunc("0 3 * * *", func() {
		admin.AutoBackupDatabase(gw, cfg.BotOwnerID, cfg.DatabaseURL)
	}); err != nil {
		logger.Error("schedule backup", zap.Error(err))
		return
	}
	c.Start()
	defer c.Stop()

	// Catch up on anything that expired while the bot was down.
	go sweeper.Run()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	logger.Info("bot started")
	b.Run(api.GetUpdatesChan(u))
}
