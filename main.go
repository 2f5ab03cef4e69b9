// Package main is the entry point for the currency-conversion Telegram bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scaramou4/telegrambot2.0/internal/bot"
	"github.com/scaramou4/telegrambot2.0/internal/chat"
	"github.com/scaramou4/telegrambot2.0/internal/config"
	"github.com/scaramou4/telegrambot2.0/internal/logger"
	"github.com/scaramou4/telegrambot2.0/internal/rates"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("telegrambot2.0 %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logger.SetJSON()
	}
	logger.InitHashSalt()

	cache := rates.NewFileCache(cfg.CacheFile)
	client := rates.NewClient(cfg.RatesXMLBaseURL, cfg.RatesJSONBaseURL, cfg.HTTPTimeout)
	rateService := rates.NewService(client, cache)

	logger.Log.Info().
		Str("cache_file", cfg.CacheFile).
		Int("cached_dates", cache.Len()).
		Msg("Rate cache initialized")

	machine := chat.NewMachine(chat.NewStore(), rateService)

	telegramBot, err := bot.New(cfg, machine)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create bot")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	telegramBot.Start(ctx)
}
