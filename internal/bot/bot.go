// Package bot provides the Telegram bot initialization and handlers.
package bot

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/scaramou4/telegrambot2.0/internal/chat"
	"github.com/scaramou4/telegrambot2.0/internal/config"
	"github.com/scaramou4/telegrambot2.0/internal/logger"
)

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot     *bot.Bot
	cfg     *config.Config
	machine *chat.Machine
}

// New creates a new Bot instance.
func New(cfg *config.Config, machine *chat.Machine) (*Bot, error) {
	b := &Bot{
		cfg:     cfg,
		machine: machine,
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.loggingMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.registerHandlers()

	return b, nil
}

// Start publishes the command menu and begins polling for updates.
func (b *Bot) Start(ctx context.Context) {
	b.setCommands(ctx)
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/info", bot.MatchTypePrefix, b.handleInfo)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/date", bot.MatchTypePrefix, b.handleDate)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/currency", bot.MatchTypePrefix, b.handleCurrency)

	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, chat.CallbackDateToday, bot.MatchTypeExact, b.handleDateCallback)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, chat.CallbackDateManual, bot.MatchTypeExact, b.handleDateCallback)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, chat.CallbackCurrencyPrefix, bot.MatchTypePrefix, b.handleCurrencyCallback)
}

// setCommands publishes the bot command menu.
func (b *Bot) setCommands(ctx context.Context) {
	_, err := b.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: []tgmodels.BotCommand{
			{Command: "start", Description: "Начать"},
			{Command: "info", Description: "Информация о курсах"},
			{Command: "date", Description: "Выбрать дату курса"},
			{Command: "currency", Description: "Выбрать валюту"},
		},
	})
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to set bot commands")
	}
}

// loggingMiddleware logs every inbound update with a hashed chat id.
func (b *Bot) loggingMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		logUpdate(update)
		next(ctx, tgBot, update)
	}
}

// logUpdate logs the user's input/action.
func logUpdate(update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		logger.Log.Info().
			Str("chat_hash", logger.HashChatID(update.Message.Chat.ID)).
			Str("text", update.Message.Text).
			Msg("User input")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Str("chat_hash", logger.HashChatID(update.CallbackQuery.From.ID)).
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")
	}
}
