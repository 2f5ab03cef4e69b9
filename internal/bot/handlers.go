package bot

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/scaramou4/telegrambot2.0/internal/chat"
	"github.com/scaramou4/telegrambot2.0/internal/logger"
)

// Command handlers are thin wrappers delegating to testable core functions
// that work against the TelegramAPI interface.

func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

func (b *Bot) handleInfo(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleInfoCore(ctx, tgBot, update)
}

func (b *Bot) handleDate(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleDateCore(ctx, tgBot, update)
}

func (b *Bot) handleCurrency(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleCurrencyCore(ctx, tgBot, update)
}

func (b *Bot) handleDateCallback(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleDateCallbackCore(ctx, tgBot, update)
}

func (b *Bot) handleCurrencyCallback(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleCurrencyCallbackCore(ctx, tgBot, update)
}

func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	b.process(ctx, tg, chat.Event{
		Kind:      chat.EventStart,
		ChatID:    update.Message.Chat.ID,
		FirstName: messageFirstName(update.Message),
	})
}

func (b *Bot) handleInfoCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	b.process(ctx, tg, chat.Event{
		Kind:   chat.EventInfo,
		ChatID: update.Message.Chat.ID,
	})
}

func (b *Bot) handleDateCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	b.process(ctx, tg, chat.Event{
		Kind:   chat.EventChooseDate,
		ChatID: update.Message.Chat.ID,
	})
}

func (b *Bot) handleCurrencyCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	b.process(ctx, tg, chat.Event{
		Kind:   chat.EventChooseCurrency,
		ChatID: update.Message.Chat.ID,
	})
}

// handleDateCallbackCore handles both date buttons. The callback is answered
// first so the button stops spinning even when the rate fetch is slow.
func (b *Bot) handleDateCallbackCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	chatID, ok := answerCallback(ctx, tg, update)
	if !ok {
		return
	}

	kind := chat.EventDateToday
	if update.CallbackQuery.Data == chat.CallbackDateManual {
		kind = chat.EventDateManual
	}
	b.process(ctx, tg, chat.Event{Kind: kind, ChatID: chatID})
}

func (b *Bot) handleCurrencyCallbackCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	chatID, ok := answerCallback(ctx, tg, update)
	if !ok {
		return
	}

	code := strings.TrimPrefix(update.CallbackQuery.Data, chat.CallbackCurrencyPrefix)
	b.process(ctx, tg, chat.Event{
		Kind:     chat.EventCurrencySelect,
		ChatID:   chatID,
		Currency: code,
	})
}

// defaultHandlerCore receives everything no registered handler matched:
// free-text messages and unknown commands.
func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	event := chat.Event{
		Kind:   chat.EventText,
		ChatID: update.Message.Chat.ID,
		Text:   update.Message.Text,
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		event.Kind = chat.EventUnknown
		event.Text = ""
	}
	b.process(ctx, tg, event)
}

// process runs the event through the conversation machine and sends the
// resulting directives back to the chat.
func (b *Bot) process(ctx context.Context, tg TelegramAPI, event chat.Event) {
	for _, directive := range b.machine.Handle(ctx, event) {
		params := &bot.SendMessageParams{
			ChatID: event.ChatID,
			Text:   directive.Text,
		}
		if markup := inlineKeyboard(directive.Buttons); markup != nil {
			params.ReplyMarkup = markup
		}

		if _, err := tg.SendMessage(ctx, params); err != nil {
			logger.Log.Error().
				Err(err).
				Str("chat_hash", logger.HashChatID(event.ChatID)).
				Msg("Failed to send message")
		}
	}
}

// answerCallback acknowledges a callback query and extracts the chat id.
// Returns false when the update is not a usable callback query.
func answerCallback(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) (int64, bool) {
	if update.CallbackQuery == nil || update.CallbackQuery.Message.Message == nil {
		return 0, false
	}

	if _, err := tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	}); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to answer callback query")
	}

	return update.CallbackQuery.Message.Message.Chat.ID, true
}

func messageFirstName(msg *tgmodels.Message) string {
	if msg.From == nil {
		return ""
	}
	return msg.From.FirstName
}
