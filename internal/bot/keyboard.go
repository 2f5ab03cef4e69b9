package bot

import (
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/scaramou4/telegrambot2.0/internal/chat"
)

// inlineKeyboard renders directive buttons as a Telegram inline keyboard.
// Returns nil when there are no buttons so SendMessage omits the markup.
func inlineKeyboard(rows [][]chat.Button) *tgmodels.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}

	keyboard := make([][]tgmodels.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgmodels.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgmodels.InlineKeyboardButton{
				Text:         btn.Label,
				CallbackData: btn.Data,
			})
		}
		keyboard = append(keyboard, buttons)
	}

	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}
