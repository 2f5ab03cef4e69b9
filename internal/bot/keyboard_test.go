package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scaramou4/telegrambot2.0/internal/chat"
)

func TestInlineKeyboard(t *testing.T) {
	t.Run("empty rows produce no markup", func(t *testing.T) {
		assert.Nil(t, inlineKeyboard(nil))
		assert.Nil(t, inlineKeyboard([][]chat.Button{}))
	})

	t.Run("rows map to buttons with callback data", func(t *testing.T) {
		markup := inlineKeyboard([][]chat.Button{
			{
				{Label: "EUR", Data: "cur_EUR"},
				{Label: "USD", Data: "cur_USD"},
			},
			{
				{Label: "Сегодня", Data: "date_today"},
			},
		})

		require.NotNil(t, markup)
		require.Len(t, markup.InlineKeyboard, 2)
		require.Len(t, markup.InlineKeyboard[0], 2)
		assert.Equal(t, "EUR", markup.InlineKeyboard[0][0].Text)
		assert.Equal(t, "cur_EUR", markup.InlineKeyboard[0][0].CallbackData)
		assert.Equal(t, "USD", markup.InlineKeyboard[0][1].Text)
		assert.Equal(t, "Сегодня", markup.InlineKeyboard[1][0].Text)
		assert.Equal(t, "date_today", markup.InlineKeyboard[1][0].CallbackData)
	})
}
