package bot

import (
	"context"
	"errors"
	"testing"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scaramou4/telegrambot2.0/internal/bot/mocks"
	"github.com/scaramou4/telegrambot2.0/internal/chat"
	"github.com/scaramou4/telegrambot2.0/internal/models"
)

// stubRates serves the same snapshot for every date.
type stubRates struct {
	snapshot models.RateSnapshot
	err      error
}

func (s *stubRates) RatesFor(_ context.Context, date string) (models.RateSnapshot, error) {
	if s.err != nil {
		return models.RateSnapshot{}, s.err
	}
	out := s.snapshot.Clone()
	out.Date = date
	return out, nil
}

func (s *stubRates) Latest(_ context.Context) (models.RateSnapshot, error) {
	if s.err != nil {
		return models.RateSnapshot{}, s.err
	}
	return s.snapshot.Clone(), nil
}

func newTestBot(rateErr error) (*Bot, *mocks.MockBot) {
	stub := &stubRates{
		snapshot: models.RateSnapshot{
			Date: "01/03/2024",
			Rates: map[string]decimal.Decimal{
				"USD": decimal.RequireFromString("95"),
				"EUR": decimal.RequireFromString("105.5"),
			},
		},
		err: rateErr,
	}
	b := &Bot{machine: chat.NewMachine(chat.NewStore(), stub)}
	return b, mocks.NewMockBot()
}

func TestHandleStartCore(t *testing.T) {
	b, mock := newTestBot(nil)

	b.handleStartCore(context.Background(), mock, mocks.CommandUpdate(100, 1, "/start"))

	require.Equal(t, 2, mock.SentMessageCount())
	assert.Contains(t, mock.SentMessages[0].Text, "Добро пожаловать, Test!")
	assert.Contains(t, mock.SentMessages[1].Text, "Выберите дату")
	assert.NotNil(t, mock.SentMessages[1].ReplyMarkup)
}

func TestHandleStartCore_NilMessage(t *testing.T) {
	b, mock := newTestBot(nil)

	b.handleStartCore(context.Background(), mock, &tgmodels.Update{})

	assert.Zero(t, mock.SentMessageCount())
}

func TestHandleInfoCore(t *testing.T) {
	b, mock := newTestBot(nil)

	b.handleInfoCore(context.Background(), mock, mocks.CommandUpdate(100, 1, "/info"))

	require.Equal(t, 1, mock.SentMessageCount())
	msg := mock.LastSentMessage()
	assert.Contains(t, msg.Text, "Курсы на 01/03/2024")
	assert.Contains(t, msg.Text, "EUR: 105.5000")
	assert.Contains(t, msg.Text, "USD: 95.0000")
}

func TestHandleDateCallbackCore_Today(t *testing.T) {
	b, mock := newTestBot(nil)

	b.handleDateCallbackCore(context.Background(), mock,
		mocks.CallbackQueryUpdate(100, 1, 5, chat.CallbackDateToday))

	assert.Equal(t, 1, mock.AnsweredCallbackCount())
	require.Equal(t, 1, mock.SentMessageCount())
	msg := mock.LastSentMessage()
	assert.Contains(t, msg.Text, "загружены")
	assert.NotNil(t, msg.ReplyMarkup)
}

func TestHandleDateCallbackCore_Manual(t *testing.T) {
	b, mock := newTestBot(nil)

	b.handleDateCallbackCore(context.Background(), mock,
		mocks.CallbackQueryUpdate(100, 1, 5, chat.CallbackDateManual))

	assert.Equal(t, 1, mock.AnsweredCallbackCount())
	require.Equal(t, 1, mock.SentMessageCount())
	assert.Contains(t, mock.LastSentMessage().Text, "ДД.ММ.ГГГГ")
}

func TestHandleDateCallbackCore_InaccessibleMessage(t *testing.T) {
	b, mock := newTestBot(nil)

	update := &tgmodels.Update{
		CallbackQuery: &tgmodels.CallbackQuery{ID: "cb", Data: chat.CallbackDateToday},
	}
	b.handleDateCallbackCore(context.Background(), mock, update)

	assert.Zero(t, mock.AnsweredCallbackCount())
	assert.Zero(t, mock.SentMessageCount())
}

func TestHandleCurrencyCallbackCore(t *testing.T) {
	b, mock := newTestBot(nil)

	b.handleDateCallbackCore(context.Background(), mock,
		mocks.CallbackQueryUpdate(100, 1, 5, chat.CallbackDateToday))
	mock.Reset()

	b.handleCurrencyCallbackCore(context.Background(), mock,
		mocks.CallbackQueryUpdate(100, 1, 6, chat.CallbackCurrencyPrefix+"USD"))

	assert.Equal(t, 1, mock.AnsweredCallbackCount())
	require.Equal(t, 1, mock.SentMessageCount())
	msg := mock.LastSentMessage()
	assert.Contains(t, msg.Text, "USD")
	assert.Contains(t, msg.Text, "95.0000")
	assert.Contains(t, msg.Text, "Введите сумму")
}

func TestDefaultHandlerCore_AmountConversion(t *testing.T) {
	b, mock := newTestBot(nil)

	b.handleDateCallbackCore(context.Background(), mock,
		mocks.CallbackQueryUpdate(100, 1, 5, chat.CallbackDateToday))
	b.handleCurrencyCallbackCore(context.Background(), mock,
		mocks.CallbackQueryUpdate(100, 1, 6, chat.CallbackCurrencyPrefix+"USD"))
	mock.Reset()

	b.defaultHandlerCore(context.Background(), mock, mocks.MessageUpdate(100, 1, "10"))

	require.Equal(t, 1, mock.SentMessageCount())
	assert.Equal(t, "10 USD = 950.00 RUB", mock.LastSentMessage().Text)
}

func TestDefaultHandlerCore_UnknownCommand(t *testing.T) {
	b, mock := newTestBot(nil)

	b.defaultHandlerCore(context.Background(), mock, mocks.MessageUpdate(100, 1, "/help"))

	require.Equal(t, 1, mock.SentMessageCount())
	msg := mock.LastSentMessage()
	assert.Contains(t, msg.Text, "Сначала выберите дату")
	assert.NotNil(t, msg.ReplyMarkup)
}

func TestDefaultHandlerCore_TextWithoutState(t *testing.T) {
	b, mock := newTestBot(nil)

	b.defaultHandlerCore(context.Background(), mock, mocks.MessageUpdate(100, 1, "привет"))

	require.Equal(t, 1, mock.SentMessageCount())
	assert.Contains(t, mock.LastSentMessage().Text, "Сначала выберите дату")
}

func TestDefaultHandlerCore_EmptyUpdate(t *testing.T) {
	b, mock := newTestBot(nil)

	b.defaultHandlerCore(context.Background(), mock, &tgmodels.Update{})

	assert.Zero(t, mock.SentMessageCount())
}

func TestProcess_SendFailureDoesNotPanic(t *testing.T) {
	b, mock := newTestBot(nil)
	mock.SendMessageError = errors.New("network down")

	assert.NotPanics(t, func() {
		b.handleStartCore(context.Background(), mock, mocks.CommandUpdate(100, 1, "/start"))
	})
	assert.Zero(t, mock.SentMessageCount())
}
