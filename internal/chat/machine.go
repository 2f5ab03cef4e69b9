package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/scaramou4/telegrambot2.0/internal/dates"
	"github.com/scaramou4/telegrambot2.0/internal/logger"
	"github.com/scaramou4/telegrambot2.0/internal/models"
	"github.com/scaramou4/telegrambot2.0/internal/rates"
)

// RateService serves daily rate snapshots.
type RateService interface {
	RatesFor(ctx context.Context, date string) (models.RateSnapshot, error)
	Latest(ctx context.Context) (models.RateSnapshot, error)
}

// User-facing texts.
const (
	msgChooseDate       = "Выберите дату курса:"
	msgChooseCurrency   = "Выберите валюту:"
	msgEnterManualDate  = "Введите дату в формате ДД.ММ.ГГГГ, например 05.03.2024."
	msgBadDateFormat    = "Не удалось распознать дату. Используйте формат ДД.ММ.ГГГГ."
	msgRatesUnavailable = "Не удалось загрузить курсы валют. Попробуйте позже."
	msgNoRatesLoaded    = "Курсы ещё не загружены. Сначала выберите дату."
	msgInvalidAmount    = "Введите сумму числом, например 10 или 10,5."
	msgHintAwaitingDate = "Сначала выберите дату курса."
)

// Machine drives the conversation of every chat. Each inbound event becomes
// a state transition plus outbound directives; all state access goes through
// the injected store.
type Machine struct {
	store *Store
	rates RateService
}

// NewMachine creates a conversation machine over the given store and rates.
func NewMachine(store *Store, rateService RateService) *Machine {
	return &Machine{store: store, rates: rateService}
}

// Handle processes one inbound event and returns the messages to send back.
func (m *Machine) Handle(ctx context.Context, event Event) []Directive {
	logger.Log.Debug().
		Str("chat_hash", logger.HashChatID(event.ChatID)).
		Str("event", event.Kind.String()).
		Msg("Handling chat event")

	switch event.Kind {
	case EventStart:
		return m.handleStart(event)
	case EventInfo:
		return m.handleInfo(ctx)
	case EventChooseDate:
		return []Directive{{Text: msgChooseDate, Buttons: dateKeyboard()}}
	case EventChooseCurrency:
		return m.handleChooseCurrency(event)
	case EventDateToday:
		return m.handleDateToday(ctx, event)
	case EventDateManual:
		return m.handleDateManual(event)
	case EventCurrencySelect:
		return m.handleCurrencySelect(event)
	case EventText:
		return m.handleText(ctx, event)
	default:
		return m.promptForCurrentStep(event.ChatID)
	}
}

// handleStart greets the user and restarts the dialog from date selection.
func (m *Machine) handleStart(event Event) []Directive {
	m.store.Do(event.ChatID, func(st *State) {
		*st = State{Step: StepAwaitingDate}
	})

	greeting := "Добро пожаловать!"
	if event.FirstName != "" {
		greeting = fmt.Sprintf("Добро пожаловать, %s!", event.FirstName)
	}
	return []Directive{
		{Text: greeting},
		{Text: msgChooseDate, Buttons: dateKeyboard()},
	}
}

// handleInfo lists the latest published rates. It never touches chat state.
func (m *Machine) handleInfo(ctx context.Context) []Directive {
	snapshot, err := m.rates.Latest(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to load latest rates for /info")
		return []Directive{{Text: msgRatesUnavailable}}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Курсы на %s:\n", snapshot.Date)
	for _, code := range snapshot.Codes() {
		fmt.Fprintf(&sb, "%s: %s\n", code, snapshot.Rates[code].StringFixed(models.RateScale))
	}
	return []Directive{{Text: strings.TrimRight(sb.String(), "\n")}}
}

// handleChooseCurrency re-shows the currency keyboard when rates are loaded.
func (m *Machine) handleChooseCurrency(event Event) []Directive {
	var out []Directive
	m.store.Do(event.ChatID, func(st *State) {
		if !st.HasRates() {
			out = []Directive{{Text: msgNoRatesLoaded, Buttons: dateKeyboard()}}
			return
		}
		out = []Directive{{Text: msgChooseCurrency, Buttons: currencyButtons(rateCodes(st.Rates))}}
	})
	return out
}

// handleDateToday loads rates for the current date. On fetch failure the
// chat state is left untouched so the user can simply retry.
func (m *Machine) handleDateToday(ctx context.Context, event Event) []Directive {
	var out []Directive
	m.store.Do(event.ChatID, func(st *State) {
		date := dates.Today()
		snapshot, err := m.rates.RatesFor(ctx, date)
		if err != nil {
			out = m.rateFailureDirectives(event.ChatID, date, err)
			return
		}
		st.setRates(date, snapshot.Rates)
		out = ratesLoadedDirectives(st)
	})
	return out
}

// handleDateManual switches the chat to manual date entry.
func (m *Machine) handleDateManual(event Event) []Directive {
	m.store.Do(event.ChatID, func(st *State) {
		st.Step = StepAwaitingManualDate
	})
	return []Directive{{Text: msgEnterManualDate}}
}

// handleCurrencySelect validates the pressed currency against the loaded
// rates and moves the chat to amount input.
func (m *Machine) handleCurrencySelect(event Event) []Directive {
	var out []Directive
	m.store.Do(event.ChatID, func(st *State) {
		rate, err := st.selectCurrency(event.Currency)
		switch {
		case errors.Is(err, ErrNoRatesLoaded):
			out = []Directive{{Text: msgNoRatesLoaded, Buttons: dateKeyboard()}}
		case errors.Is(err, ErrUnknownCurrency):
			out = []Directive{{Text: fmt.Sprintf("Курс для валюты %s недоступен.", event.Currency)}}
		default:
			out = []Directive{{Text: fmt.Sprintf(
				"Выбрана валюта: %s. Курс на %s: 1 %s = %s %s.\nВведите сумму для конвертации.",
				event.Currency, st.Date, event.Currency,
				rate.StringFixed(models.RateScale), models.BaseCurrency,
			)}}
		}
	})
	return out
}

// handleText routes a free-text message by the chat's current step.
func (m *Machine) handleText(ctx context.Context, event Event) []Directive {
	var out []Directive
	m.store.Do(event.ChatID, func(st *State) {
		switch st.Step {
		case StepAwaitingManualDate:
			out = m.handleManualDateText(ctx, event, st)
		case StepAwaitingAmount:
			out = handleAmountText(event.Text, st)
		case StepAwaitingCurrency:
			out = []Directive{{Text: msgChooseCurrency, Buttons: currencyButtons(rateCodes(st.Rates))}}
		default:
			out = []Directive{{Text: msgHintAwaitingDate, Buttons: dateKeyboard()}}
		}
	})
	return out
}

// handleManualDateText parses the typed date and loads its rates. Any
// failure keeps the chat in manual date entry.
func (m *Machine) handleManualDateText(ctx context.Context, event Event, st *State) []Directive {
	date, err := dates.Parse(event.Text)
	switch {
	case errors.Is(err, dates.ErrTooEarly):
		return []Directive{{Text: fmt.Sprintf(
			"Курсы публикуются только с %s. Введите более позднюю дату.",
			dates.MinDate.Format(dates.Layout),
		)}}
	case err != nil:
		return []Directive{{Text: msgBadDateFormat}}
	}

	snapshot, err := m.rates.RatesFor(ctx, date)
	if err != nil {
		return m.rateFailureDirectives(event.ChatID, date, err)
	}
	st.setRates(date, snapshot.Rates)
	return ratesLoadedDirectives(st)
}

// handleAmountText converts the typed amount with the selected currency's
// rate. The chat stays on amount input either way.
func handleAmountText(text string, st *State) []Directive {
	amount, err := parseAmount(text)
	if err != nil {
		return []Directive{{Text: msgInvalidAmount}}
	}

	rate, ok := st.Rates[st.Currency]
	if !ok {
		return []Directive{{Text: msgNoRatesLoaded, Buttons: dateKeyboard()}}
	}
	return []Directive{{Text: formatConversion(amount, st.Currency, convert(amount, rate))}}
}

// promptForCurrentStep nudges the user toward the action the machine is
// waiting for, creating the state on first contact.
func (m *Machine) promptForCurrentStep(chatID int64) []Directive {
	var out []Directive
	m.store.Do(chatID, func(st *State) {
		switch st.Step {
		case StepAwaitingCurrency:
			out = []Directive{{Text: msgChooseCurrency, Buttons: currencyButtons(rateCodes(st.Rates))}}
		case StepAwaitingManualDate:
			out = []Directive{{Text: msgEnterManualDate}}
		case StepAwaitingAmount:
			out = []Directive{{Text: msgInvalidAmount}}
		default:
			out = []Directive{{Text: msgHintAwaitingDate, Buttons: dateKeyboard()}}
		}
	})
	return out
}

// rateFailureDirectives logs a fetch failure and tells the user rates could
// not be loaded.
func (m *Machine) rateFailureDirectives(chatID int64, date string, err error) []Directive {
	logger.Log.Warn().
		Err(err).
		Str("chat_hash", logger.HashChatID(chatID)).
		Str("date", date).
		Msg("Failed to load rates")

	if errors.Is(err, rates.ErrEmptyResult) {
		return []Directive{{Text: fmt.Sprintf("Курсы на %s не опубликованы. Попробуйте другую дату.", date)}}
	}
	return []Directive{{Text: msgRatesUnavailable}}
}

// ratesLoadedDirectives confirms the loaded date and shows the currencies.
func ratesLoadedDirectives(st *State) []Directive {
	return []Directive{{
		Text:    fmt.Sprintf("Курсы на %s загружены. %s", st.Date, msgChooseCurrency),
		Buttons: currencyButtons(rateCodes(st.Rates)),
	}}
}

func rateCodes(rates map[string]decimal.Decimal) []string {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	return codes
}
