// Package chat owns the per-chat conversation state machine that drives the
// date → currency → amount dialog.
package chat

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// Step identifies where a chat is in the conversation.
type Step int

const (
	// StepAwaitingDate means the chat has not picked a rate date yet.
	StepAwaitingDate Step = iota
	// StepAwaitingManualDate means the next text message is a date.
	StepAwaitingManualDate
	// StepAwaitingCurrency means rates are loaded and a currency is pending.
	StepAwaitingCurrency
	// StepAwaitingAmount means the next numeric message is converted.
	StepAwaitingAmount
)

// String returns the step name for logging.
func (s Step) String() string {
	switch s {
	case StepAwaitingDate:
		return "awaiting_date"
	case StepAwaitingManualDate:
		return "awaiting_manual_date"
	case StepAwaitingCurrency:
		return "awaiting_currency"
	case StepAwaitingAmount:
		return "awaiting_amount"
	default:
		return "unknown"
	}
}

var (
	// ErrNoRatesLoaded indicates a currency action before any rates exist.
	ErrNoRatesLoaded = errors.New("no rates loaded for this chat")
	// ErrUnknownCurrency indicates a code absent from the loaded rates.
	ErrUnknownCurrency = errors.New("currency is not present in the loaded rates")
	// ErrInvalidAmount indicates text that is not a positive number.
	ErrInvalidAmount = errors.New("amount is not a valid number")
)

// State is the conversation record of a single chat.
type State struct {
	Step     Step
	Date     string
	Rates    map[string]decimal.Decimal
	Currency string
}

// HasRates reports whether the chat has a non-empty rates mapping.
func (st *State) HasRates() bool {
	return len(st.Rates) > 0
}

// setRates installs a freshly fetched snapshot and resets the currency, so a
// previously selected code cannot leak across dates where it may be absent.
func (st *State) setRates(date string, rates map[string]decimal.Decimal) {
	st.Date = date
	st.Rates = rates
	st.Currency = ""
	st.Step = StepAwaitingCurrency
}

// selectCurrency validates the code against the loaded rates and advances
// the chat to amount input.
func (st *State) selectCurrency(code string) (decimal.Decimal, error) {
	if !st.HasRates() {
		return decimal.Decimal{}, ErrNoRatesLoaded
	}
	rate, ok := st.Rates[code]
	if !ok {
		return decimal.Decimal{}, ErrUnknownCurrency
	}
	st.Currency = code
	st.Step = StepAwaitingAmount
	return rate, nil
}

// Store is a concurrent-safe table of chat states. States are created lazily
// on first interaction and live for the process lifetime.
type Store struct {
	mu    sync.Mutex
	chats map[int64]*chatEntry
}

type chatEntry struct {
	mu    sync.Mutex
	state State
}

// NewStore creates an empty chat-state store.
func NewStore() *Store {
	return &Store{chats: make(map[int64]*chatEntry)}
}

// Do runs fn with exclusive access to the chat's state, creating the state
// on first contact. Events for the same chat serialize on the entry lock;
// other chats proceed independently.
func (s *Store) Do(chatID int64, fn func(*State)) {
	s.mu.Lock()
	entry, ok := s.chats[chatID]
	if !ok {
		entry = &chatEntry{state: State{Step: StepAwaitingDate}}
		s.chats[chatID] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(&entry.state)
}

// Snapshot returns a copy of the chat's state, if one exists.
func (s *Store) Snapshot(chatID int64) (State, bool) {
	s.mu.Lock()
	entry, ok := s.chats[chatID]
	s.mu.Unlock()
	if !ok {
		return State{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	state := entry.state
	if entry.state.Rates != nil {
		state.Rates = make(map[string]decimal.Decimal, len(entry.state.Rates))
		for code, rate := range entry.state.Rates {
			state.Rates[code] = rate
		}
	}
	return state, true
}

// Len returns the number of known chats.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}
