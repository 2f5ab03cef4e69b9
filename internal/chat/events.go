package chat

// EventKind tags the kind of an inbound chat event. Events are discrete,
// immutable inputs; the machine never inspects raw transport payloads.
type EventKind int

const (
	// EventUnknown is an unrecognized input.
	EventUnknown EventKind = iota
	// EventStart is the /start command.
	EventStart
	// EventInfo is the /info command asking for the latest rates listing.
	EventInfo
	// EventChooseDate is the /date command re-showing the date keyboard.
	EventChooseDate
	// EventChooseCurrency is the /currency command re-showing the currency keyboard.
	EventChooseCurrency
	// EventDateToday is the "today" date button.
	EventDateToday
	// EventDateManual is the "enter manually" date button.
	EventDateManual
	// EventCurrencySelect is a currency button press; Currency carries the code.
	EventCurrencySelect
	// EventText is a free-text message; Text carries the content.
	EventText
)

// String returns the event kind name for logging.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventInfo:
		return "info"
	case EventChooseDate:
		return "choose_date"
	case EventChooseCurrency:
		return "choose_currency"
	case EventDateToday:
		return "date_today"
	case EventDateManual:
		return "date_manual"
	case EventCurrencySelect:
		return "currency_select"
	case EventText:
		return "text"
	default:
		return "unknown"
	}
}

// Event is a single inbound interaction from a chat.
type Event struct {
	Kind      EventKind
	ChatID    int64
	FirstName string
	Currency  string
	Text      string
}

// Directive is an outbound message the transport should render.
type Directive struct {
	Text    string
	Buttons [][]Button
}

// Button is one labeled inline button with its callback payload.
type Button struct {
	Label string
	Data  string
}
