// Package dates parses free-form textual dates into the canonical DD/MM/YYYY
// form used throughout the bot.
package dates

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical textual date representation.
const Layout = "02/01/2006"

// MinDate is the earliest date the rate authority publishes quotes for.
var MinDate = time.Date(1992, time.July, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrBadFormat indicates the input is not a recognizable date.
	ErrBadFormat = errors.New("date has unsupported format")
	// ErrTooEarly indicates a date before the first published quotes.
	ErrTooEarly = errors.New("date is before the first published rates")
)

var (
	// Digit groups in day/month/year order, separated by '.', '/' or ','.
	groupedPattern = regexp.MustCompile(`^(\d{1,2})[./,](\d{1,2})[./,](\d{4})$`)
	// Digits-only DDMMYYYY.
	compactPattern = regexp.MustCompile(`^(\d{2})(\d{2})(\d{4})$`)
)

// Parse converts free-form text into the canonical DD/MM/YYYY form.
// Impossible calendar combinations are normalized by time.Date the same way
// the original bot normalized them (30/02 rolls over into March).
func Parse(text string) (string, error) {
	text = strings.TrimSpace(text)

	match := groupedPattern.FindStringSubmatch(text)
	if match == nil {
		match = compactPattern.FindStringSubmatch(text)
	}
	if match == nil {
		return "", ErrBadFormat
	}

	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Before(MinDate) {
		return "", ErrTooEarly
	}

	return date.Format(Layout), nil
}

// Today returns the current date in canonical form.
func Today() string {
	return time.Now().Format(Layout)
}
