package chat

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/scaramou4/telegrambot2.0/internal/models"
)

// parseAmount parses a user-entered amount. Whitespace is stripped and the
// decimal comma is accepted alongside the dot.
func parseAmount(text string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	if normalized == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}

// convert turns a foreign amount into base currency: the rate is base units
// per one foreign unit, so the result is amount × rate, rounded half-up to
// two decimal places.
func convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(models.ResultScale)
}

// formatConversion renders a conversion result message.
func formatConversion(amount decimal.Decimal, currency string, result decimal.Decimal) string {
	return fmt.Sprintf("%s %s = %s %s", amount.String(), currency, result.StringFixed(models.ResultScale), models.BaseCurrency)
}
