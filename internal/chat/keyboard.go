package chat

import "sort"

// Callback payloads carried by inline buttons. The transport routes them by
// prefix back into tagged events.
const (
	CallbackDateToday      = "date_today"
	CallbackDateManual     = "date_manual"
	CallbackCurrencyPrefix = "cur_"
)

// currenciesPerRow is the canonical currency keyboard width.
const currenciesPerRow = 3

// dateKeyboard returns the date-selection buttons.
func dateKeyboard() [][]Button {
	return [][]Button{
		{{Label: "Сегодня", Data: CallbackDateToday}},
		{{Label: "Ввод вручную", Data: CallbackDateManual}},
	}
}

// currencyButtons builds the canonical currency keyboard: one button per
// code, sorted lexicographically, chunked three per row.
func currencyButtons(codes []string) [][]Button {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Strings(sorted)

	var rows [][]Button
	for i := 0; i < len(sorted); i += currenciesPerRow {
		end := i + currenciesPerRow
		if end > len(sorted) {
			end = len(sorted)
		}
		row := make([]Button, 0, end-i)
		for _, code := range sorted[i:end] {
			row = append(row, Button{Label: code, Data: CallbackCurrencyPrefix + code})
		}
		rows = append(rows, row)
	}
	return rows
}
