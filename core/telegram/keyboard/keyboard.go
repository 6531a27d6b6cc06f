// Package keyboard builds inline keyboards from plain button values.
package keyboard

import tele "gopkg.in/telebot.v4"

// Button is one inline button. Unique selects the callback handler and Data
// travels as its payload.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// CancelText labels the button made by Cancel.
const CancelText = "❌ Отменить"

// Rows lays the buttons out row by row.
func Rows(rows ...[]Button) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{InlineKeyboard: make([][]tele.InlineButton, 0, len(rows))}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		line := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			line = append(line, *m.Data(b.Text, b.Unique, b.Data).Inline())
		}
		m.InlineKeyboard = append(m.InlineKeyboard, line)
	}
	return m
}

// Column puts every button on its own row.
func Column(buttons []Button) *tele.ReplyMarkup {
	return Grid(buttons, 1)
}

// Grid fills rows of perRow buttons; the last row may be shorter.
func Grid(buttons []Button, perRow int) *tele.ReplyMarkup {
	perRow = max(perRow, 1)
	rows := make([][]Button, 0, (len(buttons)+perRow-1)/perRow)
	for start := 0; start < len(buttons); start += perRow {
		rows = append(rows, buttons[start:min(start+perRow, len(buttons))])
	}
	return Rows(rows...)
}

// Cancel is a keyboard with a single cancel button for unique.
func Cancel(unique string) *tele.ReplyMarkup {
	return Rows([]Button{{Text: CancelText, Unique: unique, Data: "cancel"}})
}
