package keyboard

import "testing"

func TestGrid(t *testing.T) {
	buttons := []Button{
		{Text: "a", Unique: "pick", Data: "1"},
		{Text: "b", Unique: "pick", Data: "2"},
		{Text: "c", Unique: "pick", Data: "3"},
	}
	m := Grid(buttons, 2)
	if len(m.InlineKeyboard) != 2 || len(m.InlineKeyboard[0]) != 2 || len(m.InlineKeyboard[1]) != 1 {
		t.Fatalf("rows = %+v", m.InlineKeyboard)
	}
	if got := m.InlineKeyboard[1][0]; got.Unique != "pick" || got.Data != "3" || got.Text != "c" {
		t.Fatalf("last button = %+v", got)
	}
	if col := Column(buttons); len(col.InlineKeyboard) != 3 {
		t.Fatalf("column rows = %d", len(col.InlineKeyboard))
	}
	if zero := Grid(buttons, 0); len(zero.InlineKeyboard) != 3 {
		t.Fatalf("perRow 0 must act as 1, rows = %d", len(zero.InlineKeyboard))
	}
}

func TestRowsSkipsEmptyRows(t *testing.T) {
	m := Rows(nil, []Button{{Text: "x", Unique: "u"}}, []Button{})
	if len(m.InlineKeyboard) != 1 {
		t.Fatalf("rows = %d", len(m.InlineKeyboard))
	}
}

func TestCancel(t *testing.T) {
	m := Cancel("cancel_flow")
	if len(m.InlineKeyboard) != 1 {
		t.Fatalf("rows = %d", len(m.InlineKeyboard))
	}
	btn := m.InlineKeyboard[0][0]
	if btn.Unique != "cancel_flow" || btn.Data != "cancel" || btn.Text != CancelText {
		t.Fatalf("button = %+v", btn)
	}
}
