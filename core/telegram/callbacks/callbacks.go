// Package callbacks decodes inline button presses and answers them.
package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Data is a decoded press: the button's unique key and its payload.
type Data struct {
	Unique  string
	Payload string
}

// Parse decodes telebot's "\f<unique>|<payload>" encoding. When telebot has
// already split the data, cb.Unique is set and cb.Data is the payload.
func Parse(cb *tele.Callback) Data {
	if cb == nil {
		return Data{}
	}
	if cb.Unique != "" {
		return Data{Unique: cb.Unique, Payload: cb.Data}
	}
	unique, payload, _ := strings.Cut(strings.TrimPrefix(cb.Data, "\f"), "|")
	return Data{Unique: strings.TrimSpace(unique), Payload: payload}
}

// Of decodes the callback of c; updates without one decode to zero Data.
func Of(c tele.Context) Data {
	return Parse(c.Callback())
}

// Int64 parses the payload as one id.
func (d Data) Int64() (int64, error) {
	return strconv.ParseInt(d.Payload, 10, 64)
}

// Int64Pair parses an "a|b" payload.
func (d Data) Int64Pair() (int64, int64, error) {
	left, right, ok := strings.Cut(d.Payload, "|")
	if !ok {
		return 0, 0, strconv.ErrSyntax
	}
	a, err := strconv.ParseInt(left, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseInt(right, 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

const answeredKey = "cb_answered"

// Answer responds to the callback once, with text as a toast when set.
// Later calls for the same update do nothing.
func Answer(c tele.Context, text string) error {
	if c.Callback() == nil || Answered(c) {
		return nil
	}
	c.Set(answeredKey, true)
	if text == "" {
		return c.Respond()
	}
	return c.Respond(&tele.CallbackResponse{Text: text})
}

func Answered(c tele.Context) bool {
	done, _ := c.Get(answeredKey).(bool)
	return done
}
