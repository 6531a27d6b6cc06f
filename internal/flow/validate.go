package flow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tghelpers "github.com/m3rciful/gamebot/core/telegram/helpers"
)

// Result carries either a parsed value or a message for the user.
type Result[T any] struct {
	Value T
	Msg   string
}

// OK reports whether validation passed.
func (r Result[T]) OK() bool { return r.Msg == "" }

func valid[T any](v T) Result[T] { return Result[T]{Value: v} }

func invalid[T any](msg string) Result[T] { return Result[T]{Msg: msg} }

const (
	MsgDateFormat = "❌ Неверный формат даты.\n\n" +
		"Используйте формат: ДД.ММ.ГГГГ ЧЧ:ММ\n" +
		"Например: 15.02.2026 19:00\n" +
		"Или короткий: 15.02 19:00"
	MsgDateRange     = "❌ Такой даты не существует. Проверьте день, месяц и время:"
	MsgDatePast      = "❌ Дата игры не может быть в прошлом. Попробуйте снова:"
	MsgLocationShort = "❌ Слишком короткое название. Введите адрес или название места:"
	MsgMaxRange      = "❌ Укажите число от 2 до 100:"
	MsgCost          = "❌ Укажите число (0 или больше):"
	MsgNotesLong     = "❌ Заметки слишком длинные. Максимум 500 символов."
	MsgURLLong       = "❌ Ссылка слишком длинная. Максимум 500 символов."
	MsgURLScheme     = "❌ Ссылка должна начинаться с http:// или https://"
	MsgTitleEmpty    = "❌ Название не может быть пустым."
	MsgTitleShort    = "❌ Название локации слишком короткое. Минимум 2 символа."
	MsgTitleLong     = "❌ Название локации слишком длинное. Максимум 255 символов."

	msgRangeFormat = "❌ Неверный формат участников. Используйте: 5-10 или просто 10"
	msgRangeSingle = "❌ Неверное количество участников. Укажите число от 2 до 100 или формат 5-10"
	msgRangeMax    = "❌ Максимум участников не может быть больше 100"
)

const (
	maxNotes = 500
	maxURL   = 500
	maxTitle = 255
)

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// ParseDate accepts "D.M[.YY[YY]] H:MM" strictly after now.
func ParseDate(text string, now time.Time) Result[time.Time] {
	t, err := tghelpers.ParseDayMonthTime(text, now)
	switch {
	case errors.Is(err, tghelpers.ErrDateRange):
		return invalid[time.Time](MsgDateRange)
	case err != nil:
		return invalid[time.Time](MsgDateFormat)
	case !t.After(now):
		return invalid[time.Time](MsgDatePast)
	}
	return valid(t)
}

// ValidateLocationName requires at least three characters.
func ValidateLocationName(text string) Result[string] {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < 3 {
		return invalid[string](MsgLocationShort)
	}
	return valid(text)
}

// ValidateMaxParticipants accepts 2..100.
func ValidateMaxParticipants(text string) Result[int] {
	n, ok := atoi(text)
	if !ok || n < 2 || n > 100 {
		return invalid[int](MsgMaxRange)
	}
	return valid(n)
}

// ValidateMinParticipants accepts 2..max.
func ValidateMinParticipants(text string, max int) Result[int] {
	n, ok := atoi(text)
	if !ok || n < 2 || n > max {
		return invalid[int](fmt.Sprintf("❌ Укажите число от 2 до %d:", max))
	}
	return valid(n)
}

// ValidateCost accepts a non-negative number; zero means free.
func ValidateCost(text string) Result[float64] {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	if err != nil || v < 0 {
		return invalid[float64](MsgCost)
	}
	return valid(v)
}

// ValidateNumber accepts an integer in [lo, hi].
func ValidateNumber(text string, lo, hi int) Result[int] {
	n, ok := atoi(text)
	if !ok || n < lo || n > hi {
		return invalid[int](fmt.Sprintf("❌ Укажите число от %d до %d", lo, hi))
	}
	return valid(n)
}

// Range is a min/max participants pair.
type Range struct {
	Min, Max int
}

// ParseParticipantsRange reads "a-b" or a single maximum n, in which case
// the minimum is max(2, n/2).
func ParseParticipantsRange(text string) Result[Range] {
	text = strings.TrimSpace(text)
	var r Range
	if strings.Contains(text, "-") {
		parts := strings.Split(text, "-")
		if len(parts) != 2 {
			return invalid[Range](msgRangeFormat)
		}
		lo, okLo := atoi(parts[0])
		hi, okHi := atoi(parts[1])
		if !okLo || !okHi {
			return invalid[Range](msgRangeFormat)
		}
		if lo < 2 || lo > hi {
			return invalid[Range](fmt.Sprintf("❌ Минимум должен быть от 2 до %d", hi))
		}
		r = Range{Min: lo, Max: hi}
	} else {
		n, ok := atoi(text)
		if !ok || n < 2 || n > 100 {
			return invalid[Range](msgRangeSingle)
		}
		r = Range{Min: max(2, n/2), Max: n}
	}
	if r.Max > 100 {
		return invalid[Range](msgRangeMax)
	}
	return valid(r)
}

// ValidateNotes limits notes to 500 characters.
func ValidateNotes(text string) Result[string] {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > maxNotes {
		return invalid[string](MsgNotesLong)
	}
	return valid(text)
}

// ValidateMapURL accepts "-" (no link) or an http(s) URL up to 500 characters.
func ValidateMapURL(text string) Result[string] {
	text = strings.TrimSpace(text)
	if text == "-" {
		return valid("")
	}
	if utf8.RuneCountInString(text) > maxURL {
		return invalid[string](MsgURLLong)
	}
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return invalid[string](MsgURLScheme)
	}
	return valid(text)
}

// ValidateLocationTitle checks a location name of minLen..255 characters.
// Creation uses minLen 2, renaming 1.
func ValidateLocationTitle(text string, minLen int) Result[string] {
	text = strings.TrimSpace(text)
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return invalid[string](MsgTitleEmpty)
	case n < minLen:
		return invalid[string](MsgTitleShort)
	case n > maxTitle:
		return invalid[string](MsgTitleLong)
	}
	return valid(text)
}
