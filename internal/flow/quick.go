package flow

import (
	"strings"
	"time"

	"github.com/m3rciful/gamebot/internal/models"
)

const quickSep = " / "

const (
	msgQuickGameFormat = "❌ Неверный формат быстрого ввода.\n\n" +
		"📝 Формат: дата время / мин-макс / стоимость / заметки / локация\n\n" +
		"Пример:\n" +
		"10.02 18:00 / 5-10 / 500 / Приходите заранее / Спортзал Олимп\n" +
		"Или: 10.02 18:00 / 12 / 0 / - / Зал\n\n" +
		"Минимум 2 части: дата и участники (остальное опционально)"
	msgQuickTrainingFormat = "❌ Неверный формат быстрого ввода.\n\n" +
		"📝 Формат: дата время / мин / макс / стоимость / заметки / локация\n\n" +
		"Пример:\n" +
		"10.02 18:00 / 5 / - / - / Приходите пораньше / Зал\n" +
		"Или: 10.02 18:00 / 6 / 10 / 500 / - / Спортзал\n\n" +
		"Минимум 2 части: дата и мин. участники (остальное опционально)"
	msgQuickCost          = "❌ Неверный формат стоимости (третья часть). Укажите число или \"-\"."
	msgQuickLocation      = "❌ Слишком короткое название места (пятая часть)."
	msgQuickTrainingMax   = "❌ Макс. участников должно быть числом от 1 до 998"
	msgQuickTrainingCost  = "❌ Стоимость должна быть числом >= 0"
	msgQuickTrainingMinOf = "❌ Ошибка в мин. участниках: "
)

// QuickEntry is a whole event described on one line.
type QuickEntry struct {
	Date     time.Time
	Min, Max int
	Cost     float64
	Notes    string
	Location string
	MapURL   string
}

// HasLocation reports whether the line named a place.
func (q QuickEntry) HasLocation() bool { return q.Location != "" }

// IsQuickEntry reports whether text uses the " / " separated form.
func IsQuickEntry(text string) bool {
	return strings.Contains(text, quickSep)
}

func splitQuick(text string) []string {
	parts := strings.Split(text, quickSep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// optional returns the i-th part unless it is missing, empty or "-".
func optional(parts []string, i int) (string, bool) {
	if i >= len(parts) || parts[i] == "" || parts[i] == "-" {
		return "", false
	}
	return parts[i], true
}

// ParseGameQuickEntry reads "date / participants / cost / notes / location / map".
func ParseGameQuickEntry(text string, now time.Time) Result[QuickEntry] {
	parts := splitQuick(text)
	if len(parts) < 2 {
		return invalid[QuickEntry](msgQuickGameFormat)
	}
	date := ParseDate(parts[0], now)
	if !date.OK() {
		return invalid[QuickEntry](date.Msg)
	}
	rng := ParseParticipantsRange(parts[1])
	if !rng.OK() {
		return invalid[QuickEntry](rng.Msg)
	}
	q := QuickEntry{Date: date.Value, Min: rng.Value.Min, Max: rng.Value.Max}

	if s, ok := optional(parts, 2); ok {
		cost := ValidateCost(s)
		if !cost.OK() {
			return invalid[QuickEntry](msgQuickCost)
		}
		q.Cost = cost.Value
	}
	if s, ok := optional(parts, 3); ok {
		notes := ValidateNotes(s)
		if !notes.OK() {
			return invalid[QuickEntry](notes.Msg)
		}
		q.Notes = notes.Value
	}
	if s, ok := optional(parts, 4); ok {
		loc := ValidateLocationName(s)
		if !loc.OK() {
			return invalid[QuickEntry](msgQuickLocation)
		}
		q.Location = loc.Value
		if u, ok := optional(parts, 5); ok {
			mapURL := ValidateMapURL(u)
			if !mapURL.OK() {
				return invalid[QuickEntry](mapURL.Msg)
			}
			q.MapURL = mapURL.Value
		}
	}
	return valid(q)
}

// ParseTrainingQuickEntry reads "date / min / max / cost / notes / location".
// A missing maximum means no upper bound.
func ParseTrainingQuickEntry(text string, now time.Time) Result[QuickEntry] {
	parts := splitQuick(text)
	if len(parts) < 2 {
		return invalid[QuickEntry](msgQuickTrainingFormat)
	}
	date := ParseDate(parts[0], now)
	if !date.OK() {
		return invalid[QuickEntry](date.Msg)
	}
	q := QuickEntry{Date: date.Value, Max: models.UnlimitedParticipants}

	if s, ok := optional(parts, 2); ok {
		n, ok := atoi(s)
		if !ok || n < 1 || n > models.MaxCapacity {
			return invalid[QuickEntry](msgQuickTrainingMax)
		}
		q.Max = n
	}
	minimum := ValidateMinParticipants(parts[1], q.Max)
	if !minimum.OK() {
		return invalid[QuickEntry](msgQuickTrainingMinOf + minimum.Msg)
	}
	q.Min = minimum.Value

	if s, ok := optional(parts, 3); ok {
		cost := ValidateCost(s)
		if !cost.OK() {
			return invalid[QuickEntry](msgQuickTrainingCost)
		}
		q.Cost = cost.Value
	}
	if s, ok := optional(parts, 4); ok {
		notes := ValidateNotes(s)
		if !notes.OK() {
			return invalid[QuickEntry](notes.Msg)
		}
		q.Notes = notes.Value
	}
	if s, ok := optional(parts, 5); ok {
		loc := ValidateLocationName(s)
		if !loc.OK() {
			return invalid[QuickEntry](loc.Msg)
		}
		q.Location = loc.Value
	}
	return valid(q)
}
