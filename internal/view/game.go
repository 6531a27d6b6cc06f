package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/gamebot/core/telegram/format"
	"github.com/m3rciful/gamebot/internal/models"
)

// Notices and fixed messages shown around games.
const (
	GameNotFound      = "❌ Игра не найдена или была удалена."
	GameNotFoundShort = "❌ Игра не найдена"
	GameCreated       = "✅ Игра создана!"
	TrainingCreated   = "✅ Тренировка создана!"
	LeftGame          = "❌ Вы отказались от игры"
	GameDeleted       = "🗑 Игра удалена"
	AdminsOnly        = "⛔ Только администраторы имеют доступ"
)

func sportOf(g *models.Game) (emoji, name string) {
	if g.Sport == nil {
		return "⚽", "Игра"
	}
	return g.Sport.Emoji, g.Sport.Name
}

func mapLine(g *models.Game) string {
	if g.Location == nil || g.Location.MapURL == "" {
		return ""
	}
	return fmt.Sprintf("🗺 [Открыть на карте](%s)\n", g.Location.MapURL)
}

// GameCard is the full Markdown card of a game.
func GameCard(g *models.Game) string {
	emoji, name := sportOf(g)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", emoji, format.MD(name))
	fmt.Fprintf(&b, "📅 Дата: %s\n", FormatDate(g.GameDate))
	fmt.Fprintf(&b, "📍 Место: %s\n", format.MD(g.LocationName()))
	b.WriteString(mapLine(g))
	fmt.Fprintf(&b, "👥 Участники: %d/%d", g.ConfirmedCount(), g.MaxParticipants)
	if maybe := g.MaybeCount(); maybe > 0 {
		fmt.Fprintf(&b, " (ещё %d под вопросом)", maybe)
	}
	if g.IsFull() {
		b.WriteString(" 🔒 мест нет")
	}
	b.WriteString("\n")
	if g.MinParticipants > 0 {
		fmt.Fprintf(&b, "Минимум: %d\n", g.MinParticipants)
	}
	if g.Cost != nil && *g.Cost > 0 {
		fmt.Fprintf(&b, "💰 Стоимость: %s ₼\n", format.Amount(*g.Cost))
	}
	if g.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Заметки: %s", format.MD(g.Notes))
	}
	return b.String()
}

// TrainingCard is the full Markdown card of a training.
func TrainingCard(g *models.Game) string {
	emoji, name := sportOf(g)
	var b strings.Builder
	b.WriteString("🏋️ ТРЕНИРОВКА\n")
	fmt.Fprintf(&b, "%s %s\n\n", emoji, format.MD(name))
	fmt.Fprintf(&b, "📅 Дата: %s\n", FormatDate(g.GameDate))
	fmt.Fprintf(&b, "📍 Место: %s\n", format.MD(g.LocationName()))
	b.WriteString(mapLine(g))
	if g.Unlimited() {
		fmt.Fprintf(&b, "👥 Участники: %d (без ограничений)", g.ConfirmedCount())
	} else {
		fmt.Fprintf(&b, "👥 Участники: %d/%d", g.ConfirmedCount(), g.MaxParticipants)
	}
	if maybe := g.MaybeCount(); maybe > 0 {
		fmt.Fprintf(&b, " (ещё %d под вопросом)", maybe)
	}
	b.WriteString("\n")
	if g.MinParticipants > 0 {
		fmt.Fprintf(&b, "Минимум: %d\n", g.MinParticipants)
	}
	if g.Cost != nil && *g.Cost > 0 {
		fmt.Fprintf(&b, "💰 Стоимость: %s ₼\n", format.Amount(*g.Cost))
	} else {
		b.WriteString("💰 Бесплатно\n")
	}
	if g.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Заметки: %s", format.MD(g.Notes))
	}
	return b.String()
}

// Card picks the card matching the event type.
func Card(g *models.Game) string {
	if g.IsTraining() {
		return TrainingCard(g)
	}
	return GameCard(g)
}

// CreatedMessage announces a freshly created event.
func CreatedMessage(g *models.Game) string {
	head := GameCreated
	if g.IsTraining() {
		head = TrainingCreated
	}
	return head + "\n\n" + Card(g) + "\n\nУчастники могут записаться прямо здесь:"
}

// GameSummary is the two-line entry used in plain lists.
func GameSummary(g *models.Game) string {
	emoji, name := sportOf(g)
	return fmt.Sprintf("%s %s - %s\n📍 %s | 👥 %d/%d",
		emoji, name, FormatDate(g.GameDate), g.LocationName(), g.ConfirmedCount(), g.MaxParticipants)
}

// GameListLabel is the button label of an event in a list.
func GameListLabel(g *models.Game) string {
	emoji, name := sportOf(g)
	label := fmt.Sprintf("%s %s - %s", emoji, name, ShortDate(g.GameDate))
	if g.IsTraining() {
		label = "🏋️ " + label
	}
	return label
}

// ParticipantsList renders participants by position with the waiting list
// (positions beyond capacity) apart.
func ParticipantsList(g *models.Game) string {
	var in, waiting []models.GameParticipant
	for _, p := range g.Participants {
		if p.Position > g.MaxParticipants {
			waiting = append(waiting, p)
			continue
		}
		in = append(in, p)
	}

	var b strings.Builder
	if len(in) > 0 {
		b.WriteString("👥 Участники:\n")
		for _, p := range in {
			fmt.Fprintf(&b, "%d. %s %s\n", p.Position, p.StatusEmoji(), p.DisplayName())
		}
	}
	if len(waiting) > 0 {
		b.WriteString("\n⏳ Список ожидания:\n")
		for _, p := range waiting {
			fmt.Fprintf(&b, "%s %s\n", p.StatusEmoji(), p.DisplayName())
		}
	}
	if b.Len() == 0 {
		return "Нет участников"
	}
	return b.String()
}

// ParticipantsMessage is the plain-text participants reply of a game.
func ParticipantsMessage(g *models.Game) string {
	emoji, name := sportOf(g)
	return fmt.Sprintf("👥 Участники игры\n%s %s\n📅 %s\n\n%s",
		emoji, name, FormatDate(g.GameDate), ParticipantsList(g))
}

// JoinNotice is the callback answer after a sign-up.
func JoinNotice(status models.ParticipationStatus, created bool) string {
	head := "✅ Точно иду"
	if status == models.StatusMaybe {
		head = "❓ Не точно"
	}
	action := "статус обновлён"
	if created {
		action = "вы записаны"
	}
	return fmt.Sprintf("%s - %s!", head, action)
}

// Draft is the data shown on a creation confirmation card.
type Draft struct {
	Type         models.GameType
	SportEmoji   string
	SportName    string
	Date         time.Time
	LocationName string
	Min, Max     int
	Cost         float64
	Notes        string
}

// Confirmation renders the card shown before an event is created.
func Confirmation(d Draft) string {
	location := d.LocationName
	if location == "" {
		location = "Не указано"
	}
	emoji := d.SportEmoji
	if emoji == "" {
		emoji = "⚽"
	}

	var b strings.Builder
	if d.Type == models.GameTypeTraining {
		b.WriteString("🏋️ ТРЕНИРОВКА\n\n")
	} else {
		b.WriteString("🎮 Подтверждение создания игры\n\n")
	}
	fmt.Fprintf(&b, "%s Вид спорта: %s\n", emoji, d.SportName)
	fmt.Fprintf(&b, "📅 Дата: %s\n", FormatDate(d.Date))
	fmt.Fprintf(&b, "📍 Место: %s\n", location)
	switch {
	case d.Type != models.GameTypeTraining:
		fmt.Fprintf(&b, "👥 Максимум участников: %d\n", d.Max)
		if d.Min > 0 {
			fmt.Fprintf(&b, "Минимум участников: %d\n", d.Min)
		}
	case d.Max >= models.UnlimitedParticipants:
		fmt.Fprintf(&b, "👥 Участники: от %d, без ограничений\n", d.Min)
	default:
		fmt.Fprintf(&b, "👥 Участники: от %d до %d\n", d.Min, d.Max)
	}
	if d.Cost > 0 {
		fmt.Fprintf(&b, "💰 Стоимость: %s ₼\n", format.Amount(d.Cost))
	} else if d.Type == models.GameTypeTraining {
		b.WriteString("💰 Бесплатно\n")
	}
	if d.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Заметки: %s", d.Notes)
	}
	return b.String()
}

// EmptyList is shown when a filter matches nothing.
func EmptyList(f Filter) string {
	switch f {
	case FilterGames:
		return "📭 Пока нет запланированных игр.\n\nСоздайте новую: /newgame"
	case FilterTrainings:
		return "📭 Пока нет запланированных тренировок.\n\nСоздайте новую: /newtraining"
	}
	return "📭 Пока нет запланированных игр и тренировок.\n\nСоздайте: /newgame или /newtraining"
}

// ListHeader titles a list of several events.
func ListHeader(f Filter, n int) string {
	switch f {
	case FilterGames:
		return fmt.Sprintf("🎮 Предстоящие игры (%d):\n\nВыберите:", n)
	case FilterTrainings:
		return fmt.Sprintf("🏋️ Предстоящие тренировки (%d):\n\nВыберите:", n)
	}
	return fmt.Sprintf("📋 Предстоящие игры и тренировки (%d):\n\nВыберите:", n)
}
