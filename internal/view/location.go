package view

import (
	"fmt"
	"strings"

	"github.com/m3rciful/gamebot/core/telegram/format"
	"github.com/m3rciful/gamebot/internal/models"
)

const (
	NoLocations     = "📍 У группы пока нет локаций.\n\nАдминистраторы могут добавить локацию командой /addlocation"
	NoLocationsEdit = "📍 В группе пока нет локаций.\n\nДобавьте локацию командой /addlocation"
	PickEditTarget  = "✏️ Выберите локацию для редактирования:"
)

// SportNames joins sport labels, or returns fallback when empty.
func SportNames(sports []models.Sport, fallback string) string {
	if len(sports) == 0 {
		return fallback
	}
	labels := make([]string, 0, len(sports))
	for i := range sports {
		labels = append(labels, sports[i].Label())
	}
	return strings.Join(labels, ", ")
}

// LocationsList groups a group's locations by sport with Markdown map links.
func LocationsList(groupName string, locations []models.Location) string {
	type bucket struct {
		label string
		lines []string
	}
	var order []int64
	buckets := map[int64]*bucket{}

	for _, l := range locations {
		line := "  • " + format.MD(l.Name)
		if l.MapURL != "" {
			line += fmt.Sprintf(" - [карта](%s)", l.MapURL)
		}
		for _, s := range l.Sports() {
			bk, ok := buckets[s.ID]
			if !ok {
				bk = &bucket{label: s.Label()}
				buckets[s.ID] = bk
				order = append(order, s.ID)
			}
			bk.lines = append(bk.lines, line)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 Локации группы \"%s\"\n\n", format.MD(groupName))
	for _, sid := range order {
		bk := buckets[sid]
		b.WriteString(bk.label + ":\n")
		for _, line := range bk.lines {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// LocationPreview is shown before a new location is saved.
func LocationPreview(name, sportName, mapURL string) string {
	if mapURL == "" {
		mapURL = "не указана"
	}
	return "📋 Проверьте данные локации:\n\n" +
		fmt.Sprintf("📍 Название: %s\n", name) +
		fmt.Sprintf("🏃 Вид спорта: %s\n", sportName) +
		fmt.Sprintf("🗺 Ссылка на карту: %s\n", mapURL)
}

// LocationResult summarises a created or extended location.
func LocationResult(head, name, sportName, mapURL string) string {
	text := fmt.Sprintf("%s\n\n📍 %s\n🏃 %s", head, name, sportName)
	if mapURL != "" {
		text += "\n🗺 " + mapURL
	}
	return text
}

// LocationEditText is the header of the edit menu.
func LocationEditText(l *models.Location) string {
	mapURL := l.MapURL
	if mapURL == "" {
		mapURL = "Не указана"
	}
	return "📍 Редактирование локации\n\n" +
		fmt.Sprintf("Название: %s\n", l.Name) +
		fmt.Sprintf("Виды спорта: %s\n", SportNames(l.Sports(), "Не указаны")) +
		fmt.Sprintf("Карта: %s\n\n", mapURL) +
		"Что вы хотите изменить?"
}
